package auth

import (
	"testing"
	"time"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:       7,
		Email:    "jane@staff.example.com",
		RoleType: models.RoleAdmin,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	service := NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "applyhub.app",
	})

	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := service.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "jane@staff.example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.RoleType)
	assert.Equal(t, "applyhub.app", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	service := NewJWTService(JWTConfig{SecretKey: "secret-a", AccessTokenExp: time.Hour})
	other := NewJWTService(JWTConfig{SecretKey: "secret-b", AccessTokenExp: time.Hour})

	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = other.ValidateAndExtractClaims(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	service := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: -time.Minute})

	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = service.ValidateAndExtractClaims(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ExtractBearerToken("abc.def.ghi")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "applyhub.app",
	})
	m := NewAuthMiddleware(jwtService)

	router := gin.New()
	authorized := router.Group("/", m.JWTAuth())
	authorized.GET("/whoami", func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	authorized.GET("/staff", m.StaffRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	authorized.GET("/admin", m.SuperAdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router, jwtService
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, jwtService *auth.JWTService, role models.RoleType) string {
	t.Helper()
	token, err := jwtService.GenerateToken(&models.User{ID: 7, Email: "user@example.com", RoleType: role})
	require.NoError(t, err)
	return token
}

func TestJWTAuthRejectsMissingAndMalformedTokens(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	rec := doRequest(router, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "not-a-bearer-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(router, "/whoami", "garbage.token.value")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	expired := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: -time.Minute})
	token, err := expired.GenerateToken(&models.User{ID: 7, RoleType: models.RoleApplicant})
	require.NoError(t, err)

	rec := doRequest(router, "/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_002")
}

func TestJWTAuthThreadsActorIntoContext(t *testing.T) {
	router, jwtService := newAuthTestRouter(t)

	rec := doRequest(router, "/whoami", tokenFor(t, jwtService, models.RoleApplicant))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)
	assert.Contains(t, rec.Body.String(), `"role":"APPLICANT"`)
}

func TestStaffRequired(t *testing.T) {
	router, jwtService := newAuthTestRouter(t)

	rec := doRequest(router, "/staff", tokenFor(t, jwtService, models.RoleApplicant))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, "/staff", tokenFor(t, jwtService, models.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, "/staff", tokenFor(t, jwtService, models.RoleSuperAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSuperAdminRequired(t *testing.T) {
	router, jwtService := newAuthTestRouter(t)

	rec := doRequest(router, "/admin", tokenFor(t, jwtService, models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, "/admin", tokenFor(t, jwtService, models.RoleSuperAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

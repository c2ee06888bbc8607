package seed

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	appModels "github.com/ozgurs/applyhub/internal/app/models"
	appRepos "github.com/ozgurs/applyhub/internal/app/repositories"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/ozgurs/applyhub/internal/pkg/auth"
	"github.com/rs/zerolog"
)

const defaultSuperAdminEmail = "superadmin@applyhub.app"

// CreateDefaultData creates the default superadmin account if it does not
// exist. Without it a fresh deployment has no staff account that can see the
// case list.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	_, err := userRepo.FindByEmail(ctx, defaultSuperAdminEmail)
	if err == nil {
		lgr.Info().Msg("Default superadmin already exists, skipping creation")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking for default superadmin")
		return err
	}

	password := os.Getenv("SEED_SUPERADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
		lgr.Warn().Msg("SEED_SUPERADMIN_PASSWORD not set, using the default password")
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing superadmin password")
		return err
	}

	superadmin := &appModels.User{
		Email:     defaultSuperAdminEmail,
		Password:  hashedPassword,
		FirstName: "System",
		LastName:  "Administrator",
		RoleType:  appModels.RoleSuperAdmin,
		IsActive:  true,
	}

	id, err := userRepo.Create(ctx, superadmin)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default superadmin")
		return err
	}

	lgr.Info().Int64("userId", id).Str("email", defaultSuperAdminEmail).Msg("Default superadmin created")
	return nil
}

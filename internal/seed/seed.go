package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/scedev/parkpermit/internal/app/models"
	appRepos "github.com/scedev/parkpermit/internal/app/repositories"
	"github.com/scedev/parkpermit/internal/pkg/apperrors"
	"github.com/scedev/parkpermit/internal/pkg/auth"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@sce.edu"
	defaultAdminPassword = "Admin123!"
)

// CreateDefaultData ensures a default administrator account exists so a
// fresh deployment can be logged into. The password should be rotated on
// first login.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	if _, err := userRepo.GetByEmail(ctx, defaultAdminEmail); err == nil {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Username: defaultAdminUsername,
		Email:    defaultAdminEmail,
		Password: hashed,
		IsAdmin:  true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		// A concurrent instance may have won the race; that is fine.
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		return err
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created")
	return nil
}

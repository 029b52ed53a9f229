package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/nbilal/scholarbridge/internal/app/models"
	appRepos "github.com/nbilal/scholarbridge/internal/app/repositories"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/auth"
)

// CreateDefaultData ensures the default admin and field officer accounts
// exist. It never overwrites an existing account and collects errors instead
// of stopping at the first one.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default accounts...")

	defaults := []struct {
		email     string
		password  string
		firstName string
		lastName  string
		role      appModels.RoleType
	}{
		{"admin@scholarbridge.app", "Admin123!", "Platform", "Admin", appModels.RoleAdmin},
		{"officer@scholarbridge.app", "Officer123!", "Field", "Officer", appModels.RoleSubAdmin},
	}

	var finalErr error
	for _, d := range defaults {
		_, err := userRepo.FindByEmail(ctx, d.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			lgr.Error().Err(err).Str("email", d.email).Msg("Error checking default account")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		hashed, err := auth.HashPassword(d.password)
		if err != nil {
			lgr.Error().Err(err).Str("email", d.email).Msg("Error hashing default password")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		user := &appModels.User{
			Email:     d.email,
			Password:  hashed,
			FirstName: d.firstName,
			LastName:  d.lastName,
			RoleType:  d.role,
			IsActive:  true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			lgr.Error().Err(err).Str("email", d.email).Msg("Error creating default account")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("email", d.email).Str("role", string(d.role)).Msg("Default account created")
	}

	return finalErr
}

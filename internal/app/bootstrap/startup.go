// internal/app/bootstrap/startup.go
package bootstrap

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"errors"

	lookupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/lookups"
	userstore "github.com/Sherifrax/speakup-sub001/internal/app/store/users"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/authutil"
	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// defaultSpeakUpTypes is the initial type list. Operators can replace it
// in the lookups collection; SeedIfEmpty never overwrites an existing list.
var defaultSpeakUpTypes = []models.LookupItem{
	{ID: 1, Value: "Complaint"},
	{ID: 2, Value: "Harassment"},
	{ID: 3, Value: "Safety Concern"},
	{ID: 4, Value: "Policy Violation"},
	{ID: 5, Value: "Suggestion"},
	{ID: 6, Value: "Other"},
}

// speakUpStatuses mirrors the workflow states. Seeded so the status filter
// dropdown comes from the same lookup mechanism as the type filter.
var speakUpStatuses = []models.LookupItem{
	{ID: 1, Value: models.StatusDraft},
	{ID: 2, Value: models.StatusSubmitted},
	{ID: 3, Value: models.StatusInProgress},
	{ID: 4, Value: models.StatusResolved},
	{ID: 5, Value: models.StatusCancelled},
}

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests are served.
// It seeds the lookup lists and, when configured, the first admin account.
//
// Returning a non-nil error aborts startup. The context is cancelled if
// the process is asked to shut down while Startup is running.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	lookups := lookupstore.New(deps.MongoDatabase)
	if err := lookups.SeedIfEmpty(ctx, models.LookupSpeakUpType, defaultSpeakUpTypes); err != nil {
		logger.Error("failed to seed speakup types", zap.Error(err))
		return err
	}
	if err := lookups.SeedIfEmpty(ctx, models.LookupSpeakUpStatus, speakUpStatuses); err != nil {
		logger.Error("failed to seed speakup statuses", zap.Error(err))
		return err
	}

	if appCfg.SeedAdminLoginID != "" && appCfg.SeedAdminPassword != "" {
		if err := ensureAdminUser(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
	}

	return nil
}

// ensureAdminUser creates the configured admin account when no active
// admin exists yet. An existing user with the same login id is left alone;
// the seed never resets a live password.
func ensureAdminUser(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	count, err := users.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("admin user already configured")
		return nil
	}

	hash, err := authutil.HashPassword(appCfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	created, err := users.Create(ctx, models.User{
		FullName:     appCfg.SeedAdminName,
		LoginID:      appCfg.SeedAdminLoginID,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateLoginID) {
			// Login id taken by a non-admin account; leave it untouched.
			logger.Warn("seed admin login id already in use",
				zap.String("login_id", appCfg.SeedAdminLoginID))
			return nil
		}
		return err
	}

	logger.Info("created admin user",
		zap.String("login_id", created.LoginID),
		zap.String("user_id", created.ID.Hex()))
	return nil
}

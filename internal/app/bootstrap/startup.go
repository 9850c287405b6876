// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	oauthstatestore "github.com/corkboardhq/corkboard/internal/app/store/oauthstate"
	systemrolestore "github.com/corkboardhq/corkboard/internal/app/store/systemroles"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	votestore "github.com/corkboardhq/corkboard/internal/app/store/votes"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/app/system/workers"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Background workers started here and stopped in Shutdown.
var (
	voteRecount  *workers.VoteRecount
	stateCleanup *workers.StateCleanup
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("overrides", n))
	}

	if err := ensureSystemAdmin(ctx, deps, appCfg.SystemAdminEmail, logger); err != nil {
		return err
	}

	db := deps.MongoDatabase
	voteRecount = workers.NewVoteRecount(
		votestore.New(db), announcementstore.New(db), logger, appCfg.VoteRecountInterval)
	voteRecount.Start()

	stateCleanup = workers.NewStateCleanup(
		oauthstatestore.New(db), logger, appCfg.StateCleanupInterval)
	stateCleanup.Start()

	return nil
}

// ensureSystemAdmin grants the system_admin role to the configured account,
// creating the account if it does not exist yet. A created account has no
// password; the operator signs in with Google using that email.
func ensureSystemAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}

	users := userstore.New(deps.MongoDatabase)
	roles := systemrolestore.New(deps.MongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// existing account, grant below
	case errors.Is(err, mongo.ErrNoDocuments):
		created, cerr := users.Create(ctx, models.User{
			FullName:   "System Admin",
			Email:      email,
			AuthMethod: "google",
		})
		if cerr != nil {
			return fmt.Errorf("create system admin account: %w", cerr)
		}
		u = &created
		logger.Info("created system admin account", zap.String("email", email))
	default:
		return fmt.Errorf("look up system admin account: %w", err)
	}

	if err := roles.Grant(ctx, u.ID, grouppolicy.SystemAdmin); err != nil {
		return fmt.Errorf("grant system_admin: %w", err)
	}
	logger.Info("system admin ensured", zap.String("email", email))
	return nil
}

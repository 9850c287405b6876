// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	announcementsfeature "github.com/corkboardhq/corkboard/internal/app/features/announcements"
	authgooglefeature "github.com/corkboardhq/corkboard/internal/app/features/authgoogle"
	dashboardfeature "github.com/corkboardhq/corkboard/internal/app/features/dashboard"
	errorsfeature "github.com/corkboardhq/corkboard/internal/app/features/errors"
	groupsfeature "github.com/corkboardhq/corkboard/internal/app/features/groups"
	healthfeature "github.com/corkboardhq/corkboard/internal/app/features/health"
	homefeature "github.com/corkboardhq/corkboard/internal/app/features/home"
	loginfeature "github.com/corkboardhq/corkboard/internal/app/features/login"
	logoutfeature "github.com/corkboardhq/corkboard/internal/app/features/logout"
	profilefeature "github.com/corkboardhq/corkboard/internal/app/features/profile"
	signupfeature "github.com/corkboardhq/corkboard/internal/app/features/signup"
	"github.com/corkboardhq/corkboard/internal/app/policy/grouppolicy"
	"github.com/corkboardhq/corkboard/internal/app/store/policylookup"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Corkboard initializes the template
// engine, applies session middleware, and mounts feature routers: home,
// signup, login/logout, Google sign-in, dashboard, profile, groups, and
// per-group announcement boards.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request so role
	// changes and disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Attachment storage backend (local disk or S3 per config).
	store, err := buildStorage(context.Background(), appCfg, logger)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	// The permission evaluator is shared by every feature that gates on
	// group roles.
	policy := grouppolicy.New(policylookup.New(db), logger)

	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public landing page
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	signupHandler := signupfeature.NewHandler(db, sessionMgr, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(db, sessionMgr, googleEnabled, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	if googleEnabled {
		googleHandler := authgooglefeature.NewHandler(
			db, sessionMgr, appCfg.GoogleClientID, appCfg.GoogleClientSecret,
			appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Signed-in overview
	dashboardHandler := dashboardfeature.NewHandler(db, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Account profile
	profileHandler := profilefeature.NewHandler(db, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Group management
	groupsHandler := groupsfeature.NewHandler(db, policy, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// Per-group announcement boards
	annHandler := announcementsfeature.NewHandler(db, policy, store, logger)
	r.Mount("/groups/{id}/announcements", announcementsfeature.Routes(annHandler, sessionMgr))

	return r, nil
}

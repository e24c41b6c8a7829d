// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	apikeysfeature "github.com/Sherifrax/speakup-sub001/internal/app/features/apikeys"
	"github.com/Sherifrax/speakup-sub001/internal/app/features/authapi"
	dashboardfeature "github.com/Sherifrax/speakup-sub001/internal/app/features/dashboard"
	healthfeature "github.com/Sherifrax/speakup-sub001/internal/app/features/health"
	speakupfeature "github.com/Sherifrax/speakup-sub001/internal/app/features/speakup"
	"github.com/Sherifrax/speakup-sub001/internal/app/store/usage"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/apicors"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/auth"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/cryptotoken"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/usagestats"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the service.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. The dashboard is a pure JSON API behind bearer
// tokens: /api/auth/login is the only endpoint reachable without one, and
// everything else hangs off /api behind RequireAuth.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.TokenSecret, appCfg.TokenTTL, "speakup")
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	sealer, err := cryptotoken.New(appCfg.SealerSecret)
	if err != nil {
		logger.Error("identifier sealer init failed", zap.Error(err))
		return nil, err
	}

	// Usage recorder feeding the dashboard charts. Recording is async so a
	// slow stats write never delays the request that triggered it.
	usageStore := usage.New(deps.MongoDatabase)
	recorder := usagestats.NewRecorder(usageStore, logger, appCfg.UsageBucket)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	authHandler := authapi.NewHandler(deps.MongoDatabase, tokens, logger)
	apikeysHandler := apikeysfeature.NewHandler(deps.MongoDatabase, sealer, logger)
	speakupHandler := speakupfeature.NewHandler(deps.MongoDatabase, sealer, deps.FileStorage, logger)
	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, logger)

	r.Route("/api", func(api chi.Router) {
		// The dashboard is served from a different origin than the API,
		// so API routes get permissive CORS. Auth is bearer tokens, not
		// cookies; there is nothing for a cross-site request to ride on.
		api.Use(apicors.Middleware())

		api.Mount("/auth", authapi.Routes(authHandler))

		api.Group(func(pr chi.Router) {
			pr.Use(auth.RequireAuth(tokens, logger))

			pr.Mount("/apikeys", apikeysfeature.Routes(apikeysHandler, recorder, logger))
			pr.Mount("/speakup", speakupfeature.Routes(speakupHandler, recorder))
			pr.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, logger))
		})
	})

	return r, nil
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entremotivator/Syncup/internal/repository"
	redisrepo "github.com/entremotivator/Syncup/internal/repository/redis"
	"github.com/entremotivator/Syncup/internal/service"
	"github.com/entremotivator/Syncup/pkg/health"
	"github.com/entremotivator/Syncup/pkg/middleware"
)

// RouterConfig bundles what NewRouter needs beyond the services themselves.
type RouterConfig struct {
	AuthService   *service.AuthService
	SyncService   *service.SyncService
	UsageService  *service.UsageService
	Resolver      service.EntitlementResolver
	Identities    repository.IdentityRepository
	Orders        repository.OrderRepository
	Products      repository.ProductRepository
	ProductCache  *redisrepo.ProductCache
	HealthHandler *health.Handler
	Logger        *slog.Logger
	CORS          middleware.CORSConfig
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Tracing("syncup"))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("syncup"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Session endpoints (public; logout and validate identify the session
	// by header, not by bearer token, so a stale token can still log out)
	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/validate", authHandler.Validate)
	})

	authMiddleware := middleware.Auth(cfg.AuthService.ValidateSessionToken)

	userHandler := NewUserHandler(cfg.Identities, cfg.Resolver, cfg.Logger)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authMiddleware)

		r.Get("/me", userHandler.Me)
		r.Get("/me/entitlement", userHandler.Entitlement)
	})

	usageHandler := NewUsageHandler(cfg.UsageService, cfg.Logger)
	r.Route("/api/v1/usage", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authMiddleware)

		r.Get("/", usageHandler.Get)
		r.Post("/increment", usageHandler.Increment)
		r.Get("/limit", usageHandler.Limit)
		r.Get("/history", usageHandler.History)
	})

	orderHandler := NewOrderHandler(cfg.Orders, cfg.Logger)
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authMiddleware)

		r.Get("/", orderHandler.List)
		r.Get("/summary", orderHandler.Summary)
	})

	productHandler := NewProductHandler(cfg.Products, cfg.ProductCache, cfg.Logger)
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authMiddleware)

		r.Get("/{productID}", productHandler.Get)
	})

	syncHandler := NewSyncHandler(cfg.SyncService, cfg.Identities, cfg.Logger)
	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authMiddleware)

		r.Post("/orders", syncHandler.Orders)
		// Catalog-wide sync is heavier than one user's orders; gate it on
		// the tiers that get analytics anyway.
		r.With(middleware.RequireTier("premium", "enterprise")).Post("/products", syncHandler.Products)
	})

	return r
}

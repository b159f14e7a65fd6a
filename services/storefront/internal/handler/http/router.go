package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// RouterConfig carries what the router needs beyond the handlers.
type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig

	// JWTSecret enables bearer-token authentication on the account route.
	JWTSecret string

	// RateLimitRPS and RateLimitBurst bound API requests per session. A zero
	// RPS disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	carts CartRegistry,
	accounts AccountViewer,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "storefront"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	cartHandler := NewCartHandler(carts, logger)
	accountHandler := NewAccountHandler(accounts, logger)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		}
		r.Use(ContentTypeJSON)

		r.Route("/cart", func(r chi.Router) {
			r.Use(RequireSessionID)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{key}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{key}", cartHandler.RemoveItem)
		})

		r.Group(func(r chi.Router) {
			if cfg.JWTSecret != "" {
				r.Use(middleware.JWTAuth(cfg.JWTSecret, logger))
			}
			r.Use(RequireUserID)
			r.Get("/account", accountHandler.GetAccount)
		})
	})

	return r
}

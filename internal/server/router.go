package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopledger-backend/internal/config"
	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/handler"
	"shopledger-backend/internal/service"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Health       handler.HealthHandler
	Auth         handler.AuthHandler
	Shops        handler.ShopHandler
	DailyRecords handler.DailyRecordHandler
	Statistics   handler.StatisticsHandler
	Docs         handler.DocsHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, auth *service.AuthService, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimitPerMin > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
	}

	h.Health.RegisterRoutes(r)
	h.Docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pub chi.Router) {
		// brute-force guard on credentials
		pub.Use(httprate.LimitByIP(10, 1*time.Minute))
		h.Auth.RegisterRoutes(pub)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(auth, cfg.AuthCookieName))
		pr.Use(RequireRole(domain.RoleCEO, domain.RoleShop))
		h.Auth.RegisterProtectedRoutes(pr)
		h.Shops.RegisterRoutes(pr)
		h.DailyRecords.RegisterRoutes(pr)
		h.Statistics.RegisterRoutes(pr)
	})

	return r
}

package handler

import (
	"net/http"
	"time"

	chathandler "github.com/boddenberg/spending-insights-go/internal/chat/handler"
	chatservice "github.com/boddenberg/spending-insights-go/internal/chat/service"
	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/infra/observability"
	"github.com/boddenberg/spending-insights-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Ledger writes require an admin token when authSvc has a password
// configured; otherwise they are open.
func NewRouter(
	svc *service.InsightsService,
	authSvc *service.AuthService,
	chatSvc *chatservice.ChatService,
	metrics *observability.Metrics,
	logger *zap.Logger,
	corsOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", healthzHandler(svc))
	r.Get("/readyz", readyzHandler(svc))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/token", authTokenHandler(authSvc, logger))

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/status", ledgerStatusHandler(svc))

			r.Group(func(r chi.Router) {
				if authSvc.Enabled() {
					r.Use(JWTAuthMiddleware(authSvc, logger))
				}
				r.Post("/", loadLedgerHandler(svc, logger))
				r.Post("/reload", reloadLedgerHandler(svc, logger))
			})
		})

		r.Route("/insights", func(r chi.Router) {
			r.Get("/categories", categoriesHandler(svc, logger))
			r.Get("/daily", dailyHandler(svc, logger))
			r.Get("/trend", trendHandler(svc))
			r.Get("/totals", totalsHandler(svc, logger))
			r.Get("/summary", summaryHandler(svc, logger))
			r.Get("/dashboard", dashboardHandler(svc, logger))
		})

		r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))

		r.Post("/chat", chathandler.ChatHandler(chatSvc, logger))
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		status := svc.Status()

		ledger := domain.ServiceHealth{Name: "ledger", Status: "healthy", LastChecked: now}
		if status.State == domain.StateEmpty {
			ledger.Status = "degraded"
			ledger.Detail = "no ledger loaded"
		}

		services := []domain.ServiceHealth{
			{Name: "insights-api", Status: "healthy", LastChecked: now},
			ledger,
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = s.Status
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

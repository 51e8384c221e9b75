package handler

import (
	"net/http"

	"github.com/boddenberg/spending-insights-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Views over the loaded ledger
// ============================================================

func categoriesHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights/categories")
		defer span.End()

		period, err := svc.Period(r.URL.Query().Get("period"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("period", period.String()))

		writeJSON(w, http.StatusOK, svc.Categories(ctx, period))
	}
}

func dailyHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights/daily")
		defer span.End()

		period, err := svc.Period(r.URL.Query().Get("period"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("period", period.String()))

		writeJSON(w, http.StatusOK, svc.Daily(ctx, period))
	}
}

func trendHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights/trend")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.Trend(ctx))
	}
}

func totalsHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights/totals")
		defer span.End()

		q := r.URL.Query()
		current, previous, err := svc.Periods(q.Get("current"), q.Get("previous"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, svc.Totals(ctx, current, previous))
	}
}

func summaryHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights/summary")
		defer span.End()

		q := r.URL.Query()
		current, previous, err := svc.Periods(q.Get("current"), q.Get("previous"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, svc.Summary(ctx, current, previous))
	}
}

func dashboardHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/insights/dashboard")
		defer span.End()

		q := r.URL.Query()
		current, previous, err := svc.Periods(q.Get("current"), q.Get("previous"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		d, err := svc.Dashboard(ctx, current, previous)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}

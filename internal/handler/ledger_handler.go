package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/boddenberg/spending-insights-go/internal/infra/observability"
	"github.com/boddenberg/spending-insights-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxUploadBytes bounds a ledger posted in the request body.
const maxUploadBytes = 64 << 20

// ============================================================
// Ledger loads
// ============================================================

// loadLedgerHandler replaces the loaded set with the request body.
func loadLedgerHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/ledger")
		defer span.End()

		body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
		stats, err := svc.LoadText(ctx, body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "ledger exceeds upload limit")
				return
			}
			handleServiceError(w, err, logger)
			return
		}

		span.SetAttributes(attribute.Int("ledger.accepted", stats.Accepted))
		logger.Info("ledger uploaded", zap.String("subject", SubjectFromContext(ctx)), zap.String("load_id", stats.LoadID))
		writeJSON(w, http.StatusOK, stats)
	}
}

// reloadLedgerHandler re-reads the configured source. ?fresh=true bypasses
// the source cache.
func reloadLedgerHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/ledger/reload")
		defer span.End()

		fresh := false
		if v := r.URL.Query().Get("fresh"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "fresh must be a boolean")
				return
			}
			fresh = b
		}
		span.SetAttributes(attribute.Bool("ledger.fresh", fresh))

		stats, err := svc.Reload(ctx, fresh)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

func ledgerStatusHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.LedgerSnapshot())
	}
}

// Package handler serves POST /v1/chat.
//
// Request:
//
//	Content-Type: application/json
//	Body: {"query": "How can I reduce my dining expenses?"}
//
// Response (200 OK):
//
//	{"id": "...", "answer": "...", "intent": "dining", "chart": {...}, "timestamp": "..."}
//
// The handler is thin: it validates the body and delegates to the
// ChatService, which owns intent detection and strategy routing.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/boddenberg/spending-insights-go/internal/chat/domain"
	"github.com/boddenberg/spending-insights-go/internal/chat/service"
	maindomain "github.com/boddenberg/spending-insights-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("chat/handler")

const (
	// maxQueryLength bounds the question a client may send.
	maxQueryLength = 2000
	// maxBodyBytes bounds the raw request body read before decoding.
	maxBodyBytes = 8 << 10
)

// ChatHandler returns the http.HandlerFunc for POST /v1/chat.
func ChatHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body is too large")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid request body: expected {\"query\": \"your message\"}")
			return
		}

		req.Query = strings.TrimSpace(req.Query)
		if req.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		if len(req.Query) > maxQueryLength {
			writeError(w, http.StatusBadRequest, "query is too long")
			return
		}
		span.SetAttributes(attribute.Int("chat.query_length", len(req.Query)))

		resp, err := chatSvc.ProcessMessage(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *maindomain.ErrValidation
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("unexpected error in chat handler", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

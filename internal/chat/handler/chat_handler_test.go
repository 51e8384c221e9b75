package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/chat/domain"
	"github.com/boddenberg/spending-insights-go/internal/chat/handler"
	"github.com/boddenberg/spending-insights-go/internal/chat/service"
	maindomain "github.com/boddenberg/spending-insights-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type emptyInsights struct{}

func (emptyInsights) Periods(string, string) (maindomain.Period, maindomain.Period, error) {
	return maindomain.NewPeriod(2025, time.June), maindomain.NewPeriod(2025, time.May), nil
}

func (emptyInsights) Categories(context.Context, maindomain.Period) []maindomain.CategorySummary {
	return nil
}

func (emptyInsights) Trend(context.Context) []maindomain.TrendPoint { return nil }

func (emptyInsights) Totals(context.Context, maindomain.Period, maindomain.Period) maindomain.PeriodComparison {
	return maindomain.PeriodComparison{}
}

func (emptyInsights) Summary(context.Context, maindomain.Period, maindomain.Period) maindomain.Insight {
	return maindomain.Insight{Narrative: "No spending data is loaded."}
}

func newHandler() http.HandlerFunc {
	insights := emptyInsights{}
	svc := service.NewChatService(insights, service.DefaultStrategies(insights), zap.NewNop())
	return handler.ChatHandler(svc, zap.NewNop())
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChatHandler_Answers(t *testing.T) {
	rec := post(t, newHandler(), `{"query": "show my spending trend"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.IntentTrend, resp.Intent)
	assert.NotEmpty(t, resp.ID)
	require.NotNil(t, resp.Chart)
	assert.Equal(t, domain.ChartLine, resp.Chart.Type)
}

func TestChatHandler_BadRequests(t *testing.T) {
	h := newHandler()
	for name, body := range map[string]string{
		"malformed": `{"query":`,
		"empty":     `{"query": "   "}`,
		"too long":  `{"query": "` + strings.Repeat("a", 2001) + `"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := post(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestChatHandler_OversizedBody(t *testing.T) {
	body := `{"query": "dining", "padding": "` + strings.Repeat("x", 16<<10) + `"}`
	rec := post(t, newHandler(), body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")
}

package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	chatservice "github.com/boddenberg/spending-insights-go/internal/chat/service"
	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/handler"
	"github.com/boddenberg/spending-insights-go/internal/infra/cache"
	"github.com/boddenberg/spending-insights-go/internal/infra/observability"
	"github.com/boddenberg/spending-insights-go/internal/infra/resilience"
	"github.com/boddenberg/spending-insights-go/internal/infra/source"
	"github.com/boddenberg/spending-insights-go/internal/ledger"
	"github.com/boddenberg/spending-insights-go/internal/service"

	"go.uber.org/zap"
)

const header = "id,posted,type,status,account_id,merchant_id,mcc,transaction_display_name,channel,currency,category_display_name,category_id,transaction_amount,transaction_date\n"

const juneLedger = header +
	",,,,acc-1,,,dinner,,,Dining,,-100.00,2025-05-04\n" +
	",,,,acc-1,,,dinner,,,Dining,,-150.00,2025-06-02\n" +
	",,,,acc-1,,,rent,,,Rent,,-900.00,2025-06-03\n"

const julyLedger = juneLedger +
	",,,,acc-1,,,flight,,,Travel,,-400.00,2025-06-20\n"

// ledgerServer serves whatever text is current and counts requests.
type ledgerServer struct {
	mu     sync.Mutex
	text   string
	status int
	hits   atomic.Int32
}

func (s *ledgerServer) set(text string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text, s.status = text, status
}

func (s *ledgerServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != http.StatusOK {
		w.WriteHeader(s.status)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Write([]byte(s.text))
}

func newStack(t *testing.T, url string) (http.Handler, *service.InsightsService) {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	sourceCache := cache.New[string](5 * time.Minute)
	t.Cleanup(sourceCache.Close)

	src, err := source.New(url, source.Options{
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Resilience: resilience.Config{MaxRetries: 0, InitialBackoff: 10 * time.Millisecond},
		Cache:      sourceCache,
		Metrics:    metrics,
	})
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	engine := ledger.NewEngine(ledger.Options{Current: domain.NewPeriod(2025, time.June)})
	svc := service.NewInsightsService(engine, src, metrics, logger)
	chat := chatservice.NewChatService(svc, chatservice.DefaultStrategies(svc), logger)
	auth := service.NewAuthService("", "", time.Minute, logger)

	return handler.NewRouter(svc, auth, chat, metrics, logger, []string{"*"}), svc
}

func get[T any](t *testing.T, router http.Handler, method, path string) (T, int) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var v T
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return v, rec.Code
}

// TestIntegration_FullFlow loads a ledger over HTTP and walks the API.
func TestIntegration_FullFlow(t *testing.T) {
	upstream := &ledgerServer{}
	upstream.set(juneLedger, http.StatusOK)
	srv := httptest.NewServer(upstream)
	defer srv.Close()

	router, _ := newStack(t, srv.URL+"/ledger.csv")

	if _, code := get[map[string]string](t, router, http.MethodGet, "/readyz"); code != http.StatusServiceUnavailable {
		t.Fatalf("readyz before load: expected 503, got %d", code)
	}

	stats, code := get[domain.LoadStats](t, router, http.MethodPost, "/v1/ledger/reload")
	if code != http.StatusOK {
		t.Fatalf("reload: expected 200, got %d", code)
	}
	if stats.Accepted != 3 || stats.Source != srv.URL+"/ledger.csv" {
		t.Errorf("unexpected stats: %+v", stats)
	}

	cats, _ := get[[]domain.CategorySummary](t, router, http.MethodGet, "/v1/insights/categories")
	if len(cats) != 2 || cats[0].Name != "Rent" || cats[0].PercentOfPeriodTotal != 86 {
		t.Errorf("unexpected categories: %+v", cats)
	}

	// A plain reload is served from the cache.
	upstream.set(julyLedger, http.StatusOK)
	if _, code := get[domain.LoadStats](t, router, http.MethodPost, "/v1/ledger/reload"); code != http.StatusOK {
		t.Fatalf("cached reload: expected 200, got %d", code)
	}
	if hits := upstream.hits.Load(); hits != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits)
	}

	stats, _ = get[domain.LoadStats](t, router, http.MethodPost, "/v1/ledger/reload?fresh=true")
	if stats.Accepted != 4 {
		t.Errorf("fresh reload: expected 4 accepted, got %d", stats.Accepted)
	}

	dash, code := get[domain.Dashboard](t, router, http.MethodGet, "/v1/insights/dashboard")
	if code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", code)
	}
	if dash.Comparison.CurrentTotal != 1450 || dash.Comparison.PreviousTotal != 100 {
		t.Errorf("unexpected comparison: %+v", dash.Comparison)
	}
	if dash.Insight == nil || !strings.Contains(dash.Insight.Narrative, "increased by $1350") {
		t.Errorf("unexpected insight: %+v", dash.Insight)
	}

	snap, _ := get[domain.LedgerMetrics](t, router, http.MethodGet, "/v1/metrics/ledger")
	if snap.Loads != 3 || snap.SourceCacheHits != 1 || snap.SourceCacheMiss != 2 {
		t.Errorf("unexpected metrics: %+v", snap)
	}
}

// TestIntegration_SourceFailureKeepsLedger checks a failed reload leaves the
// previous load in place.
func TestIntegration_SourceFailureKeepsLedger(t *testing.T) {
	upstream := &ledgerServer{}
	upstream.set(juneLedger, http.StatusOK)
	srv := httptest.NewServer(upstream)
	defer srv.Close()

	router, svc := newStack(t, srv.URL)

	if _, code := get[domain.LoadStats](t, router, http.MethodPost, "/v1/ledger/reload"); code != http.StatusOK {
		t.Fatalf("initial reload: expected 200, got %d", code)
	}
	before := svc.Status().LastLoad.LoadID

	upstream.set("", http.StatusNotFound)
	if _, code := get[domain.LoadStats](t, router, http.MethodPost, "/v1/ledger/reload?fresh=true"); code != http.StatusBadGateway {
		t.Fatalf("reload of missing ledger: expected 502, got %d", code)
	}

	status, _ := get[domain.LedgerStatus](t, router, http.MethodGet, "/v1/ledger/status")
	if status.State != domain.StateLoaded || status.Transactions != 3 {
		t.Errorf("expected previous ledger to stay loaded, got %+v", status)
	}
	if status.LastLoad == nil || status.LastLoad.LoadID != before {
		t.Errorf("expected last load %s to be kept", before)
	}
}

package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/infra/observability"
	"github.com/boddenberg/spending-insights-go/internal/ledger"
	"github.com/boddenberg/spending-insights-go/internal/port"
	"github.com/boddenberg/spending-insights-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const header = "id,posted,type,status,account_id,merchant_id,mcc,transaction_display_name,channel,currency,category_display_name,category_id,transaction_amount,transaction_date\n"

func row(date, category, amount string) string {
	f := make([]string, 14)
	f[4] = "acc-1"
	f[7] = "purchase"
	f[10] = category
	f[12] = amount
	f[13] = date
	return strings.Join(f, ",") + "\n"
}

var (
	jun2025 = domain.NewPeriod(2025, time.June)
	may2025 = domain.NewPeriod(2025, time.May)
)

func sampleLedger() string {
	return header +
		row("2025-05-04", "Dining", "-100.00") +
		row("2025-05-20", "Rent", "-900.00") +
		row("2025-06-02", "Dining", "-150.00") +
		row("2025-06-03", "Rent", "-900.00") +
		row("2025-06-10", "Groceries", "-250.00") +
		row("2025-06-11", "", "-1.00")
}

type stubSource struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
	fresh int
}

var _ port.LedgerSource = (*stubSource)(nil)

func (s *stubSource) Name() string { return "stub://ledger" }

func (s *stubSource) Fetch(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.text, s.err
}

func (s *stubSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fresh++
}

func newService(t *testing.T, src port.LedgerSource) (*service.InsightsService, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	engine := ledger.NewEngine(ledger.Options{Current: jun2025})
	return service.NewInsightsService(engine, src, metrics, zap.NewNop()), metrics
}

func TestInsightsService_Reload(t *testing.T) {
	src := &stubSource{text: sampleLedger()}
	svc, metrics := newService(t, src)

	assert.False(t, svc.Ready())

	stats, err := svc.Reload(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Rows)
	assert.Equal(t, 5, stats.Accepted)
	assert.Equal(t, 1, stats.RejectReasons[domain.RejectCategory])
	assert.Equal(t, "stub://ledger", stats.Source)
	assert.True(t, svc.Ready())

	status := svc.Status()
	assert.Equal(t, domain.StateLoaded, status.State)
	assert.Equal(t, 5, status.Transactions)
	assert.Equal(t, jun2025, status.Current)
	assert.Equal(t, may2025, status.Previous)
	require.NotNil(t, status.LastLoad)
	assert.Equal(t, stats.LoadID, status.LastLoad.LoadID)

	snap := metrics.LedgerSnapshot()
	assert.Equal(t, int64(1), snap.Loads)
	assert.Equal(t, int64(5), snap.RowsAccepted)
}

func TestInsightsService_ReloadFresh(t *testing.T) {
	src := &stubSource{text: sampleLedger()}
	svc, _ := newService(t, src)

	_, err := svc.Reload(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, src.fresh)
}

func TestInsightsService_ReloadFailureKeepsState(t *testing.T) {
	src := &stubSource{text: sampleLedger()}
	svc, metrics := newService(t, src)

	first, err := svc.Reload(context.Background(), false)
	require.NoError(t, err)

	src.err = errors.New("bucket unreachable")
	_, err = svc.Reload(context.Background(), false)

	var loadErr *domain.ErrLoadSource
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "stub://ledger", loadErr.Source)

	status := svc.Status()
	assert.Equal(t, domain.StateLoaded, status.State)
	assert.Equal(t, first.LoadID, status.LastLoad.LoadID)
	assert.Equal(t, int64(1), metrics.LedgerSnapshot().LoadFailures)
}

func TestInsightsService_ReloadWithoutSource(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.Reload(context.Background(), false)
	var ve *domain.ErrValidation
	assert.ErrorAs(t, err, &ve)
}

func TestInsightsService_LoadText(t *testing.T) {
	svc, _ := newService(t, nil)

	stats, err := svc.LoadText(context.Background(), strings.NewReader(sampleLedger()))
	require.NoError(t, err)
	assert.Equal(t, "request", stats.Source)
	assert.True(t, svc.Ready())
}

func TestInsightsService_Queries(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.LoadText(context.Background(), strings.NewReader(sampleLedger()))
	require.NoError(t, err)
	ctx := context.Background()

	cats := svc.Categories(ctx, jun2025)
	require.Len(t, cats, 3)
	assert.Equal(t, "Rent", cats[0].Name)
	assert.Equal(t, int64(900), cats[0].TotalAmount)
	assert.Equal(t, 69, cats[0].PercentOfPeriodTotal)

	daily := svc.Daily(ctx, jun2025)
	assert.Equal(t, []domain.DayPoint{
		{Day: "02", Amount: 150},
		{Day: "03", Amount: 1050},
		{Day: "10", Amount: 1300},
	}, daily)

	assert.Equal(t, []domain.TrendPoint{
		{Month: "May", Amount: 1000},
		{Month: "Jun", Amount: 1300},
	}, svc.Trend(ctx))

	totals := svc.Totals(ctx, jun2025, may2025)
	assert.Equal(t, 300.0, totals.Change)
	assert.Equal(t, 30, totals.PercentChange)

	summary := svc.Summary(ctx, jun2025, may2025)
	assert.Equal(t,
		"Your spending increased by $300 (30%) in June compared to May. "+
			"Your largest expense category in June was Rent at $900 (69% of total spending).",
		summary.Narrative)
}

func TestInsightsService_Dashboard(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.LoadText(context.Background(), strings.NewReader(sampleLedger()))
	require.NoError(t, err)
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, jun2025, may2025)
	require.NoError(t, err)

	assert.Equal(t, svc.Categories(ctx, jun2025), d.Categories)
	assert.Equal(t, svc.Daily(ctx, jun2025), d.Daily)
	assert.Equal(t, svc.Trend(ctx), d.Trend)
	require.NotNil(t, d.Insight)
	assert.Equal(t, d.Insight.Comparison, d.Comparison)
}

func TestInsightsService_DashboardCancelled(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Dashboard(ctx, jun2025, may2025)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInsightsService_EmptyEngine(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	assert.Empty(t, svc.Categories(ctx, jun2025))
	assert.Empty(t, svc.Daily(ctx, jun2025))
	assert.Empty(t, svc.Trend(ctx))
	assert.Equal(t, domain.StateEmpty, svc.Status().State)
	assert.Nil(t, svc.Status().LastLoad)
}

func TestInsightsService_Periods(t *testing.T) {
	svc, _ := newService(t, nil)

	cur, prev, err := svc.Periods("", "")
	require.NoError(t, err)
	assert.Equal(t, jun2025, cur)
	assert.Equal(t, may2025, prev)

	cur, prev, err = svc.Periods("2024-01", "")
	require.NoError(t, err)
	assert.Equal(t, domain.NewPeriod(2024, time.January), cur)
	assert.Equal(t, domain.NewPeriod(2023, time.December), prev)

	cur, prev, err = svc.Periods("", "2025-01")
	require.NoError(t, err)
	assert.Equal(t, jun2025, cur)
	assert.Equal(t, domain.NewPeriod(2025, time.January), prev)

	_, _, err = svc.Periods("2025-13", "")
	var ve *domain.ErrValidation
	assert.ErrorAs(t, err, &ve)

	p, err := svc.Period("")
	require.NoError(t, err)
	assert.Equal(t, jun2025, p)
}

func TestInsightsService_ConcurrentLoadsAreSerialized(t *testing.T) {
	svc, metrics := newService(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LoadText(context.Background(), strings.NewReader(sampleLedger()))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, svc.Status().Transactions)
	assert.Equal(t, int64(8), metrics.LedgerSnapshot().Loads)
}

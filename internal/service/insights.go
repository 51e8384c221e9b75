package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/infra/observability"
	"github.com/boddenberg/spending-insights-go/internal/infra/resilience"
	"github.com/boddenberg/spending-insights-go/internal/ledger"
	"github.com/boddenberg/spending-insights-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/insights")

// invalidator is implemented by cached sources.
type invalidator interface {
	Invalidate()
}

// InsightsService is the query interface over the aggregation engine and the
// single writer that loads it.
type InsightsService struct {
	engine  *ledger.Engine
	source  port.LedgerSource
	loads   *resilience.Bulkhead
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewInsightsService creates the insights service. source may be nil, in
// which case only request-body loads are possible.
func NewInsightsService(
	engine *ledger.Engine,
	source port.LedgerSource,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *InsightsService {
	return &InsightsService{
		engine:  engine,
		source:  source,
		loads:   resilience.NewBulkhead(1),
		metrics: metrics,
		logger:  logger,
	}
}

// ============================================================
// Loading
// ============================================================

// Reload fetches the configured source and replaces the loaded set. With
// fresh set, a cached copy of the source text is discarded first. On failure
// the engine keeps what it held.
func (s *InsightsService) Reload(ctx context.Context, fresh bool) (*domain.LoadStats, error) {
	ctx, span := tracer.Start(ctx, "InsightsService.Reload")
	defer span.End()

	if s.source == nil {
		return nil, &domain.ErrValidation{Field: "source", Message: "no ledger source configured"}
	}
	span.SetAttributes(attribute.String("ledger.source", s.source.Name()))

	if err := s.loads.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.loads.Release()

	if inv, ok := s.source.(invalidator); ok && fresh {
		inv.Invalidate()
	}

	text, err := s.source.Fetch(ctx)
	if err != nil {
		s.metrics.IncrLoadFailure()
		s.metrics.IncrSourceError(s.source.Name())
		s.logger.Error("ledger fetch failed",
			zap.String("source", s.source.Name()),
			zap.Error(err),
		)
		span.RecordError(err)
		return nil, &domain.ErrLoadSource{Source: s.source.Name(), Err: err}
	}

	return s.load(s.source.Name(), strings.NewReader(text))
}

// LoadText replaces the loaded set with ledger text supplied by the caller.
func (s *InsightsService) LoadText(ctx context.Context, r io.Reader) (*domain.LoadStats, error) {
	ctx, span := tracer.Start(ctx, "InsightsService.LoadText")
	defer span.End()

	if err := s.loads.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.loads.Release()

	return s.load("request", r)
}

// load must be called with the loads slot held.
func (s *InsightsService) load(source string, r io.Reader) (*domain.LoadStats, error) {
	start := time.Now()
	stats, err := s.engine.LoadSource(source, r)
	s.metrics.RecordRequestDuration("load", time.Since(start))
	if err != nil {
		s.metrics.IncrLoadFailure()
		s.logger.Error("ledger load failed", zap.String("source", source), zap.Error(err))
		return nil, &domain.ErrLoadSource{Source: source, Err: err}
	}

	s.metrics.RecordLoad(stats)
	fields := observability.LoadFields(stats)
	if stats.Rejected > 0 {
		s.logger.Warn("ledger loaded with rejected rows", fields...)
	} else {
		s.logger.Info("ledger loaded", fields...)
	}
	return &stats, nil
}

// Status reports the engine state and the last load.
func (s *InsightsService) Status() domain.LedgerStatus {
	return s.engine.Status()
}

// Ready reports whether a load has completed.
func (s *InsightsService) Ready() bool {
	return s.engine.State() == domain.StateLoaded
}

// ============================================================
// Period resolution
// ============================================================

// Period parses raw as YYYY-MM, defaulting to the current period when empty.
func (s *InsightsService) Period(raw string) (domain.Period, error) {
	if strings.TrimSpace(raw) == "" {
		return s.engine.CurrentPeriod(), nil
	}
	return domain.ParsePeriod(raw)
}

// Periods resolves a current/previous pair. An explicit current without a
// previous compares against the month before it.
func (s *InsightsService) Periods(current, previous string) (domain.Period, domain.Period, error) {
	if strings.TrimSpace(current) == "" && strings.TrimSpace(previous) == "" {
		return s.engine.CurrentPeriod(), s.engine.PreviousPeriod(), nil
	}

	cur, err := s.Period(current)
	if err != nil {
		return domain.Period{}, domain.Period{}, err
	}
	if strings.TrimSpace(previous) == "" {
		return cur, cur.Previous(), nil
	}
	prev, err := domain.ParsePeriod(previous)
	if err != nil {
		return domain.Period{}, domain.Period{}, err
	}
	return cur, prev, nil
}

// ============================================================
// Queries
// ============================================================

// Categories returns the top categories of p.
func (s *InsightsService) Categories(ctx context.Context, p domain.Period) []domain.CategorySummary {
	_, span := tracer.Start(ctx, "InsightsService.Categories")
	defer span.End()
	span.SetAttributes(attribute.String("period", p.String()))
	defer s.observe("categories", time.Now())

	return s.engine.CategoryBreakdown(p)
}

// Daily returns the cumulative daily series of p.
func (s *InsightsService) Daily(ctx context.Context, p domain.Period) []domain.DayPoint {
	_, span := tracer.Start(ctx, "InsightsService.Daily")
	defer span.End()
	span.SetAttributes(attribute.String("period", p.String()))
	defer s.observe("daily", time.Now())

	return s.engine.DailyCumulative(p)
}

// Trend returns the ledger-wide monthly trend.
func (s *InsightsService) Trend(ctx context.Context) []domain.TrendPoint {
	_, span := tracer.Start(ctx, "InsightsService.Trend")
	defer span.End()
	defer s.observe("trend", time.Now())

	return s.engine.Trend()
}

// Totals compares two periods.
func (s *InsightsService) Totals(ctx context.Context, current, previous domain.Period) domain.PeriodComparison {
	_, span := tracer.Start(ctx, "InsightsService.Totals")
	defer span.End()
	defer s.observe("totals", time.Now())

	return s.engine.Compare(current, previous)
}

// Summary composes the narrative insight for two periods.
func (s *InsightsService) Summary(ctx context.Context, current, previous domain.Period) domain.Insight {
	_, span := tracer.Start(ctx, "InsightsService.Summary")
	defer span.End()
	defer s.observe("summary", time.Now())

	return s.engine.InsightFor(current, previous)
}

// Dashboard computes every view in one engine call, so all of them come from
// the same load even while a reload is in flight.
func (s *InsightsService) Dashboard(ctx context.Context, current, previous domain.Period) (*domain.Dashboard, error) {
	ctx, span := tracer.Start(ctx, "InsightsService.Dashboard")
	defer span.End()
	defer s.observe("dashboard", time.Now())

	d, err := s.engine.Dashboard(ctx, current, previous)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &d, nil
}

// Metrics returns the load metrics snapshot.
func (s *InsightsService) Metrics() *domain.LedgerMetrics {
	return s.metrics.LedgerSnapshot()
}

func (s *InsightsService) observe(operation string, start time.Time) {
	s.metrics.RecordRequestDuration(operation, time.Since(start))
}

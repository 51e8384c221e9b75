// Package port defines what the chat needs from the rest of the service.
package port

import (
	"context"

	"github.com/boddenberg/spending-insights-go/internal/domain"
)

// InsightsReader is the read side of the insights service.
// *service.InsightsService implements it.
type InsightsReader interface {
	Periods(current, previous string) (domain.Period, domain.Period, error)
	Categories(ctx context.Context, p domain.Period) []domain.CategorySummary
	Trend(ctx context.Context) []domain.TrendPoint
	Totals(ctx context.Context, current, previous domain.Period) domain.PeriodComparison
	Summary(ctx context.Context, current, previous domain.Period) domain.Insight
}

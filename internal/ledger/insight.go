package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/spending-insights-go/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Insight composes the narrative for the configured current and previous periods.
func (e *Engine) Insight() domain.Insight {
	return e.InsightFor(e.current, e.previous)
}

// InsightFor composes the narrative, trend and category views for an explicit
// pair of periods, all from the same loaded set.
func (e *Engine) InsightFor(current, previous domain.Period) domain.Insight {
	return e.insightFor(e.transactions(), current, previous)
}

func (e *Engine) insightFor(txns []domain.Transaction, current, previous domain.Period) domain.Insight {
	cur, prev := periodTotal(txns, current), periodTotal(txns, previous)
	comparison := compare(cur, prev, current, previous)
	categories := categoryBreakdown(txns, current, e.icons)

	return domain.Insight{
		Narrative:  narrative(cur.Sub(prev), comparison, categories),
		Trend:      trend(txns),
		Categories: categories,
		Comparison: comparison,
	}
}

// Dashboard computes every view of current and previous concurrently over a
// single loaded set.
func (e *Engine) Dashboard(ctx context.Context, current, previous domain.Period) (domain.Dashboard, error) {
	txns := e.transactions()

	var (
		d       domain.Dashboard
		insight domain.Insight
	)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Daily = dailyCumulative(txns, current)
		return gCtx.Err()
	})
	g.Go(func() error {
		insight = e.insightFor(txns, current, previous)
		return gCtx.Err()
	})

	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}

	d.Categories = insight.Categories
	d.Trend = insight.Trend
	d.Comparison = insight.Comparison
	d.Insight = &insight
	return d, nil
}

// Narrative renders the month-over-month sentence followed by the top
// category sentence when there is one.
func Narrative(c domain.PeriodComparison, categories []domain.CategorySummary) string {
	return narrative(decimal.NewFromFloat(c.Change), c, categories)
}

// narrative takes the exact change so that direction and dollar amount are
// decided before any rounding.
func narrative(change decimal.Decimal, c domain.PeriodComparison, categories []domain.CategorySummary) string {
	var b strings.Builder

	cur, prev := c.Current.Label(), c.Previous.Label()
	dollars := change.Abs().Round(0).IntPart()
	pct := c.PercentChange
	if pct < 0 {
		pct = -pct
	}

	switch change.Sign() {
	case 1:
		fmt.Fprintf(&b, "Your spending increased by $%d (%d%%) in %s compared to %s. ", dollars, pct, cur, prev)
	case -1:
		fmt.Fprintf(&b, "Great news! Your spending decreased by $%d (%d%%) in %s compared to %s. ", dollars, pct, cur, prev)
	default:
		fmt.Fprintf(&b, "Your spending remained consistent between %s and %s. ", prev, cur)
	}

	if len(categories) > 0 {
		top := categories[0]
		fmt.Fprintf(&b, "Your largest expense category in %s was %s at $%d (%d%% of total spending).",
			cur, top.Name, top.TotalAmount, top.PercentOfPeriodTotal)
	}

	return b.String()
}

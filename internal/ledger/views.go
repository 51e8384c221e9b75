package ledger

import (
	"fmt"
	"sort"

	"github.com/boddenberg/spending-insights-go/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ============================================================
// Category breakdown
// ============================================================

// CategoryBreakdown returns the top categories of p by amount, highest first.
// Percentages are taken against the period total and rounded per row, so they
// need not add up to 100. A period without spending yields an empty slice.
func (e *Engine) CategoryBreakdown(p domain.Period) []domain.CategorySummary {
	return categoryBreakdown(e.transactions(), p, e.icons)
}

func categoryBreakdown(txns []domain.Transaction, p domain.Period, icons map[string]string) []domain.CategorySummary {
	totals, periodTotal := categoryTotals(txns, p)
	if !periodTotal.IsPositive() {
		return []domain.CategorySummary{}
	}

	if len(totals) > TopCategories {
		totals = totals[:TopCategories]
	}

	out := make([]domain.CategorySummary, 0, len(totals))
	for _, c := range totals {
		out = append(out, domain.CategorySummary{
			Name:                 c.Name,
			TotalAmount:          c.Total.Round(0).IntPart(),
			PercentOfPeriodTotal: int(c.Total.Mul(hundred).Div(periodTotal).Round(0).IntPart()),
			DisplayIcon:          iconFor(icons, c.Name),
		})
	}
	return out
}

// CategoryTotals is the full, untruncated breakdown of p with exact sums.
func (e *Engine) CategoryTotals(p domain.Period) []domain.CategoryTotal {
	totals, _ := categoryTotals(e.transactions(), p)
	return totals
}

// categoryTotals sums per category and overall for p, sorted by sum
// descending with ties broken by name.
func categoryTotals(txns []domain.Transaction, p domain.Period) ([]domain.CategoryTotal, decimal.Decimal) {
	index := make(map[string]int)
	totals := make([]domain.CategoryTotal, 0)
	periodTotal := decimal.Zero

	for _, t := range txns {
		if !inPeriod(t, p) {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, domain.CategoryTotal{Name: t.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(t.Amount)
		totals[i].Count++
		periodTotal = periodTotal.Add(t.Amount)
	}

	sort.SliceStable(totals, func(a, b int) bool {
		if cmp := totals[a].Total.Cmp(totals[b].Total); cmp != 0 {
			return cmp > 0
		}
		return totals[a].Name < totals[b].Name
	})
	return totals, periodTotal
}

// ============================================================
// Daily cumulative series
// ============================================================

// DailyCumulative returns the running total of p by day of month. Days
// without transactions are absent.
func (e *Engine) DailyCumulative(p domain.Period) []domain.DayPoint {
	return dailyCumulative(e.transactions(), p)
}

func dailyCumulative(txns []domain.Transaction, p domain.Period) []domain.DayPoint {
	buckets := make(map[string]decimal.Decimal)
	for _, t := range txns {
		d, ok := t.ParsedDate()
		if !ok || !p.Contains(d) {
			continue
		}
		day := fmt.Sprintf("%02d", d.Day())
		buckets[day] = buckets[day].Add(t.Amount)
	}

	// Zero-padded day keys sort correctly as text.
	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]domain.DayPoint, 0, len(days))
	cumulative := decimal.Zero
	for _, day := range days {
		cumulative = cumulative.Add(buckets[day])
		out = append(out, domain.DayPoint{Day: day, Amount: cumulative.Round(0).IntPart()})
	}
	return out
}

// ============================================================
// Trend series
// ============================================================

// Trend totals the whole ledger per short month name, in the order months are
// first seen. Months that share a name across years share a bucket.
func (e *Engine) Trend() []domain.TrendPoint {
	return trend(e.transactions())
}

func trend(txns []domain.Transaction) []domain.TrendPoint {
	order := make([]string, 0, 12)
	totals := make(map[string]decimal.Decimal)

	for _, t := range txns {
		d, ok := t.ParsedDate()
		if !ok {
			continue
		}
		month := d.Format("Jan")
		if _, seen := totals[month]; !seen {
			order = append(order, month)
		}
		totals[month] = totals[month].Add(t.Amount)
	}

	out := make([]domain.TrendPoint, 0, len(order))
	for _, month := range order {
		out = append(out, domain.TrendPoint{Month: month, Amount: totals[month].Round(0).IntPart()})
	}
	return out
}

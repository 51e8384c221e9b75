package ledger

import (
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrentPeriod is the last complete month of the reference dataset.
var DefaultCurrentPeriod = domain.NewPeriod(2025, time.June)

// TopCategories is the number of rows returned by CategoryBreakdown.
const TopCategories = 5

// Options configures an Engine. Zero values fall back to the defaults.
type Options struct {
	Current  domain.Period
	Previous domain.Period // defaults to the month before Current
	Schema   Schema
	Icons    map[string]string
	Clock    func() time.Time // stamps LoadStats.LoadedAt only
}

type snapshot struct {
	txns  []domain.Transaction
	stats domain.LoadStats
}

// Engine owns the loaded transaction set and computes every derived view from
// it on demand. Loads swap an immutable snapshot with a single atomic store, so
// queries see either the previous set or the new one, never a mix. Callers must
// not run two loads at once.
type Engine struct {
	current  domain.Period
	previous domain.Period
	schema   Schema
	icons    map[string]string
	clock    func() time.Time

	set atomic.Pointer[snapshot]
}

// NewEngine creates an empty engine.
func NewEngine(opts Options) *Engine {
	if opts.Current.IsZero() {
		opts.Current = DefaultCurrentPeriod
	}
	if opts.Previous.IsZero() {
		opts.Previous = opts.Current.Previous()
	}
	if opts.Schema == (Schema{}) {
		opts.Schema = DefaultSchema
	}
	if opts.Schema.Delimiter == 0 {
		opts.Schema.Delimiter = DefaultSchema.Delimiter
	}
	if opts.Icons == nil {
		opts.Icons = DefaultIcons
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Engine{
		current:  opts.Current,
		previous: opts.Previous,
		schema:   opts.Schema,
		icons:    opts.Icons,
		clock:    opts.Clock,
	}
}

// Load replaces the transaction set with the rows parsed from raw. Invalid
// rows are dropped and counted; Load itself never fails.
func (e *Engine) Load(raw string) domain.LoadStats {
	stats, _ := e.LoadFrom(strings.NewReader(raw))
	return stats
}

// LoadFrom is Load over a reader. When the reader fails the previous set is
// kept and the error is returned.
func (e *Engine) LoadFrom(r io.Reader) (domain.LoadStats, error) {
	return e.LoadSource("", r)
}

// LoadSource is LoadFrom with the source recorded in the stats.
func (e *Engine) LoadSource(source string, r io.Reader) (domain.LoadStats, error) {
	txns, stats, err := Parse(r, e.schema)
	stats.LoadID = uuid.NewString()
	stats.Source = source
	stats.LoadedAt = e.clock()
	if err != nil {
		return stats, err
	}

	e.set.Store(&snapshot{txns: txns, stats: stats})
	return stats, nil
}

// State reports whether a load has completed.
func (e *Engine) State() domain.EngineState {
	if e.set.Load() == nil {
		return domain.StateEmpty
	}
	return domain.StateLoaded
}

// Stats returns the stats of the last completed load, or nil when empty.
func (e *Engine) Stats() *domain.LoadStats {
	return e.set.Load().loadStats()
}

// Status reports the state, size and last load of one snapshot, so the three
// always describe the same load.
func (e *Engine) Status() domain.LedgerStatus {
	s := e.set.Load()
	status := domain.LedgerStatus{
		State:    domain.StateEmpty,
		Current:  e.current,
		Previous: e.previous,
	}
	if s != nil {
		status.State = domain.StateLoaded
		status.Transactions = len(s.txns)
		status.LastLoad = s.loadStats()
	}
	return status
}

// loadStats copies the stats of s; nil when s is nil.
func (s *snapshot) loadStats() *domain.LoadStats {
	if s == nil {
		return nil
	}
	stats := s.stats
	stats.RejectReasons = make(map[string]int, len(s.stats.RejectReasons))
	for k, v := range s.stats.RejectReasons {
		stats.RejectReasons[k] = v
	}
	return &stats
}

// Len is the number of transactions held.
func (e *Engine) Len() int {
	return len(e.transactions())
}

// Transactions returns a copy of the loaded set.
func (e *Engine) Transactions() []domain.Transaction {
	txns := e.transactions()
	out := make([]domain.Transaction, len(txns))
	copy(out, txns)
	return out
}

// CurrentPeriod is the configured current period.
func (e *Engine) CurrentPeriod() domain.Period { return e.current }

// PreviousPeriod is the configured previous period.
func (e *Engine) PreviousPeriod() domain.Period { return e.previous }

func (e *Engine) transactions() []domain.Transaction {
	s := e.set.Load()
	if s == nil {
		return nil
	}
	return s.txns
}

// ============================================================
// Totals
// ============================================================

// PeriodTotal sums every transaction dated inside p.
func (e *Engine) PeriodTotal(p domain.Period) decimal.Decimal {
	return periodTotal(e.transactions(), p)
}

// CurrentPeriodTotal sums the configured current period.
func (e *Engine) CurrentPeriodTotal() decimal.Decimal {
	return e.PeriodTotal(e.current)
}

// PreviousPeriodTotal sums the configured previous period.
func (e *Engine) PreviousPeriodTotal() decimal.Decimal {
	return e.PeriodTotal(e.previous)
}

// Total sums the whole ledger, dated or not.
func (e *Engine) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range e.transactions() {
		total = total.Add(t.Amount)
	}
	return total
}

// Compare computes the delta between two periods. The percentage is 0 when
// the previous total is 0.
func (e *Engine) Compare(current, previous domain.Period) domain.PeriodComparison {
	txns := e.transactions()
	return compare(periodTotal(txns, current), periodTotal(txns, previous), current, previous)
}

func compare(cur, prev decimal.Decimal, current, previous domain.Period) domain.PeriodComparison {
	return domain.PeriodComparison{
		Current:       current,
		Previous:      previous,
		CurrentTotal:  cur.Round(2).InexactFloat64(),
		PreviousTotal: prev.Round(2).InexactFloat64(),
		Change:        cur.Sub(prev).Round(2).InexactFloat64(),
		PercentChange: percentChange(cur.Sub(prev), prev),
	}
}

// percentChange is change as a whole percentage of prev, with halves rounded
// toward positive infinity (-12.5 becomes -12). It is 0 when prev is not
// positive.
func percentChange(change, prev decimal.Decimal) int {
	if !prev.IsPositive() {
		return 0
	}
	return int(change.Mul(hundred).Div(prev).Add(half).Floor().IntPart())
}

var half = decimal.NewFromFloat(0.5)

func periodTotal(txns []domain.Transaction, p domain.Period) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if inPeriod(t, p) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// inPeriod is false for dates that cannot be parsed.
func inPeriod(t domain.Transaction, p domain.Period) bool {
	d, ok := t.ParsedDate()
	return ok && p.Contains(d)
}

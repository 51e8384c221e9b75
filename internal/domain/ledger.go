// Package domain defines the core entities of the spending insights service.
// These models are independent of transport and storage and represent the
// canonical data structures used throughout the service.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Ledger records
// ============================================================

// dateLayouts are tried in order when a transaction date is parsed.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// Transaction is a single accepted ledger row. It is never mutated after load.
type Transaction struct {
	AccountID   string          `json:"account_id"`
	Date        string          `json:"transaction_date"`
	Category    string          `json:"transaction_category"`
	Amount      decimal.Decimal `json:"transaction_amount"` // magnitude, always > 0
	Description string          `json:"transaction_description"`
}

// ParsedDate parses the raw date string. The second value is false when the
// string matches none of the supported layouts.
func (t Transaction) ParsedDate() (time.Time, bool) {
	return ParseDate(t.Date)
}

// ParseDate parses a ledger date string at day granularity.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ============================================================
// Periods
// ============================================================

// Period is a (month, year) selection used to filter period-scoped views.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod builds a period from a year and a 1-based month.
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, &ErrValidation{Field: "period", Message: fmt.Sprintf("expected YYYY-MM, got %q", s)}
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Previous returns the calendar month before p.
func (p Period) Previous() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Contains reports whether d falls in the same calendar month and year.
func (p Period) Contains(d time.Time) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

// Label is the full month name used in narratives ("June").
func (p Period) Label() string {
	return p.Month.String()
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// MarshalText renders the period as "YYYY-MM".
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses "YYYY-MM".
func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ============================================================
// Derived views (recomputed per query, never persisted)
// ============================================================

// CategorySummary is one row of the top-N category breakdown.
type CategorySummary struct {
	Name                 string `json:"name"`
	TotalAmount          int64  `json:"amount"` // rounded to whole currency units
	PercentOfPeriodTotal int    `json:"value"`  // rounded per row, not re-normalized
	DisplayIcon          string `json:"emoji"`
}

// CategoryTotal is an exact, untruncated per-category sum.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// DayPoint is one point of the sparse cumulative daily series.
type DayPoint struct {
	Day    string `json:"day"` // zero-padded day of month
	Amount int64  `json:"amount"`
}

// TrendPoint is one month of the ledger-wide trend series.
type TrendPoint struct {
	Month  string `json:"month"` // short month name
	Amount int64  `json:"amount"`
}

// PeriodComparison holds the current/previous totals and their delta.
type PeriodComparison struct {
	Current       Period  `json:"current"`
	Previous      Period  `json:"previous"`
	CurrentTotal  float64 `json:"currentTotal"`
	PreviousTotal float64 `json:"previousTotal"`
	Change        float64 `json:"change"`
	PercentChange int     `json:"percentChange"` // 0 when the previous total is 0
}

// Insight bundles the narrative with the views it was composed from.
type Insight struct {
	Narrative  string            `json:"content"`
	Trend      []TrendPoint      `json:"trends"`
	Categories []CategorySummary `json:"categories"`
	Comparison PeriodComparison  `json:"comparison"`
}

// ============================================================
// Load bookkeeping
// ============================================================

// Reasons a ledger row is rejected.
const (
	RejectAmount    = "amount"
	RejectCategory  = "category"
	RejectDate      = "date"
	RejectMalformed = "malformed"
)

// LoadStats describes the outcome of a single load.
type LoadStats struct {
	LoadID        string         `json:"loadId"`
	Source        string         `json:"source,omitempty"`
	Rows          int            `json:"rows"`
	Accepted      int            `json:"accepted"`
	Rejected      int            `json:"rejected"`
	RejectReasons map[string]int `json:"rejectReasons,omitempty"`
	LoadedAt      time.Time      `json:"loadedAt"`
}

// EngineState is either empty (never loaded) or loaded.
type EngineState string

const (
	StateEmpty  EngineState = "empty"
	StateLoaded EngineState = "loaded"
)

// LedgerStatus is returned by GET /v1/ledger/status.
type LedgerStatus struct {
	State        EngineState `json:"state"`
	Transactions int         `json:"transactions"`
	Current      Period      `json:"currentPeriod"`
	Previous     Period      `json:"previousPeriod"`
	LastLoad     *LoadStats  `json:"lastLoad,omitempty"`
}

// Dashboard is every view the presentation layer renders, in one payload.
type Dashboard struct {
	Categories []CategorySummary `json:"categories"`
	Daily      []DayPoint        `json:"daily"`
	Trend      []TrendPoint      `json:"trend"`
	Comparison PeriodComparison  `json:"comparison"`
	Insight    *Insight          `json:"insight"`
}

// Package ledger turns raw delimited ledger text into transactions and
// computes the derived spending views over the loaded set.
package ledger

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/boddenberg/spending-insights-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Parse reads a ledger with a header row followed by data rows. Rows that fail
// acceptance are dropped and counted in the returned stats; only a failing
// reader produces an error.
func Parse(r io.Reader, schema Schema) ([]domain.Transaction, domain.LoadStats, error) {
	stats := domain.LoadStats{RejectReasons: map[string]int{}}

	reader := csv.NewReader(r)
	reader.Comma = schema.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// Header: read and discarded, never validated.
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Transaction{}, stats, nil
		}
		if !isParseError(err) {
			return nil, stats, err
		}
	}

	txns := make([]domain.Transaction, 0, 64)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			if !isParseError(err) {
				return nil, stats, err
			}
			stats.Rejected++
			stats.RejectReasons[domain.RejectMalformed]++
			continue
		}

		t, reason := accept(record, schema)
		if reason != "" {
			stats.Rejected++
			stats.RejectReasons[reason]++
			continue
		}
		txns = append(txns, t)
		stats.Accepted++
	}

	return txns, stats, nil
}

// accept builds a transaction from one record, or returns the reason the row
// is rejected. Date parseability is left to the queries.
func accept(record []string, schema Schema) (domain.Transaction, string) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	amount, err := decimal.NewFromString(field(schema.Amount))
	if err != nil {
		return domain.Transaction{}, domain.RejectAmount
	}
	amount = amount.Abs()
	if !amount.IsPositive() {
		return domain.Transaction{}, domain.RejectAmount
	}

	category := field(schema.Category)
	if category == "" {
		return domain.Transaction{}, domain.RejectCategory
	}

	date := field(schema.Date)
	if date == "" {
		return domain.Transaction{}, domain.RejectDate
	}

	return domain.Transaction{
		AccountID:   field(schema.AccountID),
		Date:        date,
		Category:    category,
		Amount:      amount,
		Description: field(schema.Description),
	}, ""
}

func isParseError(err error) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe)
}

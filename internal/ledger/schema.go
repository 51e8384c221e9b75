package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/boddenberg/spending-insights-go/internal/domain"
)

// Schema maps ledger columns to transaction fields. Positions are a fixed
// contract; the header row is never used to infer them.
type Schema struct {
	AccountID   int
	Description int
	Category    int
	Amount      int
	Date        int
	Delimiter   rune
}

// DefaultSchema matches the bank export the service was built for.
var DefaultSchema = Schema{
	AccountID:   4,
	Description: 7,
	Category:    10,
	Amount:      12,
	Date:        13,
	Delimiter:   ',',
}

// ParseSchema overrides column positions of base from a list such as
// "account=0,date=1,category=2,amount=3,description=4". Unknown keys and
// negative positions are rejected.
func ParseSchema(overrides string, base Schema) (Schema, error) {
	s := base
	overrides = strings.TrimSpace(overrides)
	if overrides == "" {
		return s, nil
	}

	for _, part := range strings.Split(overrides, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return base, &domain.ErrValidation{Field: "schema", Message: fmt.Sprintf("expected key=index, got %q", part)}
		}
		idx, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || idx < 0 {
			return base, &domain.ErrValidation{Field: "schema", Message: fmt.Sprintf("invalid column index %q for %s", value, key)}
		}

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "account", "account_id":
			s.AccountID = idx
		case "description":
			s.Description = idx
		case "category":
			s.Category = idx
		case "amount":
			s.Amount = idx
		case "date":
			s.Date = idx
		default:
			return base, &domain.ErrValidation{Field: "schema", Message: fmt.Sprintf("unknown column %q", key)}
		}
	}
	return s, nil
}

// ParseDelimiter validates a single-character delimiter. "\t" and "tab" are
// accepted for tab separated ledgers.
func ParseDelimiter(v string) (rune, error) {
	switch v {
	case "":
		return DefaultSchema.Delimiter, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(v)
	if size != len(v) || !validDelimiter(r) {
		return 0, &domain.ErrValidation{Field: "delimiter", Message: fmt.Sprintf("invalid delimiter %q", v)}
	}
	return r, nil
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError
}

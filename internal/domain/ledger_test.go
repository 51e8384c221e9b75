package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Period
		wantErr bool
	}{
		{name: "iso month", input: "2025-06", want: domain.NewPeriod(2025, time.June)},
		{name: "surrounding spaces", input: " 2024-01 ", want: domain.NewPeriod(2024, time.January)},
		{name: "full date rejected", input: "2025-06-01", wantErr: true},
		{name: "month out of range", input: "2025-13", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParsePeriod(tt.input)
			if tt.wantErr {
				var validation *domain.ErrValidation
				require.Error(t, err)
				assert.True(t, errors.As(err, &validation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriod_Previous(t *testing.T) {
	assert.Equal(t, domain.NewPeriod(2025, time.May), domain.NewPeriod(2025, time.June).Previous())
	assert.Equal(t, domain.NewPeriod(2023, time.December), domain.NewPeriod(2024, time.January).Previous())
}

func TestPeriod_Contains(t *testing.T) {
	p := domain.NewPeriod(2024, time.January)

	assert.True(t, p.Contains(time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)))
}

func TestPeriod_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		P domain.Period `json:"p"`
	}{P: domain.NewPeriod(2025, time.June)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"2025-06"}`, string(b))

	var out struct {
		P domain.Period `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"p":"2024-02"}`), &out))
	assert.Equal(t, domain.NewPeriod(2024, time.February), out.P)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		month time.Month
		day   int
	}{
		{input: "2024-01-15", ok: true, month: time.January, day: 15},
		{input: "2024-01-15T10:30:00Z", ok: true, month: time.January, day: 15},
		{input: "2024-01-15 10:30:00", ok: true, month: time.January, day: 15},
		{input: "01/19/2024", ok: true, month: time.January, day: 19},
		{input: "2024-13-45", ok: false},
		{input: "yesterday", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, ok := domain.ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.month, d.Month())
				assert.Equal(t, tt.day, d.Day())
			}
		})
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/boddenberg/spending-insights-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerText = "id,posted,type,status,account_id,merchant_id,mcc,transaction_display_name,channel,currency,category_display_name,category_id,transaction_amount,transaction_date\n" +
	",,,,acc-1,,,dinner,,,Dining,,-100.00,2025-05-04\n" +
	",,,,acc-1,,,dinner,,,Dining,,-150.00,2025-06-02\n" +
	",,,,acc-1,,,rent,,,Rent,,-900.00,2025-06-03\n" +
	",,,,acc-1,,,broken,,,Rent,,n/a,2025-06-03\n"

func writeLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(ledgerText), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"load", "categories", "daily", "trend", "summary", "ask"} {
		assert.True(t, names[want], want)
	}

	flag := cmd.PersistentFlags().Lookup("current")
	require.NotNil(t, flag)
	assert.Equal(t, "2025-06", flag.DefValue)
}

func TestLoadCmd_JSON(t *testing.T) {
	out, err := run(t, "load", "--json", "--source", writeLedger(t))
	require.NoError(t, err)

	var stats domain.LoadStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 1, stats.RejectReasons[domain.RejectAmount])
}

func TestCategoriesCmd_Table(t *testing.T) {
	out, err := run(t, "categories", "--source", writeLedger(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "$900")
	assert.Contains(t, out, "86%")
}

func TestSummaryCmd(t *testing.T) {
	out, err := run(t, "summary", "--source", writeLedger(t))
	require.NoError(t, err)
	assert.Contains(t, out, "increased by $950")
}

func TestAskCmd_JSON(t *testing.T) {
	out, err := run(t, "ask", "--json", "--source", writeLedger(t), "show", "my", "trend")
	require.NoError(t, err)
	assert.Contains(t, out, `"intent": "trend"`)
}

func TestSourceFromEnv(t *testing.T) {
	t.Setenv("LEDGER_SOURCE", writeLedger(t))

	out, err := run(t, "trend", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"month": "Jun"`)
}

func TestMissingSource(t *testing.T) {
	t.Setenv("LEDGER_SOURCE", "")
	_, err := run(t, "trend")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ledger source")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "", bar(5, 0))
	assert.Len(t, []rune(bar(10, 10)), barWidth)
	assert.Len(t, []rune(bar(1, 1000)), 1)
}

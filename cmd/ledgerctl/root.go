package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/spending-insights-go/internal/config"
	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/infra/observability"
	"github.com/boddenberg/spending-insights-go/internal/infra/resilience"
	"github.com/boddenberg/spending-insights-go/internal/infra/source"
	"github.com/boddenberg/spending-insights-go/internal/ledger"
	"github.com/boddenberg/spending-insights-go/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Viper keys. Each is also read from LEDGER_<KEY>.
const (
	keySource    = "source"
	keySchema    = "schema"
	keyDelimiter = "delimiter"
	keyCurrent   = "current"
	keyPrevious  = "previous"
	keyLogLevel  = "log_level"
	keyJSON      = "json"
	keyTimeout   = "timeout"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect a ledger export from the command line",
		Long: `ledgerctl loads a delimited ledger export from a file, an http(s) URL or a
gs:// object and prints the same views the insights service serves.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = config.LoadDotEnv(".env")
			v.SetEnvPrefix("LEDGER")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringP(keySource, "s", "", "ledger file, http(s) URL or gs:// URI (env LEDGER_SOURCE)")
	flags.String(keySchema, "", "column overrides, e.g. date=0,category=1,amount=2")
	flags.String(keyDelimiter, ",", "field delimiter (single character or \"tab\")")
	flags.String(keyCurrent, ledger.DefaultCurrentPeriod.String(), "current period (YYYY-MM)")
	flags.String(keyPrevious, "", "previous period (YYYY-MM, default: month before current)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Bool(keyJSON, false, "print JSON instead of tables")
	flags.Duration(keyTimeout, 30*time.Second, "fetch timeout for remote sources")

	for _, key := range []string{keySource, keySchema, keyDelimiter, keyCurrent, keyPrevious, keyJSON, keyTimeout} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	_ = v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(loadCmd(v))
	root.AddCommand(categoriesCmd(v))
	root.AddCommand(dailyCmd(v))
	root.AddCommand(trendCmd(v))
	root.AddCommand(summaryCmd(v))
	root.AddCommand(chatCmd(v))

	return root
}

// session is a loaded ledger ready for queries.
type session struct {
	svc    *service.InsightsService
	stats  *domain.LoadStats
	logger *zap.Logger
	json   bool
}

// open fetches and loads the configured ledger.
func open(ctx context.Context, v *viper.Viper) (*session, error) {
	uri := v.GetString(keySource)
	if uri == "" {
		return nil, fmt.Errorf("no ledger source: pass --source or set LEDGER_SOURCE")
	}

	cfg := &config.Config{
		LedgerSchema:    v.GetString(keySchema),
		LedgerDelimiter: v.GetString(keyDelimiter),
		CurrentPeriod:   v.GetString(keyCurrent),
		PreviousPeriod:  v.GetString(keyPrevious),
	}
	current, previous, err := cfg.Periods()
	if err != nil {
		return nil, err
	}
	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}

	timeout := v.GetDuration(keyTimeout)
	src, err := source.New(uri, source.Options{
		HTTPClient: &http.Client{Timeout: timeout},
		Resilience: resilience.Config{MaxRetries: 2, InitialBackoff: 200 * time.Millisecond},
	})
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(v.GetString(keyLogLevel))
	engine := ledger.NewEngine(ledger.Options{Current: current, Previous: previous, Schema: schema})
	svc := service.NewInsightsService(engine, src, observability.NewMetrics(), logger)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	stats, err := svc.Reload(ctx, false)
	if err != nil {
		return nil, err
	}

	return &session{svc: svc, stats: stats, logger: logger, json: v.GetBool(keyJSON)}, nil
}

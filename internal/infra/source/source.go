// Package source fetches raw ledger text from a file, an HTTP endpoint or a
// Google Cloud Storage object.
package source

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/infra/resilience"
	"github.com/boddenberg/spending-insights-go/internal/port"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("source")

// maxLedgerBytes caps a single fetch.
var maxLedgerBytes int64 = 64 << 20

// ErrLedgerTooLarge is returned when a source holds more than maxLedgerBytes.
var ErrLedgerTooLarge = errors.New("ledger exceeds the size limit")

// readLimited reads all of r, failing permanently rather than returning a
// truncated ledger when r is larger than maxLedgerBytes.
func readLimited(r io.Reader) ([]byte, error) {
	limit := maxLedgerBytes
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, resilience.Permanent(fmt.Errorf("%w of %d bytes", ErrLedgerTooLarge, limit))
	}
	return data, nil
}

// CacheRecorder receives cache metrics. *observability.Metrics implements it.
type CacheRecorder interface {
	IncrCacheHit(cache string)
	IncrCacheMiss(cache string)
}

// Options configures the sources built by New.
type Options struct {
	HTTPClient *http.Client
	Resilience resilience.Config
	// Cache holds fetched text for remote sources. Nil disables caching.
	Cache   port.Cache[string]
	Metrics CacheRecorder
}

// New picks a source for uri: gs://bucket/object, http(s)://..., or a local
// path (optionally prefixed with file://).
func New(uri string, opts Options) (port.LedgerSource, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, &domain.ErrValidation{Field: "source", Message: "ledger source is empty"}
	}

	var (
		src    port.LedgerSource
		remote = true
		err    error
	)
	switch {
	case strings.HasPrefix(uri, "gs://"):
		src, err = NewGCS(uri, resilience.NewCircuitBreaker("ledger-gcs"), opts.Resilience)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		client := opts.HTTPClient
		if client == nil {
			client = http.DefaultClient
		}
		src = NewHTTP(client, uri, resilience.NewCircuitBreaker("ledger-http"), opts.Resilience)
	default:
		src = NewFile(strings.TrimPrefix(uri, "file://"))
		remote = false
	}
	if err != nil {
		return nil, fmt.Errorf("ledger source %q: %w", uri, err)
	}

	if remote && opts.Cache != nil {
		src = NewCached(src, opts.Cache, opts.Metrics)
	}
	return src, nil
}

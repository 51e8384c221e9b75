package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// HTTP downloads the ledger with a GET request.
type HTTP struct {
	httpClient *http.Client
	url        string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewHTTP creates a new HTTP source.
func NewHTTP(httpClient *http.Client, url string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *HTTP {
	return &HTTP{
		httpClient: httpClient,
		url:        url,
		cb:         cb,
		cfg:        cfg,
	}
}

// Name implements port.LedgerSource.
func (h *HTTP) Name() string { return h.url }

// Fetch downloads the ledger with retry, circuit breaker, and tracing.
func (h *HTTP) Fetch(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "HTTP.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.url", h.url))

	text, err := resilience.Call(ctx, h.cb, h.cfg, h.get)
	if err != nil {
		span.RecordError(err)
		return "", &domain.ErrExternalService{Service: "ledger-http", Err: err}
	}
	span.SetAttributes(attribute.Int("ledger.bytes", len(text)))
	return text, nil
}

func (h *HTTP) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return "", resilience.Permanent(err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", resilience.Permanent(&domain.ErrNotFound{Resource: "ledger", ID: h.url})
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", resilience.Permanent(fmt.Errorf("ledger endpoint returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("ledger endpoint returned status %d", resp.StatusCode)
	}

	body, err := readLimited(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boddenberg/spending-insights-go/internal/domain"
	"github.com/boddenberg/spending-insights-go/internal/infra/resilience"

	"cloud.google.com/go/storage"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

type objectReader func(ctx context.Context, bucket, object string) ([]byte, error)

// GCS reads the ledger from a Cloud Storage object.
type GCS struct {
	bucket string
	object string
	cb     *gobreaker.CircuitBreaker
	cfg    resilience.Config
	read   objectReader
}

// NewGCS creates a source for a gs://bucket/path/to/object URI. Credentials
// come from the environment (Application Default Credentials).
func NewGCS(uri string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) (*GCS, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	return &GCS{bucket: bucket, object: object, cb: cb, cfg: cfg, read: readObject}, nil
}

// ParseGCSURI splits gs://bucket/object into its parts.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", &domain.ErrValidation{Field: "source", Message: fmt.Sprintf("not a GCS URI: %s", uri)}
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(uri, "gs://"), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", &domain.ErrValidation{Field: "source", Message: fmt.Sprintf("invalid GCS URI (no object path): %s", uri)}
	}
	return bucket, object, nil
}

// Name implements port.LedgerSource.
func (g *GCS) Name() string { return "gs://" + g.bucket + "/" + g.object }

// Fetch implements port.LedgerSource.
func (g *GCS) Fetch(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "GCS.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("gcs.bucket", g.bucket),
		attribute.String("gcs.object", g.object),
	)

	data, err := resilience.Call(ctx, g.cb, g.cfg, func(ctx context.Context) ([]byte, error) {
		data, err := g.read(ctx, g.bucket, g.object)
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, resilience.Permanent(&domain.ErrNotFound{Resource: "ledger object", ID: g.Name()})
		}
		return data, err
	})
	if err != nil {
		span.RecordError(err)
		return "", &domain.ErrExternalService{Service: "ledger-gcs", Err: err}
	}
	return string(data), nil
}

func readObject(ctx context.Context, bucket, object string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := readLimited(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}

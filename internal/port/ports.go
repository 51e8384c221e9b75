// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from where ledger text comes from and how it is cached.
package port

import "context"

// LedgerSource fetches the raw ledger text from wherever it lives.
type LedgerSource interface {
	// Name identifies the source in logs, metrics and load stats.
	Name() string
	Fetch(ctx context.Context) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

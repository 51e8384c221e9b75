package source

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/boddenberg/spending-insights-go/internal/domain"
)

// File reads the ledger from the local filesystem on every fetch.
type File struct {
	path string
}

// NewFile creates a File source.
func NewFile(path string) *File {
	return &File{path: path}
}

// Name implements port.LedgerSource.
func (f *File) Name() string { return "file:" + f.path }

// Fetch implements port.LedgerSource.
func (f *File) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &domain.ErrNotFound{Resource: "ledger file", ID: f.path}
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := readLimited(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

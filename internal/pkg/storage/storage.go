package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid file path")
)

// FileStorage keeps generated report files
type FileStorage interface {
	// Upload stores a file and returns its key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download opens a stored file; ErrNotFound when it does not exist
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	Delete(ctx context.Context, path string) error

	// GetURL returns the public URL of a key
	GetURL(ctx context.Context, path string) (string, error)

	// Prune removes files last modified before the cutoff and returns how many
	Prune(ctx context.Context, before time.Time) (int, error)
}

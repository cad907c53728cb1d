package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("file not found")

type FileStorage interface {
	// Put writes the content under path, replacing any previous file atomically
	Put(ctx context.Context, path string, content io.Reader) error

	// Get retrieves a file, ErrNotFound when it does not exist
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}

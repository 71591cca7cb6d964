package persistence

import (
	"context"
	"errors"
)

// ErrNoDocument is returned by Medium.Read when nothing has been stored yet.
var ErrNoDocument = errors.New("no mind map document stored")

// Medium is a backing store for one serialized mind map document.
// Implementations must make Write atomic: a concurrent Read sees either the
// previous bytes or the new bytes in full.
type Medium interface {
	// Name identifies the medium in logs and metrics.
	Name() string

	// Read returns the stored bytes or ErrNoDocument.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored bytes.
	Write(ctx context.Context, data []byte) error

	// Create stores data only if nothing is stored yet. It reports false,
	// without error, when a document already exists.
	Create(ctx context.Context, data []byte) (bool, error)
}

package ports

import (
	"context"
	"io"
	"time"

	"pgy3-backend/domain/mindmap"
)

// DocumentStore owns the single persisted mind map.
// This is a port in hexagonal architecture; media live in infrastructure.
type DocumentStore interface {
	// Load returns the current document, materialising the seed on first use.
	Load(ctx context.Context) (*mindmap.Document, error)

	// Save validates doc and atomically replaces the stored document.
	Save(ctx context.Context, doc *mindmap.Document) error
}

// DocumentSaved describes a completed save for downstream consumers.
type DocumentSaved struct {
	Reason  string         `json:"reason"`
	Counts  mindmap.Counts `json:"counts"`
	SavedAt time.Time      `json:"saved_at"`
}

// ChangeNotifier announces saved documents. Failures are reported to the
// caller but never undo the save.
type ChangeNotifier interface {
	DocumentSaved(ctx context.Context, event DocumentSaved) error
}

// FileStorage keeps uploaded attachments.
type FileStorage interface {
	// Put stores r under a fresh name derived from original and returns the
	// public path the frontend should link to.
	Put(ctx context.Context, original string, r io.Reader) (string, error)

	// Remove deletes a stored file by its public path.
	Remove(ctx context.Context, publicPath string) error
}

// Clock lets handlers and tests agree on "now".
type Clock func() time.Time

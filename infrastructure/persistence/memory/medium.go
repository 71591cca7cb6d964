// Package memory keeps the mind map in process memory. It backs tests and
// throwaway demo deployments.
package memory

import (
	"context"
	"sync"

	"pgy3-backend/infrastructure/persistence"
)

type Medium struct {
	mu     sync.RWMutex
	data   []byte
	stored bool
}

func New() *Medium {
	return &Medium{}
}

func (m *Medium) Name() string { return "memory" }

func (m *Medium) Read(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.stored {
		return nil, persistence.ErrNoDocument
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Medium) Write(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.stored = true
	return nil
}

func (m *Medium) Create(ctx context.Context, data []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored {
		return false, nil
	}
	m.data = append([]byte(nil), data...)
	m.stored = true
	return true, nil
}

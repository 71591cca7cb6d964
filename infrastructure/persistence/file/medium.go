// Package file stores the mind map as a single JSON file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pgy3-backend/infrastructure/persistence"
)

// Medium keeps the document in one file. Writes go to a temporary file in
// the same directory which is then renamed over the target, so readers never
// observe a partial document.
type Medium struct {
	path string
	perm fs.FileMode
}

func New(path string) *Medium {
	return &Medium{path: path, perm: 0o644}
}

func (m *Medium) Name() string { return "file" }

// Path returns the document file location.
func (m *Medium) Path() string { return m.path }

func (m *Medium) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", m.path, err)
	}
	return data, nil
}

func (m *Medium) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := m.writeTemp(data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming document into place: %w", err)
	}
	m.syncDir()
	return nil
}

// Create hard-links a fully written temporary file to the target path. The
// link fails if the target exists, which makes creation exclusive without a
// window where the file is visible but empty.
func (m *Medium) Create(ctx context.Context, data []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	tmp, err := m.writeTemp(data)
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, m.path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("linking document into place: %w", err)
	}
	m.syncDir()
	return true, nil
}

func (m *Medium) writeTemp(data []byte) (string, error) {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(m.path)+"-*")
	if err != nil {
		return "", fmt.Errorf("creating temporary document: %w", err)
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("writing temporary document: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("syncing temporary document: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("closing temporary document: %w", err)
	}
	if err := os.Chmod(name, m.perm); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("setting document permissions: %w", err)
	}
	return name, nil
}

// syncDir makes the rename durable across power loss.
func (m *Medium) syncDir() {
	if dir, err := os.Open(filepath.Dir(m.path)); err == nil {
		dir.Sync()
		dir.Close()
	}
}

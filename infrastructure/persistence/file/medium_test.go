package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgy3-backend/infrastructure/persistence"
	"pgy3-backend/infrastructure/persistence/persistencetest"
)

func TestMediumContract(t *testing.T) {
	persistencetest.RunMediumContract(t, func(t *testing.T) persistence.Medium {
		return New(filepath.Join(t.TempDir(), "data", "mindmap.json"))
	})
}

func TestWriteLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	m := New(filepath.Join(dir, "mindmap.json"))
	ctx := context.Background()

	_, err := m.Create(ctx, []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, m.Write(ctx, []byte(`{"topics":[]}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mindmap.json", entries[0].Name())

	info, err := os.Stat(m.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestReadSurfacesOtherErrors(t *testing.T) {
	dir := t.TempDir()
	// A directory at the document path cannot be read as a file.
	path := filepath.Join(dir, "mindmap.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := New(path).Read(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, persistence.ErrNoDocument)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := New(filepath.Join(t.TempDir(), "mindmap.json"))
	assert.ErrorIs(t, m.Write(ctx, []byte(`{}`)), context.Canceled)
	_, err := m.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

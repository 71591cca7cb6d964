package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgy3-backend/infrastructure/persistence"
	"pgy3-backend/infrastructure/persistence/persistencetest"
)

func TestMediumContract(t *testing.T) {
	persistencetest.RunMediumContract(t, func(t *testing.T) persistence.Medium {
		m, err := Open(filepath.Join(t.TempDir(), "mindmap.db"), "")
		require.NoError(t, err)
		t.Cleanup(func() { m.Close() })
		return m
	})
}

func TestKeysAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindmap.db")
	ctx := context.Background()

	a, err := Open(path, "resident-a")
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(path, "resident-b")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Write(ctx, []byte(`{"owner":"a"}`)))

	_, err = b.Read(ctx)
	assert.ErrorIs(t, err, persistence.ErrNoDocument)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindmap.db")
	ctx := context.Background()

	m, err := Open(path, "")
	require.NoError(t, err)
	require.NoError(t, m.Write(ctx, []byte(`{"kept":true}`)))
	require.NoError(t, m.Close())

	m, err = Open(path, "")
	require.NoError(t, err)
	defer m.Close()

	data, err := m.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kept":true}`, string(data))
}

func TestInMemoryDatabase(t *testing.T) {
	m, err := Open(":memory:", "")
	require.NoError(t, err)
	defer m.Close()

	created, err := m.Create(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, created)
}

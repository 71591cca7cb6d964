// Package persistencetest holds the behaviour every persistence.Medium must
// share, run by each medium's own tests.
package persistencetest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pgy3-backend/domain/mindmap"
	"pgy3-backend/infrastructure/persistence"
)

const handleDocument = `{"topics": [], "cases": [], "tasks": [], "literature": [], "connections": [
  {"id": "e1", "source": "abc", "target": "def", "sourceHandle": "abc-bottom", "targetHandle": "def-top"},
  {"id": "e2", "source": "abc", "target": "ghi", "sourceHandle": "bottom", "targetHandle": "top", "animated": true},
  {"id": "e3", "source": "def", "target": "ghi", "sourceHandle": null, "targetHandle": "left"}
]}`

// RunMediumContract exercises m, which must start empty.
func RunMediumContract(t *testing.T, newMedium func(t *testing.T) persistence.Medium) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty medium reports no document", func(t *testing.T) {
		m := newMedium(t)
		_, err := m.Read(ctx)
		assert.ErrorIs(t, err, persistence.ErrNoDocument)
	})

	t.Run("write then read", func(t *testing.T) {
		m := newMedium(t)
		require.NoError(t, m.Write(ctx, []byte(`{"topics":[{"id":"a"}]}`)))
		require.NoError(t, m.Write(ctx, []byte(`{"topics":[{"id":"b"}]}`)))

		data, err := m.Read(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"topics":[{"id":"b"}]}`, string(data))
	})

	t.Run("create only succeeds once", func(t *testing.T) {
		m := newMedium(t)
		created, err := m.Create(ctx, []byte(`{"first":true}`))
		require.NoError(t, err)
		assert.True(t, created)

		created, err = m.Create(ctx, []byte(`{"first":false}`))
		require.NoError(t, err)
		assert.False(t, created)

		data, err := m.Read(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"first":true}`, string(data))
	})

	t.Run("create after write keeps written data", func(t *testing.T) {
		m := newMedium(t)
		require.NoError(t, m.Write(ctx, []byte(`{"v":1}`)))

		created, err := m.Create(ctx, []byte(`{"v":2}`))
		require.NoError(t, err)
		assert.False(t, created)

		data, err := m.Read(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(data))
	})

	t.Run("store keeps legacy and bare handles", func(t *testing.T) {
		store := persistence.NewStore(newMedium(t), zap.NewNop())
		doc, err := mindmap.DecodeDocument([]byte(handleDocument))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, doc))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got.Connections, 3)
		assert.Equal(t, "abc-bottom", got.Connections[0].SourceHandle)
		assert.Equal(t, "bottom", got.Connections[1].SourceHandle)
		assert.Equal(t, 1, got.Counts().LegacyHandles)

		want, err := json.Marshal(doc.Connections)
		require.NoError(t, err)
		have, err := json.Marshal(got.Connections)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(have))
	})

	t.Run("concurrent creates elect one winner", func(t *testing.T) {
		m := newMedium(t)
		const writers = 8

		var wg sync.WaitGroup
		results := make([]bool, writers)
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = m.Create(ctx, []byte(`{"seeded":true}`))
			}(i)
		}
		wg.Wait()

		winners := 0
		for i := range results {
			require.NoError(t, errs[i])
			if results[i] {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
	})
}

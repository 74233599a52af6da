package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Set(ctx, "users/abc", map[string]any{"name": "Ava"})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, s.Get(ctx, "users/abc", &out))
	assert.Equal(t, "Ava", out["name"])
}

func TestMemoryStoreAbsentPathReadsAsNull(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var out *map[string]any
	require.NoError(t, s.Get(ctx, "users/missing", &out))
	assert.Nil(t, out)
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "users/abc", map[string]any{"name": "Ava", "city": "Northgate"}))
	require.NoError(t, s.Update(ctx, "users/abc", map[string]any{"city": "Old Town"}))

	var out map[string]any
	require.NoError(t, s.Get(ctx, "users/abc", &out))
	assert.Equal(t, "Ava", out["name"])
	assert.Equal(t, "Old Town", out["city"])
}

func TestMemoryStorePushGeneratesUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	seen := map[string]bool{}
	for range 50 {
		key, err := s.Push(ctx, "items", map[string]any{"v": 1})
		require.NoError(t, err)
		require.NotEmpty(t, key)
		assert.False(t, seen[key], "duplicate push key %s", key)
		seen[key] = true
	}

	var items map[string]any
	require.NoError(t, s.Get(ctx, "items", &items))
	assert.Len(t, items, 50)
}

func TestMemoryStoreRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "users/abc", map[string]any{"name": "Ava"}))
	require.NoError(t, s.Remove(ctx, "users/abc"))

	var out *map[string]any
	require.NoError(t, s.Get(ctx, "users/abc", &out))
	assert.Nil(t, out)
}

func TestMemoryStoreTransactionAbortLeavesValueIntact(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "counters/a", map[string]any{"n": 1}))

	sentinel := assert.AnError
	err := s.Transaction(ctx, "counters/a", func(node Node) (any, error) {
		return nil, sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var out map[string]any
	require.NoError(t, s.Get(ctx, "counters/a", &out))
	assert.EqualValues(t, 1, out["n"])
}

func TestMemoryStoreTransactionSerializes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "counters/a", map[string]any{"n": 0}))

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Transaction(ctx, "counters/a", func(node Node) (any, error) {
				var value map[string]float64
				if err := node.Unmarshal(&value); err != nil {
					return nil, err
				}
				value["n"]++
				return value, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var out map[string]float64
	require.NoError(t, s.Get(ctx, "counters/a", &out))
	assert.EqualValues(t, 100, out["n"])
}

package usage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(NewMemoryCounter(), map[string]int{"strategist": 3})

	st, err := tr.Status(ctx, "alice", "strategist")
	require.NoError(t, err)
	assert.Equal(t, Status{Used: 0, Limit: 3, Remaining: 3}, st)
	assert.False(t, st.Exhausted())

	for i := 0; i < 3; i++ {
		_, err := tr.TryConsume(ctx, "alice", "strategist")
		require.NoError(t, err)
	}
	st, err = tr.Status(ctx, "alice", "strategist")
	require.NoError(t, err)
	assert.True(t, st.Exhausted())
	assert.Equal(t, 0, st.Remaining)

	st, err = tr.TryConsume(ctx, "alice", "strategist")
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, 3, st.Used)
	assert.True(t, st.Exhausted())

	other, err := tr.Status(ctx, "bob", "strategist")
	require.NoError(t, err)
	assert.Equal(t, 0, other.Used)

	for i := 0; i < 5; i++ {
		unlimited, err := tr.TryConsume(ctx, "alice", "content_audit")
		require.NoError(t, err)
		assert.False(t, unlimited.Exhausted())
		assert.Equal(t, i+1, unlimited.Used)
	}
}

func TestTryConsumeConcurrent(t *testing.T) {
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	defer sqlite.Close()

	counters := map[string]Counter{
		"memory": NewMemoryCounter(),
		"sqlite": sqlite,
	}
	for name, counter := range counters {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tr := NewTracker(counter, map[string]int{"strategist": 3})

			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				accepted int
				refused  int
			)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := tr.TryConsume(ctx, "alice", "strategist")
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						accepted++
					case errors.Is(err, ErrLimitReached):
						refused++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 3, accepted)
			assert.Equal(t, 17, refused)
			st, err := tr.Status(ctx, "alice", "strategist")
			require.NoError(t, err)
			assert.Equal(t, 3, st.Used)
		})
	}
}

func TestSQLiteIncrementBelow(t *testing.T) {
	ctx := context.Background()
	c, err := OpenSQLite(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	defer c.Close()

	n, ok, err := c.IncrementBelow(ctx, "k", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok, err = c.IncrementBelow(ctx, "k", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok, err = c.IncrementBelow(ctx, "k", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, n)

	// A raised limit lets the same key continue.
	n, ok, err = c.IncrementBelow(ctx, "k", 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestTrackerCopiesLimits(t *testing.T) {
	limits := map[string]int{"strategist": 1}
	tr := NewTracker(nil, limits)
	limits["strategist"] = 100

	st, err := tr.Status(context.Background(), "c", "strategist")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Limit)
}

func TestSQLiteCounter(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "usage.db")

	c, err := OpenSQLite(path)
	require.NoError(t, err)

	n, err := c.Get(ctx, Key("alice", "strategist"))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.Increment(ctx, Key("alice", "strategist"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = c.Increment(ctx, Key("alice", "strategist"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, c.Close())

	// Counts survive a reopen.
	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	n, err = reopened.Get(ctx, Key("alice", "strategist"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, path, reopened.Path())
}

func TestSQLiteCounterConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	c, err := OpenSQLite(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Increment(ctx, "k")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dat-catalog/core/catalog"
	"dat-catalog/core/items"
	"dat-catalog/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errDBGone = errors.New("db gone")

// flakyStore is a memory store whose writes can fail once per operation and
// key, and which can run a hook on the first append.
type flakyStore struct {
	*store.Memory

	mu       sync.Mutex
	fail     map[string]string
	onAppend func(key string)
}

func newFlakyStore(fail map[string]string) *flakyStore {
	if fail == nil {
		fail = map[string]string{}
	}
	return &flakyStore{Memory: store.NewMemory(), fail: fail}
}

func (s *flakyStore) trip(op, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.fail[op]; ok && k == key {
		delete(s.fail, op)
		return errDBGone
	}
	return nil
}

func (s *flakyStore) DeleteKey(ctx context.Context, key string) error {
	if err := s.trip("delete", key); err != nil {
		return err
	}
	return s.Memory.DeleteKey(ctx, key)
}

func (s *flakyStore) Replace(ctx context.Context, key string, list []*items.Item) error {
	if err := s.trip("replace", key); err != nil {
		return err
	}
	return s.Memory.Replace(ctx, key, list)
}

func (s *flakyStore) Append(ctx context.Context, key string, list ...*items.Item) error {
	if err := s.trip("append", key); err != nil {
		return err
	}

	s.mu.Lock()
	hook := s.onAppend
	s.onAppend = nil
	s.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	return s.Memory.Append(ctx, key, list...)
}

func newFlakyCatalog(t *testing.T, s *flakyStore) *catalog.Catalog {
	t.Helper()
	c := catalog.New(s, catalog.Config{Workers: 4, LockShards: 16}, zap.NewNop(), nil)
	require.NoError(t, c.AddItems(context.Background(), []*items.Item{
		rom("pacman", 0, "pacman.6e", "c1e6ab10"),
		rom("puckman", 0, "pm1.6e", "c1e6ab10"),
	}))
	return c
}

func removedIn(list []*items.Item) int {
	n := 0
	for _, it := range list {
		if it.Remove {
			n++
		}
	}
	return n
}

func TestBucketBy_FailedWritesNeverCopy(t *testing.T) {
	ctx := context.Background()
	opts := catalog.BucketOptions{Key: items.KeyCRC, Dedupe: items.DedupeFull}

	assertMerged := func(t *testing.T, c *catalog.Catalog) {
		t.Helper()
		require.NoError(t, c.BucketBy(ctx, opts))
		assert.Equal(t, []string{"c1e6ab10"}, c.SortedKeys(ctx))

		list, err := c.Items(ctx, "c1e6ab10")
		require.NoError(t, err)
		assert.Len(t, list, 2)
		assert.Equal(t, 1, removedIn(list))
		assert.Equal(t, int64(1), c.Statistics().RemovedCount)
		assert.NoError(t, c.CheckStatistics(ctx))
	}

	t.Run("Source delete fails", func(t *testing.T) {
		c := newFlakyCatalog(t, newFlakyStore(map[string]string{"delete": "pacman-0"}))

		err := c.BucketBy(ctx, opts)
		require.ErrorIs(t, err, catalog.ErrStoreUnavailable)
		assert.ErrorIs(t, err, errDBGone)
		assert.Equal(t, items.KeyNone, c.BucketedBy())

		assert.Equal(t, 2, countItems(t, c))
		assert.NoError(t, c.CheckStatistics(ctx))
		assert.Len(t, c.FilteredItems(ctx, "pacman-0"), 1)
		assert.Len(t, c.FilteredItems(ctx, "c1e6ab10"), 1)

		assertMerged(t, c)
	})

	t.Run("Destination append fails", func(t *testing.T) {
		c := newFlakyCatalog(t, newFlakyStore(map[string]string{"append": "c1e6ab10"}))

		err := c.BucketBy(ctx, opts)
		require.ErrorIs(t, err, catalog.ErrStoreUnavailable)
		assert.Equal(t, items.KeyNone, c.BucketedBy())

		assert.Equal(t, 2, countItems(t, c))
		assert.NoError(t, c.CheckStatistics(ctx))
		assert.Len(t, c.FilteredItems(ctx, "pacman-0"), 1)
		assert.Len(t, c.FilteredItems(ctx, "puckman-0"), 1)
		assert.Empty(t, c.FilteredItems(ctx, "c1e6ab10"))

		assertMerged(t, c)
	})

	t.Run("Partial source rewrite fails", func(t *testing.T) {
		s := newFlakyStore(nil)
		c := newFlakyCatalog(t, s)
		require.NoError(t, c.Add(ctx, "c1e6ab10", rom("pacman", 1, "pacman.6e", "c1e6ab10")))

		// The bucket keeps one item and loses another, so it is rewritten.
		require.NoError(t, c.Add(ctx, "c1e6ab10", rom("galaga", 0, "gg1.1", "a3a0f743")))
		s.mu.Lock()
		s.fail["replace"] = "c1e6ab10"
		s.mu.Unlock()

		err := c.BucketBy(ctx, catalog.BucketOptions{Key: items.KeyCRC})
		require.ErrorIs(t, err, catalog.ErrStoreUnavailable)
		assert.Equal(t, 4, countItems(t, c))
		assert.NoError(t, c.CheckStatistics(ctx))
		assert.False(t, c.ContainsKey(ctx, "a3a0f743"))

		require.NoError(t, c.BucketBy(ctx, catalog.BucketOptions{Key: items.KeyCRC}))
		assert.Equal(t, []string{"a3a0f743", "c1e6ab10"}, c.SortedKeys(ctx))
		assert.Len(t, c.FilteredItems(ctx, "a3a0f743"), 1)
		assert.Len(t, c.FilteredItems(ctx, "c1e6ab10"), 3)
		assert.Equal(t, 4, countItems(t, c))
		assert.NoError(t, c.CheckStatistics(ctx))
	})
}

func TestBucketBy_AddDuringPassUsesNewKey(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore(nil)
	c := catalog.New(s, catalog.Config{Workers: 4, LockShards: 16}, zap.NewNop(), nil)
	require.NoError(t, c.AddItems(ctx, []*items.Item{rom("pacman", 0, "pacman.6e", "C1E6AB10")}))

	late := rom("puckman", 0, "pm1.6e", "c1e6ab10")
	started := make(chan struct{})
	done := make(chan error, 1)
	s.mu.Lock()
	s.onAppend = func(string) {
		go func() {
			close(started)
			done <- c.AddItems(ctx, []*items.Item{late})
		}()
		<-started
	}
	s.mu.Unlock()

	opts := catalog.BucketOptions{Key: items.KeyCRC, Dedupe: items.DedupeFull, NormalizeCase: true}
	require.NoError(t, c.BucketBy(ctx, opts))
	require.NoError(t, <-done)

	assert.Equal(t, []string{"c1e6ab10"}, c.SortedKeys(ctx))
	assert.False(t, c.ContainsKey(ctx, "puckman-0"))

	require.NoError(t, c.BucketBy(ctx, opts))
	list, err := c.Items(ctx, "c1e6ab10")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, removedIn(list))
	assert.NoError(t, c.CheckStatistics(ctx))
}

func TestBucketBy_SharedSHA1AcrossMachines(t *testing.T) {
	ctx := context.Background()
	size := int64(4096)
	sha1 := "2e0e33b1a3f0d42b4bb3b3d2a3b5b06e0ae0e3c3"

	load := func(t *testing.T) *catalog.Catalog {
		t.Helper()
		c, _ := newCatalog(t)
		for _, machine := range []string{"pacman", "puckman"} {
			require.NoError(t, c.AddMachine(ctx, items.Machine{Name: machine}, items.Source{}, []items.Variant{
				&items.Rom{Name: machine + ".6e", Size: &size, Hashes: items.Hashes{SHA1: sha1}},
			}))
		}
		return c
	}

	t.Run("Game merging keeps both machines", func(t *testing.T) {
		c := load(t)
		require.NoError(t, c.BucketBy(ctx, catalog.BucketOptions{Key: items.KeyMachine, Dedupe: items.DedupeGame}))

		assert.Equal(t, int64(0), c.Statistics().RemovedCount)
		assert.Len(t, c.FilteredItems(ctx, "pacman-0"), 1)
		assert.Len(t, c.FilteredItems(ctx, "puckman-0"), 1)
	})

	t.Run("Full merging by SHA1 keeps one", func(t *testing.T) {
		c := load(t)
		require.NoError(t, c.BucketBy(ctx, catalog.BucketOptions{Key: items.KeySHA1, Dedupe: items.DedupeFull}))

		assert.Equal(t, []string{sha1}, c.SortedKeys(ctx))
		list, err := c.Items(ctx, sha1)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 1, removedIn(list))
		assert.Len(t, c.FilteredItems(ctx, sha1), 1)
		assert.Equal(t, int64(1), c.Statistics().RemovedCount)
	})
}

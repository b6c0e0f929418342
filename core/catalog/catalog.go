package catalog

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"sync"

	"dat-catalog/core/items"
	"dat-catalog/core/metrics"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Catalog is the bucketed item dictionary. Items live in a Store under string
// keys; the catalog owns the key locks, the bucketing state and the running
// statistics.
type Catalog struct {
	// Header describes the catalog as a whole.
	Header items.Header

	store   Store
	logger  *zap.Logger
	metrics *metrics.CatalogMetrics
	locks   *lockTable
	workers int

	// passMu is held for writing by bucketing and clearing passes and for
	// reading by every other mutation, so no write lands mid-pass.
	passMu     sync.RWMutex
	stateMu    sync.Mutex
	bucketMode bucketMode
	mergedBy   items.DedupeType

	statsMu sync.Mutex
	stats   Statistics
	rebuild singleflight.Group
}

// bucketMode is everything that determines the key of an item.
type bucketMode struct {
	key                 items.ItemKey
	normalizeCase       bool
	ignoreSourceContext bool
}

// New creates a catalog over store. m may be nil.
func New(store Store, cfg Config, logger *zap.Logger, m *metrics.CatalogMetrics) *Catalog {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		store:   store,
		logger:  logger,
		metrics: m,
		locks:   newLockTable(cfg.LockShards),
		workers: workers,
		stats:   NewStatistics(),
	}
}

// BucketedBy returns the key mode the catalog is currently bucketed by.
func (c *Catalog) BucketedBy() items.ItemKey {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.bucketMode.key
}

// MergedBy returns the merge mode last applied to the current bucketing.
func (c *Catalog) MergedBy() items.DedupeType {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.mergedBy
}

// Options returns the options that reproduce the current bucketing.
func (c *Catalog) Options() BucketOptions {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return BucketOptions{
		Key:                 c.bucketMode.key,
		Dedupe:              c.mergedBy,
		NormalizeCase:       c.bucketMode.normalizeCase,
		IgnoreSourceContext: c.bucketMode.ignoreSourceContext,
	}
}

// EnsureKey creates an empty bucket for key if it does not exist and reports
// whether it already existed.
func (c *Catalog) EnsureKey(ctx context.Context, key string) (bool, error) {
	c.passMu.RLock()
	defer c.passMu.RUnlock()

	unlock := c.locks.lock(key)
	defer unlock()

	existed, err := c.store.EnsureKey(ctx, key)
	if err != nil {
		return false, storeErr("ensure key", key, err)
	}
	return existed, nil
}

// Add appends an item to a bucket.
func (c *Catalog) Add(ctx context.Context, key string, item *items.Item) error {
	return c.AddRange(ctx, key, []*items.Item{item})
}

// AddRange appends items to a bucket in order.
func (c *Catalog) AddRange(ctx context.Context, key string, list []*items.Item) error {
	c.passMu.RLock()
	defer c.passMu.RUnlock()
	return c.addRange(ctx, key, list)
}

func (c *Catalog) addRange(ctx context.Context, key string, list []*items.Item) error {
	for _, it := range list {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("failed to add to %q: %w", key, err)
		}
	}

	unlock := c.locks.lock(key)
	defer unlock()

	if err := c.appendLocked(ctx, key, list); err != nil {
		return err
	}

	for _, it := range list {
		c.AddItemStatistics(it)
		c.metrics.RecordItemsAdded(string(it.Kind()), 1)
	}
	return nil
}

// AddMachine adds the items parsed for one machine under the current bucketing.
// A machine without items is represented by a single Blank so it survives to
// the writers.
func (c *Catalog) AddMachine(ctx context.Context, machine items.Machine, source items.Source, variants []items.Variant) error {
	if len(variants) == 0 {
		variants = []items.Variant{&items.Blank{}}
	}

	list := make([]*items.Item, 0, len(variants))
	for _, v := range variants {
		list = append(list, items.New(v, machine, source))
	}
	return c.AddItems(ctx, list)
}

// AddItems adds items under the keys the current bucketing assigns them,
// keeping their relative order within each key. An add issued while a pass
// runs waits for it and is keyed by the bucketing the pass installs.
func (c *Catalog) AddItems(ctx context.Context, list []*items.Item) error {
	c.passMu.RLock()
	defer c.passMu.RUnlock()

	for _, it := range list {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}
	}

	grouped := make(map[string][]*items.Item)
	var order []string
	for _, it := range list {
		key := c.keyFor(it)
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], it)
	}

	for _, key := range order {
		if err := c.addRange(ctx, key, grouped[key]); err != nil {
			return err
		}
	}
	return nil
}

// keyFor returns the key of an item under the current bucketing, or its
// machine key while the catalog is unbucketed.
func (c *Catalog) keyFor(it *items.Item) string {
	c.stateMu.Lock()
	mode := c.bucketMode
	c.stateMu.Unlock()

	if mode.key == items.KeyNone {
		return it.GetKey(items.KeyMachine, false, false)
	}
	return it.GetKey(mode.key, mode.normalizeCase, mode.ignoreSourceContext)
}

func (c *Catalog) appendLocked(ctx context.Context, key string, list []*items.Item) error {
	if _, err := c.store.EnsureKey(ctx, key); err != nil {
		return storeErr("ensure key", key, err)
	}
	if len(list) == 0 {
		return nil
	}

	if a, ok := c.store.(Appender); ok {
		if err := a.Append(ctx, key, list...); err != nil {
			return storeErr("append to", key, err)
		}
		return nil
	}

	current, err := c.store.Fetch(ctx, key)
	if err != nil {
		return storeErr("fetch", key, err)
	}
	if err := c.store.Replace(ctx, key, append(current, list...)); err != nil {
		return storeErr("replace", key, err)
	}
	return nil
}

// Items returns every item of a bucket, including items flagged for removal.
func (c *Catalog) Items(ctx context.Context, key string) ([]*items.Item, error) {
	unlock := c.locks.lock(key)
	defer unlock()

	list, err := c.store.Fetch(ctx, key)
	if err != nil {
		return nil, storeErr("fetch", key, err)
	}
	return list, nil
}

// FilteredItems returns the items of a bucket a writer should emit: not
// flagged for removal and attached to a named machine. Store failures yield
// an empty result.
func (c *Catalog) FilteredItems(ctx context.Context, key string) []*items.Item {
	list, err := c.Items(ctx, key)
	if err != nil {
		c.logger.Warn("Failed to read bucket", zap.String("key", key), zap.Error(err))
		return []*items.Item{}
	}

	out := make([]*items.Item, 0, len(list))
	for _, it := range list {
		if it == nil || it.Remove || it.Machine.Name == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Remove deletes the first item of a bucket identical to item.
func (c *Catalog) Remove(ctx context.Context, key string, item *items.Item) (bool, error) {
	c.passMu.RLock()
	defer c.passMu.RUnlock()

	unlock := c.locks.lock(key)
	defer unlock()

	list, err := c.store.Fetch(ctx, key)
	if err != nil {
		return false, storeErr("fetch", key, err)
	}

	idx := slices.IndexFunc(list, func(it *items.Item) bool { return reflect.DeepEqual(it, item) })
	if idx < 0 {
		return false, nil
	}
	removed := list[idx]
	list = slices.Delete(list, idx, idx+1)
	if err := c.store.Replace(ctx, key, list); err != nil {
		return false, storeErr("replace", key, err)
	}

	c.RemoveItemStatistics(removed)
	c.metrics.RecordItemsRemoved(string(removed.Kind()), 1)
	return true, nil
}

// RemoveKey deletes a bucket and its items.
func (c *Catalog) RemoveKey(ctx context.Context, key string) error {
	c.passMu.RLock()
	defer c.passMu.RUnlock()

	unlock := c.locks.lock(key)
	defer unlock()

	list, err := c.store.Fetch(ctx, key)
	if err != nil {
		return storeErr("fetch", key, err)
	}
	if err := c.store.DeleteKey(ctx, key); err != nil {
		return storeErr("delete key", key, err)
	}
	c.uncount(list)
	return nil
}

// Reset empties a bucket but keeps its key.
func (c *Catalog) Reset(ctx context.Context, key string) error {
	c.passMu.RLock()
	defer c.passMu.RUnlock()

	unlock := c.locks.lock(key)
	defer unlock()

	list, err := c.store.Fetch(ctx, key)
	if err != nil {
		return storeErr("fetch", key, err)
	}
	if err := c.store.Replace(ctx, key, nil); err != nil {
		return storeErr("replace", key, err)
	}
	c.uncount(list)
	return nil
}

func (c *Catalog) uncount(list []*items.Item) {
	for _, it := range list {
		c.RemoveItemStatistics(it)
		c.metrics.RecordItemsRemoved(string(it.Kind()), 1)
	}
}

// Keys returns every bucket key. Store failures yield an empty result.
func (c *Catalog) Keys(ctx context.Context) []string {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		c.logger.Warn("Failed to list keys", zap.Error(err))
		return []string{}
	}
	return keys
}

// SortedKeys returns every bucket key in natural order.
func (c *Catalog) SortedKeys(ctx context.Context) []string {
	keys := c.Keys(ctx)
	slices.SortFunc(keys, compareNatural)
	return keys
}

func compareNatural(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	if a < b {
		return -1
	}
	return 1
}

// ContainsKey reports whether a bucket exists.
func (c *Catalog) ContainsKey(ctx context.Context, key string) bool {
	return slices.Contains(c.Keys(ctx), key)
}

// Contains reports whether a bucket holds an item equal to item.
func (c *Catalog) Contains(ctx context.Context, key string, item *items.Item) bool {
	list, err := c.Items(ctx, key)
	if err != nil {
		c.logger.Warn("Failed to read bucket", zap.String("key", key), zap.Error(err))
		return false
	}
	return slices.ContainsFunc(list, func(it *items.Item) bool { return items.Equals(it, item) })
}

// AddItemStatistics counts an item in the running statistics.
func (c *Catalog) AddItemStatistics(it *items.Item) {
	c.statsMu.Lock()
	c.stats.AddItem(it)
	c.statsMu.Unlock()
}

// RemoveItemStatistics uncounts an item from the running statistics.
func (c *Catalog) RemoveItemStatistics(it *items.Item) {
	c.statsMu.Lock()
	c.stats.RemoveItem(it)
	c.statsMu.Unlock()
}

// applyDelta replaces the contribution of before with after.
func (c *Catalog) applyDelta(before, after Statistics) {
	c.statsMu.Lock()
	c.stats.Sub(before)
	c.stats.Add(after)
	c.statsMu.Unlock()
}

// Statistics returns a snapshot of the running statistics.
func (c *Catalog) Statistics() Statistics {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats.Clone()
}

package catalog

import (
	"context"
	"slices"
	"sync"

	"dat-catalog/core/items"

	"go.uber.org/zap"
)

// BestHashTier returns the strongest hash carried by every rom, disk and
// media that is not a nodump. It falls back to CRC when no tier is complete
// or nothing is eligible. The answer is computed from the live statistics on
// every call.
func (c *Catalog) BestHashTier() items.ItemKey {
	s := c.Statistics()

	eligible := s.Count(items.KindRom) + s.Count(items.KindDisk) + s.Count(items.KindMedia) -
		s.StatusCounts[items.StatusNodump]
	if eligible <= 0 {
		return items.KeyCRC
	}

	for _, k := range items.HashTiers {
		if s.HashCounts[k] == eligible {
			return k
		}
	}
	return items.KeyCRC
}

// ClearEmpty deletes every bucket holding no items other than blanks.
func (c *Catalog) ClearEmpty(ctx context.Context) error {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	keys, err := c.storeKeys(ctx)
	if err != nil {
		return err
	}

	return c.forEachKey(ctx, "clear_empty", keys, func(ctx context.Context, key string) error {
		unlock := c.locks.lock(key)
		defer unlock()

		list, err := c.store.Fetch(ctx, key)
		if err != nil {
			return storeErr("fetch", key, err)
		}
		if slices.ContainsFunc(list, func(it *items.Item) bool {
			return it != nil && it.Kind() != items.KindBlank
		}) {
			return nil
		}

		if err := c.store.DeleteKey(ctx, key); err != nil {
			return storeErr("delete key", key, err)
		}
		c.uncount(list)
		return nil
	})
}

// ClearMarked physically removes every item flagged for removal. Keys are kept.
func (c *Catalog) ClearMarked(ctx context.Context) error {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	keys, err := c.storeKeys(ctx)
	if err != nil {
		return err
	}

	return c.forEachKey(ctx, "clear_marked", keys, func(ctx context.Context, key string) error {
		unlock := c.locks.lock(key)
		defer unlock()

		list, err := c.store.Fetch(ctx, key)
		if err != nil {
			return storeErr("fetch", key, err)
		}

		kept := make([]*items.Item, 0, len(list))
		var marked []*items.Item
		for _, it := range list {
			if it != nil && it.Remove {
				marked = append(marked, it)
				continue
			}
			kept = append(kept, it)
		}
		if len(marked) == 0 {
			return nil
		}

		if err := c.store.Replace(ctx, key, kept); err != nil {
			return storeErr("replace", key, err)
		}
		c.uncount(marked)
		return nil
	})
}

// Duplicates flags every live item equal to item in the bucket item belongs
// to, and returns copies of them. Unless sorted is set, the catalog is first
// bucketed by its best hash tier.
func (c *Catalog) Duplicates(ctx context.Context, item *items.Item, sorted bool) ([]*items.Item, error) {
	if err := c.prepareDuplicates(ctx, item, sorted); err != nil {
		return nil, err
	}

	c.passMu.RLock()
	defer c.passMu.RUnlock()

	key := c.keyFor(item)
	unlock := c.locks.lock(key)
	defer unlock()

	list, err := c.store.Fetch(ctx, key)
	if err != nil {
		return nil, storeErr("fetch", key, err)
	}

	before := StatisticsOf(list)
	var dupes []*items.Item
	for _, it := range list {
		if it == nil || it.Remove || !items.Equals(item, it) {
			continue
		}
		it.Remove = true
		dupes = append(dupes, it.Clone())
	}
	if len(dupes) == 0 {
		return []*items.Item{}, nil
	}

	if err := c.store.Replace(ctx, key, list); err != nil {
		return nil, storeErr("replace", key, err)
	}
	c.applyDelta(before, StatisticsOf(list))
	c.logger.Debug("Flagged duplicates", zap.String("key", key), zap.Int("count", len(dupes)))
	return dupes, nil
}

// HasDuplicates reports whether a live item equal to item exists.
func (c *Catalog) HasDuplicates(ctx context.Context, item *items.Item, sorted bool) (bool, error) {
	if err := c.prepareDuplicates(ctx, item, sorted); err != nil {
		return false, err
	}

	c.passMu.RLock()
	defer c.passMu.RUnlock()

	list, err := c.Items(ctx, c.keyFor(item))
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(list, func(it *items.Item) bool {
		return it != nil && !it.Remove && items.Equals(item, it)
	}), nil
}

func (c *Catalog) prepareDuplicates(ctx context.Context, item *items.Item, sorted bool) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if sorted {
		return nil
	}
	return c.BucketBy(ctx, BucketOptions{Key: c.BestHashTier(), NormalizeCase: true})
}

// RecalculateStats rebuilds the statistics from every stored item and
// installs the result. A disagreement with the running statistics is logged
// as a data-integrity warning. Concurrent calls share one rebuild.
func (c *Catalog) RecalculateStats(ctx context.Context) (Statistics, error) {
	r, err := c.recalculate(ctx)
	if err != nil {
		return Statistics{}, err
	}
	return r.recomputed.Clone(), nil
}

// CheckStatistics rebuilds the statistics and returns an *IntegrityError if
// the running statistics had diverged.
func (c *Catalog) CheckStatistics(ctx context.Context) error {
	r, err := c.recalculate(ctx)
	if err != nil {
		return err
	}
	if r.diverged {
		return &IntegrityError{Running: r.running.Clone(), Recomputed: r.recomputed.Clone()}
	}
	return nil
}

type recount struct {
	running    Statistics
	recomputed Statistics
	diverged   bool
}

func (c *Catalog) recalculate(ctx context.Context) (*recount, error) {
	v, err, _ := c.rebuild.Do("stats", func() (any, error) {
		fresh, err := c.count(ctx)
		if err != nil {
			return nil, err
		}

		c.statsMu.Lock()
		running := c.stats
		c.stats = fresh.Clone()
		c.statsMu.Unlock()

		r := &recount{running: running, recomputed: fresh, diverged: !running.Equal(fresh)}
		if r.diverged {
			c.logger.Warn("Data integrity warning: running statistics diverged from recount",
				zap.Int64("running_total", running.TotalCount),
				zap.Int64("recount_total", fresh.TotalCount),
				zap.Int64("running_removed", running.RemovedCount),
				zap.Int64("recount_removed", fresh.RemovedCount),
			)
			c.metrics.RecordStatsDivergence()
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*recount), nil
}

// Reload installs statistics counted from the store without comparing them
// to the running ones. It is meant for a catalog opened over a populated store.
func (c *Catalog) Reload(ctx context.Context) (Statistics, error) {
	fresh, err := c.count(ctx)
	if err != nil {
		return Statistics{}, err
	}
	c.statsMu.Lock()
	c.stats = fresh.Clone()
	c.statsMu.Unlock()
	return fresh, nil
}

// count builds statistics from every stored item.
func (c *Catalog) count(ctx context.Context) (Statistics, error) {
	keys, err := c.storeKeys(ctx)
	if err != nil {
		return Statistics{}, err
	}

	var (
		fresh = NewStatistics()
		mu    sync.Mutex
	)
	err = c.forEachKey(ctx, "recalculate", keys, func(ctx context.Context, key string) error {
		unlock := c.locks.lock(key)
		list, err := c.store.Fetch(ctx, key)
		unlock()
		if err != nil {
			return storeErr("fetch", key, err)
		}
		partial := StatisticsOf(list)
		mu.Lock()
		fresh.Add(partial)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return Statistics{}, err
	}
	return fresh, nil
}

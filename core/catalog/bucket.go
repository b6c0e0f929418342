package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"dat-catalog/core/items"

	"go.uber.org/zap"
)

// BucketOptions selects how BucketBy keys and merges the catalog.
type BucketOptions struct {
	// Key is the bucketing mode. KeyNone leaves the catalog untouched.
	Key items.ItemKey `json:"key"`
	// Dedupe is the merge mode applied inside each bucket.
	Dedupe items.DedupeType `json:"dedupe"`
	// NormalizeCase lowercases hash keys.
	NormalizeCase bool `json:"lower"`
	// IgnoreSourceContext drops the source index from machine keys.
	IgnoreSourceContext bool `json:"norename"`
}

// BucketBy regroups every item under the key selected by opts, then sorts
// each bucket and merges duplicates. Calling it again with the same options
// changes nothing. Game merging only applies when bucketing by machine.
//
// Passes are serialized, and other mutations wait for a running pass so
// every item is keyed by the bucketing in force when it lands.
func (c *Catalog) BucketBy(ctx context.Context, opts BucketOptions) error {
	if opts.Key == items.KeyNone {
		return nil
	}

	c.passMu.Lock()
	defer c.passMu.Unlock()

	start := time.Now()
	err := c.bucketBy(ctx, opts)

	status := "success"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "cancelled"
	case err != nil:
		status = "error"
	}
	c.metrics.RecordBucketPass(string(opts.Key), status, time.Since(start).Seconds())
	return err
}

func (c *Catalog) bucketBy(ctx context.Context, opts BucketOptions) error {
	mode := bucketMode{
		key:                 opts.Key,
		normalizeCase:       opts.NormalizeCase,
		ignoreSourceContext: opts.IgnoreSourceContext,
	}

	c.stateMu.Lock()
	current := c.bucketMode
	c.stateMu.Unlock()

	if current != mode {
		c.logger.Debug("Relocating items",
			zap.String("from", string(current.key)),
			zap.String("to", string(mode.key)),
		)
		if err := c.relocate(ctx, mode); err != nil {
			return err
		}
		c.stateMu.Lock()
		c.bucketMode = mode
		c.mergedBy = items.DedupeNone
		c.stateMu.Unlock()
	}

	dedupe := opts.Dedupe
	if dedupe == items.DedupeGame && mode.key != items.KeyMachine {
		dedupe = items.DedupeNone
	}

	flagged, err := c.sortAndMerge(ctx, dedupe)
	if err != nil {
		return err
	}
	c.metrics.RecordDuplicatesFlagged(string(dedupe), flagged)

	if dedupe != items.DedupeNone {
		c.stateMu.Lock()
		c.mergedBy = dedupe
		c.stateMu.Unlock()
		c.logger.Debug("Merged duplicates", zap.String("dedupe", string(dedupe)), zap.Int("flagged", flagged))
	}
	return nil
}

// keyPlan describes what leaves one bucket during relocation.
type keyPlan struct {
	key      string
	size     int
	outgoing []int
	moves    []move
}

type move struct {
	source string
	dest   string
	item   *items.Item
}

// relocate moves every item whose key changes under mode. Planning reads each
// bucket once and can be cancelled without side effects. The commit is not
// interrupted once started and runs in two stages, each touching one key
// lock at a time: outgoing items are first dropped from their buckets, then
// appended to their destinations. Only items whose drop succeeded are
// appended, so a failed write never leaves an item in two buckets. Items a
// destination refuses go back to their source bucket. Buckets left empty are
// deleted.
func (c *Catalog) relocate(ctx context.Context, mode bucketMode) error {
	keys, err := c.storeKeys(ctx)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	plans := make([]keyPlan, len(keys))

	err = c.forEachKey(ctx, "relocate", keys, func(ctx context.Context, key string) error {
		unlock := c.locks.lock(key)
		list, err := c.store.Fetch(ctx, key)
		unlock()
		if err != nil {
			return storeErr("fetch", key, err)
		}
		if err := validateAll(list); err != nil {
			return err
		}

		p := keyPlan{key: key, size: len(list)}
		for pos, it := range list {
			dest := it.GetKey(mode.key, mode.normalizeCase, mode.ignoreSourceContext)
			if dest != key {
				p.outgoing = append(p.outgoing, pos)
				p.moves = append(p.moves, move{source: key, dest: dest, item: it})
			}
		}
		plans[index[key]] = p
		return nil
	})
	if err != nil {
		return err
	}

	outgoing := make(map[string][]int)
	var sources, dests []string
	isDest := make(map[string]bool)
	for _, p := range plans {
		if p.key == "" {
			continue
		}
		if len(p.outgoing) > 0 || p.size == 0 {
			outgoing[p.key] = p.outgoing
			sources = append(sources, p.key)
		}
		for _, mv := range p.moves {
			if !isDest[mv.dest] {
				isDest[mv.dest] = true
				dests = append(dests, mv.dest)
			}
		}
	}

	commitCtx := context.WithoutCancel(ctx)

	var (
		mu      sync.Mutex
		dropped = make(map[string]bool, len(sources))
	)
	dropErr := c.forEachKey(commitCtx, "commit_drop", sources, func(ctx context.Context, key string) error {
		unlock := c.locks.lock(key)
		defer unlock()

		list, err := c.store.Fetch(ctx, key)
		if err != nil {
			return storeErr("fetch", key, err)
		}
		list = dropPositions(list, outgoing[key])

		switch {
		case len(list) == 0 && !isDest[key]:
			if err := c.store.DeleteKey(ctx, key); err != nil {
				return storeErr("delete key", key, err)
			}
		case len(outgoing[key]) > 0:
			if err := c.store.Replace(ctx, key, list); err != nil {
				return storeErr("replace", key, err)
			}
		}

		mu.Lock()
		dropped[key] = true
		mu.Unlock()
		return nil
	})

	incoming := make(map[string][]move, len(dests))
	for _, p := range plans {
		if !dropped[p.key] {
			continue
		}
		for _, mv := range p.moves {
			incoming[mv.dest] = append(incoming[mv.dest], mv)
		}
	}

	appendErr := c.forEachKey(commitCtx, "commit_append", dests, func(ctx context.Context, key string) error {
		moves := incoming[key]
		if len(moves) == 0 {
			if dropped[key] {
				return c.dropIfEmpty(ctx, key)
			}
			return nil
		}

		list := make([]*items.Item, len(moves))
		for i, mv := range moves {
			list[i] = mv.item
		}

		unlock := c.locks.lock(key)
		err := c.appendLocked(ctx, key, list)
		unlock()
		if err != nil {
			c.restore(ctx, moves)
			return err
		}
		return nil
	})

	return errors.Join(dropErr, appendErr)
}

// dropIfEmpty deletes key if it holds no items. A bucket emptied by the drop
// stage is kept until its incoming items are known.
func (c *Catalog) dropIfEmpty(ctx context.Context, key string) error {
	unlock := c.locks.lock(key)
	defer unlock()

	list, err := c.store.Fetch(ctx, key)
	if err != nil {
		return storeErr("fetch", key, err)
	}
	if len(list) > 0 {
		return nil
	}
	if err := c.store.DeleteKey(ctx, key); err != nil {
		return storeErr("delete key", key, err)
	}
	return nil
}

// restore returns items refused by their destination to the bucket they were
// dropped from. Items that cannot be returned either are lost and uncounted.
func (c *Catalog) restore(ctx context.Context, moves []move) {
	bySource := make(map[string][]*items.Item)
	var order []string
	for _, mv := range moves {
		if _, ok := bySource[mv.source]; !ok {
			order = append(order, mv.source)
		}
		bySource[mv.source] = append(bySource[mv.source], mv.item)
	}

	for _, key := range order {
		unlock := c.locks.lock(key)
		err := c.appendLocked(ctx, key, bySource[key])
		unlock()
		if err != nil {
			c.logger.Error("Failed to restore relocated items",
				zap.String("key", key),
				zap.Int("count", len(bySource[key])),
				zap.Error(err),
			)
			c.uncount(bySource[key])
		}
	}
}

// dropPositions removes the items at the given ascending positions.
func dropPositions(list []*items.Item, positions []int) []*items.Item {
	if len(positions) == 0 {
		return list
	}
	out := make([]*items.Item, 0, len(list))
	next := 0
	for i, it := range list {
		if next < len(positions) && positions[next] == i {
			next++
			continue
		}
		out = append(out, it)
	}
	return out
}

// sortAndMerge sorts every bucket and, unless dedupe is none, flags duplicates.
func (c *Catalog) sortAndMerge(ctx context.Context, dedupe items.DedupeType) (int, error) {
	keys, err := c.storeKeys(ctx)
	if err != nil {
		return 0, err
	}

	var flagged atomic.Int64
	err = c.forEachKey(ctx, "merge", keys, func(ctx context.Context, key string) error {
		unlock := c.locks.lock(key)
		defer unlock()

		list, err := c.store.Fetch(ctx, key)
		if err != nil {
			return storeErr("fetch", key, err)
		}
		if err := validateAll(list); err != nil {
			return err
		}

		before := StatisticsOf(list)
		items.Sort(list)

		n := 0
		if dedupe != items.DedupeNone {
			if n = items.Merge(list); n > 0 {
				items.Sort(list)
			}
		}

		if err := c.store.Replace(ctx, key, list); err != nil {
			return storeErr("replace", key, err)
		}
		if n > 0 {
			c.applyDelta(before, StatisticsOf(list))
			flagged.Add(int64(n))
		}
		return nil
	})
	return int(flagged.Load()), err
}

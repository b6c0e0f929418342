// Package catalog implements the bucketed item dictionary behind DAT
// processing.
//
// A Catalog groups items into buckets addressed by string keys. Items are
// added under machine keys while loading; BucketBy then regroups them by a
// hash tier or by machine, sorts every bucket and flags duplicates according
// to a DedupeType. Flagged items stay in place with Remove set until
// ClearMarked drops them.
//
// # Storage
//
// Buckets live in a Store. The catalog serializes access to each key through
// a sharded lock table and never holds two key locks at once. Stores that
// also implement Appender receive appends without a read-modify-write cycle.
// Store failures are wrapped with ErrStoreUnavailable; the listing and
// filtering helpers used by writers degrade to empty results instead.
//
// # Passes
//
// Catalog-wide passes run on a bounded worker pool. A bucket holding a
// malformed item is logged and skipped. Relocation is planned first and can
// be cancelled up to that point; once items start moving, the pass finishes.
//
// # Statistics
//
// Running statistics are maintained on every mutation and can be rebuilt
// from the store with RecalculateStats. CheckStatistics reports a divergence
// as an *IntegrityError.
//
// # Usage
//
//	c := catalog.New(store.NewMemory(), catalog.Config{}, logger, nil)
//	_ = c.AddMachine(ctx, machine, source, variants)
//	err := c.BucketBy(ctx, catalog.BucketOptions{
//	    Key:    c.BestHashTier(),
//	    Dedupe: items.DedupeFull,
//	})
package catalog

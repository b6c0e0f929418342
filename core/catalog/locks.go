package catalog

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultLockShards = 256

// lockTable serializes work per key. Keys map onto a fixed set of mutexes by
// a stable hash, so unrelated keys may share a shard. Callers never hold two
// shards at once.
type lockTable struct {
	shards []sync.Mutex
}

func newLockTable(n int) *lockTable {
	if n <= 0 {
		n = defaultLockShards
	}
	return &lockTable{shards: make([]sync.Mutex, n)}
}

func (t *lockTable) shard(key string) *sync.Mutex {
	return &t.shards[xxhash.Sum64String(key)%uint64(len(t.shards))]
}

// lock acquires the shard for key and returns its unlock function.
func (t *lockTable) lock(key string) func() {
	m := t.shard(key)
	m.Lock()
	return m.Unlock
}

package catalog

import (
	"maps"
	"reflect"
	"slices"

	"dat-catalog/core/items"
)

var countedHashes = append(slices.Clone(items.HashTiers), items.KeySpamSum)

// Statistics aggregates counts over every item held by the catalog,
// including items flagged for removal.
type Statistics struct {
	// TotalCount is the number of items.
	TotalCount int64 `json:"total_count"`
	// Counts holds the number of items per kind.
	Counts map[items.Kind]int64 `json:"counts"`
	// TotalSize sums the known sizes of roms that are not nodumps.
	TotalSize int64 `json:"total_size"`
	// HashCounts holds, per hash key, the number of roms, disks and media
	// that are not nodumps and carry that hash.
	HashCounts map[items.ItemKey]int64 `json:"hash_counts"`
	// StatusCounts holds the number of roms, disks and media per status.
	StatusCounts map[items.ItemStatus]int64 `json:"status_counts"`
	// RemovedCount is the number of items flagged for removal.
	RemovedCount int64 `json:"removed_count"`

	machines map[string]int64
}

// NewStatistics returns empty statistics.
func NewStatistics() Statistics {
	return Statistics{
		Counts:       make(map[items.Kind]int64),
		HashCounts:   make(map[items.ItemKey]int64),
		StatusCounts: make(map[items.ItemStatus]int64),
		machines:     make(map[string]int64),
	}
}

// StatisticsOf computes statistics for a list of items.
func StatisticsOf(list []*items.Item) Statistics {
	s := NewStatistics()
	for _, it := range list {
		s.AddItem(it)
	}
	return s
}

// Count returns the number of items of a kind.
func (s Statistics) Count(k items.Kind) int64 {
	return s.Counts[k]
}

// GameCount returns the number of distinct machines.
func (s Statistics) GameCount() int {
	return len(s.machines)
}

// AddItem counts an item.
func (s *Statistics) AddItem(it *items.Item) {
	s.apply(it, 1)
}

// RemoveItem uncounts an item.
func (s *Statistics) RemoveItem(it *items.Item) {
	s.apply(it, -1)
}

// Add merges o into s.
func (s *Statistics) Add(o Statistics) {
	s.merge(o, 1)
}

// Sub removes o from s.
func (s *Statistics) Sub(o Statistics) {
	s.merge(o, -1)
}

// Equal reports whether two statistics describe the same population.
func (s Statistics) Equal(o Statistics) bool {
	return s.TotalCount == o.TotalCount &&
		s.TotalSize == o.TotalSize &&
		s.RemovedCount == o.RemovedCount &&
		reflect.DeepEqual(nonNil(s.Counts), nonNil(o.Counts)) &&
		reflect.DeepEqual(nonNil(s.HashCounts), nonNil(o.HashCounts)) &&
		reflect.DeepEqual(nonNil(s.StatusCounts), nonNil(o.StatusCounts)) &&
		reflect.DeepEqual(nonNil(s.machines), nonNil(o.machines))
}

// Clone returns a deep copy.
func (s Statistics) Clone() Statistics {
	c := s
	c.Counts = maps.Clone(nonNil(s.Counts))
	c.HashCounts = maps.Clone(nonNil(s.HashCounts))
	c.StatusCounts = maps.Clone(nonNil(s.StatusCounts))
	c.machines = maps.Clone(nonNil(s.machines))
	return c
}

func (s *Statistics) apply(it *items.Item, sign int64) {
	if it == nil || it.Variant == nil {
		return
	}
	s.ensure()

	s.TotalCount += sign
	bump(s.Counts, it.Kind(), sign)
	if it.Machine.Name != "" {
		bump(s.machines, it.Machine.Name, sign)
	}
	if it.Remove {
		s.RemovedCount += sign
	}

	h, ok := it.Hashes()
	if !ok {
		return
	}
	if it.Status != items.StatusNone {
		bump(s.StatusCounts, it.Status, sign)
	}
	if it.Status == items.StatusNodump {
		return
	}
	if size := it.Size(); size != nil {
		s.TotalSize += sign * *size
	}
	for _, k := range countedHashes {
		if h.Get(k) != "" {
			bump(s.HashCounts, k, sign)
		}
	}
}

func (s *Statistics) merge(o Statistics, sign int64) {
	s.ensure()
	s.TotalCount += sign * o.TotalCount
	s.TotalSize += sign * o.TotalSize
	s.RemovedCount += sign * o.RemovedCount
	for k, v := range o.Counts {
		bump(s.Counts, k, sign*v)
	}
	for k, v := range o.HashCounts {
		bump(s.HashCounts, k, sign*v)
	}
	for k, v := range o.StatusCounts {
		bump(s.StatusCounts, k, sign*v)
	}
	for k, v := range o.machines {
		bump(s.machines, k, sign*v)
	}
}

func (s *Statistics) ensure() {
	if s.Counts == nil {
		s.Counts = make(map[items.Kind]int64)
	}
	if s.HashCounts == nil {
		s.HashCounts = make(map[items.ItemKey]int64)
	}
	if s.StatusCounts == nil {
		s.StatusCounts = make(map[items.ItemStatus]int64)
	}
	if s.machines == nil {
		s.machines = make(map[string]int64)
	}
}

// bump adjusts a counter and drops it once it reaches zero.
func bump[K comparable](m map[K]int64, k K, d int64) {
	if v := m[k] + d; v != 0 {
		m[k] = v
	} else {
		delete(m, k)
	}
}

func nonNil[K comparable](m map[K]int64) map[K]int64 {
	if m == nil {
		return map[K]int64{}
	}
	return m
}

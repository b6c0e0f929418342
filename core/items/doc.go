// Package items defines the canonical catalog item model.
//
// Every entry parsed from a DAT is normalized into an Item: a closed set of
// variants (Rom, Disk, Media, Sample, Configuration, ...) wrapped in an
// envelope carrying the attributes shared by all of them (status, removal
// flag, duplicate type, owning Machine and Source).
//
// # Equality
//
// Equals is the duplicate relation used by merging:
//   - Items of different kinds are never equal.
//   - Nested lists (conditions, locations, settings) compare as sets.
//   - Hash-bearing items match when every hash present on both agrees and at
//     least one is shared. Hash-less items fall back to name and size, except
//     nodumps, which never match another item.
//
// # Keys
//
// GetKey computes the bucket key for a bucketing mode. Machine keys carry the
// source index unless source context is ignored, so identically named machines
// from different inputs stay apart. Hash keys fall back to a name composite
// when the item lacks the hash.
//
// # Merging
//
// Sort and Merge implement deduplication inside a bucket: the first item of a
// duplicate run survives, later ones are flagged with Remove and kept for
// auditing.
//
// # Usage
//
//	rom := items.New(&items.Rom{Name: "a.bin", Hashes: items.Hashes{SHA1: "..."}},
//	    items.Machine{Name: "pacman"}, items.Source{Index: 0})
//	key := rom.GetKey(items.KeySHA1, true, false)
package items

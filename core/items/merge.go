package items

import (
	"sort"
	"strconv"
)

// Sort orders a bucket by kind, name and hashes. Ties keep their relative
// order; machine name and source index break the rest so the result is total.
func Sort(list []*Item) {
	sort.SliceStable(list, func(a, b int) bool {
		return less(list[a], list[b])
	})
}

func less(a, b *Item) bool {
	if ka, kb := kindOrder[a.Kind()], kindOrder[b.Kind()]; ka != kb {
		return ka < kb
	}
	if na, nb := a.GetName(), b.GetName(); na != nb {
		return na < nb
	}
	if ha, hb := sortHash(a), sortHash(b); ha != hb {
		return ha < hb
	}
	if a.Machine.Name != b.Machine.Name {
		return a.Machine.Name < b.Machine.Name
	}
	return a.Source.Index < b.Source.Index
}

func sortHash(i *Item) string {
	h, ok := i.Hashes()
	if !ok {
		return ""
	}
	key := h.sortKey()
	if s := i.Size(); s != nil {
		key += "|" + strconv.FormatInt(*s, 10)
	}
	return key
}

// Merge walks a sorted bucket and flags every later duplicate of an earlier
// survivor with Remove. The survivor takes any field it lacks from its
// duplicates in order, so the earliest populated value wins. Items already
// flagged are skipped. It returns the number of newly flagged items.
func Merge(list []*Item) int {
	var survivors []*Item
	flagged := 0

	for _, it := range list {
		if it == nil || it.Variant == nil || it.Remove {
			continue
		}

		var survivor *Item
		for _, s := range survivors {
			if Equals(s, it) {
				survivor = s
				break
			}
		}
		if survivor == nil {
			survivors = append(survivors, it)
			continue
		}

		dupe := DupeExternal
		if survivor.Source.Index == it.Source.Index {
			dupe = DupeInternal
		}
		survivor.fillFrom(it)
		if survivor.DupeType == DupeNone {
			survivor.DupeType = dupe
		}
		it.DupeType = dupe
		it.Remove = true
		flagged++
	}

	return flagged
}

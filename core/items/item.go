package items

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MachineKeySeparator joins the machine name and source index in machine keys.
const MachineKeySeparator = "-"

// ErrMalformedItem is returned by Validate for structurally broken items.
var ErrMalformedItem = errors.New("malformed item")

// Variant is the kind-specific payload of an Item. The set of variants is
// closed: only types declared in this package implement it.
type Variant interface {
	Kind() Kind
	GetName() string
	equal(other Variant) bool
	clone() Variant
}

// hashBearer is implemented by roms, disks and media.
type hashBearer interface {
	hashes() Hashes
	size() *int64
}

// filler is implemented by variants whose empty fields can be completed from a duplicate.
type filler interface {
	fill(other Variant)
}

// Item is a single catalog entry: a variant plus the attributes shared by all variants.
type Item struct {
	Status   ItemStatus
	Remove   bool
	DupeType DupeType
	Machine  Machine
	Source   Source
	Variant  Variant
}

// New creates an item owning a copy of machine and source.
func New(v Variant, machine Machine, source Source) *Item {
	return &Item{Variant: v, Machine: machine, Source: source}
}

// Kind returns the variant kind, or "" for an item without a variant.
func (i *Item) Kind() Kind {
	if i == nil || i.Variant == nil {
		return ""
	}
	return i.Variant.Kind()
}

// GetName returns the item name, or "" for unnamed variants.
func (i *Item) GetName() string {
	if i == nil || i.Variant == nil {
		return ""
	}
	return i.Variant.GetName()
}

// Hashes returns the hashes of a hash-bearing item.
func (i *Item) Hashes() (Hashes, bool) {
	if i == nil {
		return Hashes{}, false
	}
	hb, ok := i.Variant.(hashBearer)
	if !ok {
		return Hashes{}, false
	}
	return hb.hashes(), true
}

// Size returns the size of the item when known.
func (i *Item) Size() *int64 {
	if i == nil {
		return nil
	}
	if hb, ok := i.Variant.(hashBearer); ok {
		return hb.size()
	}
	return nil
}

// Validate checks that the item can be stored and compared.
func (i *Item) Validate() error {
	if i == nil {
		return fmt.Errorf("%w: nil item", ErrMalformedItem)
	}
	if i.Variant == nil {
		return fmt.Errorf("%w: missing variant", ErrMalformedItem)
	}
	if _, ok := registry[i.Variant.Kind()]; !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedItem, i.Variant.Kind())
	}
	return nil
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	if i.Variant != nil {
		c.Variant = i.Variant.clone()
	}
	return &c
}

// Equals implements the duplicate relation. Items of different kinds are never
// equal, and hash-less nodumps never match anything but themselves.
func Equals(a, b *Item) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Variant == nil || b.Variant == nil {
		return false
	}
	if a.Variant.Kind() != b.Variant.Kind() {
		return false
	}
	if ha, ok := a.Variant.(hashBearer); ok {
		hb := b.Variant.(hashBearer)
		if ha.hashes().Empty() && hb.hashes().Empty() &&
			(a.Status == StatusNodump || b.Status == StatusNodump) {
			return false
		}
	}
	return a.Variant.equal(b.Variant)
}

// GetKey returns the bucket key of the item under a bucketing mode.
func (i *Item) GetKey(mode ItemKey, normalizeCase, ignoreSourceContext bool) string {
	switch mode {
	case KeyNone:
		return ""
	case KeyMachine:
		if ignoreSourceContext {
			return i.Machine.Name
		}
		return i.Machine.Name + MachineKeySeparator + strconv.Itoa(i.Source.Index)
	}

	if h, ok := i.Hashes(); ok {
		if v := h.Get(mode); v != "" {
			if normalizeCase {
				return strings.ToLower(v)
			}
			return v
		}
	}
	return i.nameKey()
}

// nameKey is the fallback key for items without the requested hash.
func (i *Item) nameKey() string {
	key := i.Machine.Name + "/" + i.GetName()
	if s := i.Size(); s != nil {
		key += "/" + strconv.FormatInt(*s, 10)
	}
	return key
}

// fillFrom completes empty fields of i from a duplicate. Populated fields are never overwritten.
func (i *Item) fillFrom(o *Item) {
	if i.Status == StatusNone {
		i.Status = o.Status
	}
	if f, ok := i.Variant.(filler); ok {
		f.fill(o.Variant)
	}
}

func fillString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func fillPtr[T any](dst **T, src *T) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// sameSet compares two lists ignoring order: every element of each must be contained in the other.
func sameSet[T any](a, b []T, eq func(x, y T) bool) bool {
	return containsAll(a, b, eq) && containsAll(b, a, eq)
}

func containsAll[T any](haystack, needles []T, eq func(x, y T) bool) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if eq(h, n) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

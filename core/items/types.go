package items

import (
	"fmt"
	"strings"
)

// Kind identifies the variant held by an Item.
type Kind string

const (
	KindRom           Kind = "rom"
	KindDisk          Kind = "disk"
	KindMedia         Kind = "media"
	KindSample        Kind = "sample"
	KindBiosSet       Kind = "biosset"
	KindRelease       Kind = "release"
	KindArchive       Kind = "archive"
	KindBlank         Kind = "blank"
	KindConfiguration Kind = "configuration"
	KindSetting       Kind = "setting"
	KindDevice        Kind = "device"
	KindControl       Kind = "control"
	KindInfo          Kind = "info"
	KindLocation      Kind = "location"
	KindChip          Kind = "chip"
	KindCondition     Kind = "condition"
	KindAdjuster      Kind = "adjuster"
	KindDipSwitch     Kind = "dipswitch"
	KindDriver        Kind = "driver"
	KindRamOption     Kind = "ramoption"
	KindSoftwareList  Kind = "softwarelist"
	KindSound         Kind = "sound"
)

// Kinds lists every variant kind in sort order.
var Kinds = []Kind{
	KindRom, KindDisk, KindMedia, KindSample, KindBiosSet, KindRelease,
	KindArchive, KindBlank, KindConfiguration, KindSetting, KindDevice,
	KindControl, KindInfo, KindLocation, KindChip, KindCondition,
	KindAdjuster, KindDipSwitch, KindDriver, KindRamOption,
	KindSoftwareList, KindSound,
}

var kindOrder = func() map[Kind]int {
	m := make(map[Kind]int, len(Kinds))
	for i, k := range Kinds {
		m[k] = i
	}
	return m
}()

// ItemStatus is the dump status of a hash-bearing item.
type ItemStatus string

const (
	StatusNone     ItemStatus = ""
	StatusGood     ItemStatus = "good"
	StatusBadDump  ItemStatus = "baddump"
	StatusNodump   ItemStatus = "nodump"
	StatusVerified ItemStatus = "verified"
)

// DupeType records how a merged pair of items relate to each other.
type DupeType string

const (
	DupeNone     DupeType = ""
	DupeInternal DupeType = "internal"
	DupeExternal DupeType = "external"
)

// ItemKey is a bucketing mode.
type ItemKey string

const (
	KeyNone    ItemKey = ""
	KeyMachine ItemKey = "machine"
	KeyCRC     ItemKey = "crc"
	KeyMD5     ItemKey = "md5"
	KeySHA1    ItemKey = "sha1"
	KeySHA256  ItemKey = "sha256"
	KeySHA384  ItemKey = "sha384"
	KeySHA512  ItemKey = "sha512"
	KeySpamSum ItemKey = "spamsum"
)

// HashTiers lists the hash keys from strongest to weakest.
var HashTiers = []ItemKey{KeySHA512, KeySHA384, KeySHA256, KeySHA1, KeyMD5, KeyCRC}

// ParseItemKey converts a user supplied name into an ItemKey.
func ParseItemKey(s string) (ItemKey, error) {
	switch k := ItemKey(strings.ToLower(strings.TrimSpace(s))); k {
	case KeyNone, KeyMachine, KeyCRC, KeyMD5, KeySHA1, KeySHA256, KeySHA384, KeySHA512, KeySpamSum:
		return k, nil
	case "game":
		return KeyMachine, nil
	case "none", "null":
		return KeyNone, nil
	default:
		return KeyNone, fmt.Errorf("unknown bucket key %q", s)
	}
}

// IsHash reports whether the key buckets by a hash value.
func (k ItemKey) IsHash() bool {
	switch k {
	case KeyCRC, KeyMD5, KeySHA1, KeySHA256, KeySHA384, KeySHA512, KeySpamSum:
		return true
	}
	return false
}

// DedupeType is the merge mode applied after bucketing.
type DedupeType string

const (
	DedupeNone DedupeType = ""
	DedupeGame DedupeType = "game"
	DedupeFull DedupeType = "full"
)

// ParseDedupeType converts a user supplied name into a DedupeType.
func ParseDedupeType(s string) (DedupeType, error) {
	switch d := DedupeType(strings.ToLower(strings.TrimSpace(s))); d {
	case DedupeNone, DedupeGame, DedupeFull:
		return d, nil
	case "none":
		return DedupeNone, nil
	default:
		return DedupeNone, fmt.Errorf("unknown dedupe mode %q", s)
	}
}

// MachineType is a set of machine flags.
type MachineType uint8

const (
	MachineBios MachineType = 1 << iota
	MachineDevice
	MachineMechanical
)

// Machine is the game/set an item belongs to. Clone and parent relations are names only.
type Machine struct {
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Year         string      `json:"year,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	CloneOf      string      `json:"cloneof,omitempty"`
	RomOf        string      `json:"romof,omitempty"`
	SampleOf     string      `json:"sampleof,omitempty"`
	Type         MachineType `json:"type,omitempty"`
}

// Source identifies the input an item was parsed from.
type Source struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
}

// Header is the free-form descriptive record of a catalog.
type Header struct {
	FileName    string            `json:"filename,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Version     string            `json:"version,omitempty"`
	Date        string            `json:"date,omitempty"`
	Author      string            `json:"author,omitempty"`
	Homepage    string            `json:"homepage,omitempty"`
	Comment     string            `json:"comment,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

package items

import (
	"encoding/json"
	"fmt"
)

var registry = map[Kind]func() Variant{
	KindRom:           func() Variant { return &Rom{} },
	KindDisk:          func() Variant { return &Disk{} },
	KindMedia:         func() Variant { return &Media{} },
	KindSample:        func() Variant { return &Sample{} },
	KindBiosSet:       func() Variant { return &BiosSet{} },
	KindRelease:       func() Variant { return &Release{} },
	KindArchive:       func() Variant { return &Archive{} },
	KindBlank:         func() Variant { return &Blank{} },
	KindConfiguration: func() Variant { return &Configuration{} },
	KindSetting:       func() Variant { return &Setting{} },
	KindDevice:        func() Variant { return &Device{} },
	KindControl:       func() Variant { return &Control{} },
	KindInfo:          func() Variant { return &Info{} },
	KindLocation:      func() Variant { return &Location{} },
	KindChip:          func() Variant { return &Chip{} },
	KindCondition:     func() Variant { return &Condition{} },
	KindAdjuster:      func() Variant { return &Adjuster{} },
	KindDipSwitch:     func() Variant { return &DipSwitch{} },
	KindDriver:        func() Variant { return &Driver{} },
	KindRamOption:     func() Variant { return &RamOption{} },
	KindSoftwareList:  func() Variant { return &SoftwareList{} },
	KindSound:         func() Variant { return &Sound{} },
}

// NewVariant returns an empty variant of the given kind.
func NewVariant(k Kind) (Variant, error) {
	ctor, ok := registry[k]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedItem, k)
	}
	return ctor(), nil
}

type itemJSON struct {
	Type     Kind            `json:"type"`
	Status   ItemStatus      `json:"status,omitempty"`
	Remove   bool            `json:"remove,omitempty"`
	DupeType DupeType        `json:"dupe_type,omitempty"`
	Machine  Machine         `json:"machine"`
	Source   Source          `json:"source"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the item with its kind as a discriminator.
func (i Item) MarshalJSON() ([]byte, error) {
	if i.Variant == nil {
		return nil, fmt.Errorf("%w: missing variant", ErrMalformedItem)
	}
	data, err := json.Marshal(i.Variant)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", i.Variant.Kind(), err)
	}
	return json.Marshal(itemJSON{
		Type:     i.Variant.Kind(),
		Status:   i.Status,
		Remove:   i.Remove,
		DupeType: i.DupeType,
		Machine:  i.Machine,
		Source:   i.Source,
		Data:     data,
	})
}

// UnmarshalJSON decodes an item written by MarshalJSON.
func (i *Item) UnmarshalJSON(b []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := NewVariant(raw.Type)
	if err != nil {
		return err
	}
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, v); err != nil {
			return fmt.Errorf("failed to decode %s: %w", raw.Type, err)
		}
	}
	*i = Item{
		Status:   raw.Status,
		Remove:   raw.Remove,
		DupeType: raw.DupeType,
		Machine:  raw.Machine,
		Source:   raw.Source,
		Variant:  v,
	}
	return nil
}

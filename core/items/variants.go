package items

import "slices"

// Rom is a single ROM image.
type Rom struct {
	Name     string `json:"name"`
	Size     *int64 `json:"size,omitempty"`
	Hashes   Hashes `json:"hashes"`
	Date     string `json:"date,omitempty"`
	MergeTag string `json:"merge,omitempty"`
	Region   string `json:"region,omitempty"`
	Offset   string `json:"offset,omitempty"`
	Bios     string `json:"bios,omitempty"`
	Optional *bool  `json:"optional,omitempty"`
}

func (r *Rom) Kind() Kind { return KindRom }
func (r *Rom) GetName() string { return r.Name }
func (r *Rom) hashes() Hashes { return r.Hashes }
func (r *Rom) size() *int64 { return r.Size }
func (r *Rom) equal(o Variant) bool {
	other, ok := o.(*Rom)
	return ok && hashedEqual(r.Name, r.Size, r.Hashes, other.Name, other.Size, other.Hashes)
}

func (r *Rom) clone() Variant {
	c := *r
	c.Size = clonePtr(r.Size)
	c.Optional = clonePtr(r.Optional)
	return &c
}

func (r *Rom) fill(o Variant) {
	other, ok := o.(*Rom)
	if !ok {
		return
	}
	fillPtr(&r.Size, other.Size)
	r.Hashes.fill(other.Hashes)
	fillString(&r.Date, other.Date)
	fillString(&r.MergeTag, other.MergeTag)
	fillString(&r.Region, other.Region)
	fillString(&r.Offset, other.Offset)
	fillString(&r.Bios, other.Bios)
	fillPtr(&r.Optional, other.Optional)
}

// Disk is a CHD or similar disk image.
type Disk struct {
	Name     string `json:"name"`
	Hashes   Hashes `json:"hashes"`
	MergeTag string `json:"merge,omitempty"`
	Region   string `json:"region,omitempty"`
	Index    string `json:"index,omitempty"`
	Writable *bool  `json:"writable,omitempty"`
	Optional *bool  `json:"optional,omitempty"`
}

func (d *Disk) Kind() Kind { return KindDisk }
func (d *Disk) GetName() string { return d.Name }
func (d *Disk) hashes() Hashes { return d.Hashes }
func (d *Disk) size() *int64 { return nil }
func (d *Disk) equal(o Variant) bool {
	other, ok := o.(*Disk)
	return ok && hashedEqual(d.Name, nil, d.Hashes, other.Name, nil, other.Hashes)
}

func (d *Disk) clone() Variant {
	c := *d
	c.Writable = clonePtr(d.Writable)
	c.Optional = clonePtr(d.Optional)
	return &c
}

func (d *Disk) fill(o Variant) {
	other, ok := o.(*Disk)
	if !ok {
		return
	}
	d.Hashes.fill(other.Hashes)
	fillString(&d.MergeTag, other.MergeTag)
	fillString(&d.Region, other.Region)
	fillString(&d.Index, other.Index)
	fillPtr(&d.Writable, other.Writable)
	fillPtr(&d.Optional, other.Optional)
}

// Media is an optical or cartridge media image.
type Media struct {
	Name   string `json:"name"`
	Hashes Hashes `json:"hashes"`
}

func (m *Media) Kind() Kind { return KindMedia }
func (m *Media) GetName() string { return m.Name }
func (m *Media) hashes() Hashes { return m.Hashes }
func (m *Media) size() *int64 { return nil }
func (m *Media) equal(o Variant) bool {
	other, ok := o.(*Media)
	return ok && hashedEqual(m.Name, nil, m.Hashes, other.Name, nil, other.Hashes)
}
func (m *Media) clone() Variant {
	c := *m
	return &c
}
func (m *Media) fill(o Variant) {
	if other, ok := o.(*Media); ok {
		m.Hashes.fill(other.Hashes)
	}
}

// hashedEqual compares hash-bearing items. Hash-less items fall back to name and size.
func hashedEqual(nameA string, sizeA *int64, ha Hashes, nameB string, sizeB *int64, hb Hashes) bool {
	if sizeA != nil && sizeB != nil && *sizeA != *sizeB {
		return false
	}
	switch {
	case ha.Empty() && hb.Empty():
		return nameA == nameB && ptrEqual(sizeA, sizeB)
	case ha.Empty() || hb.Empty():
		return false
	}
	return ha.Match(hb)
}

// Sample is an audio sample referenced by a machine.
type Sample struct {
	Name string `json:"name"`
}

func (s *Sample) Kind() Kind { return KindSample }
func (s *Sample) GetName() string { return s.Name }
func (s *Sample) equal(o Variant) bool {
	other, ok := o.(*Sample)
	return ok && s.Name == other.Name
}
func (s *Sample) clone() Variant {
	c := *s
	return &c
}

// BiosSet is a selectable BIOS.
type BiosSet struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Default     *bool  `json:"default,omitempty"`
}

func (b *BiosSet) Kind() Kind { return KindBiosSet }
func (b *BiosSet) GetName() string { return b.Name }
func (b *BiosSet) equal(o Variant) bool {
	other, ok := o.(*BiosSet)
	return ok && b.Name == other.Name && b.Description == other.Description && ptrEqual(b.Default, other.Default)
}

func (b *BiosSet) clone() Variant {
	c := *b
	c.Default = clonePtr(b.Default)
	return &c
}

func (b *BiosSet) fill(o Variant) {
	if other, ok := o.(*BiosSet); ok {
		fillString(&b.Description, other.Description)
		fillPtr(&b.Default, other.Default)
	}
}

// Release is a regional release of a machine.
type Release struct {
	Name     string `json:"name"`
	Region   string `json:"region,omitempty"`
	Language string `json:"language,omitempty"`
	Date     string `json:"date,omitempty"`
	Default  *bool  `json:"default,omitempty"`
}

func (r *Release) Kind() Kind { return KindRelease }
func (r *Release) GetName() string { return r.Name }
func (r *Release) equal(o Variant) bool {
	other, ok := o.(*Release)
	return ok && r.Name == other.Name && r.Region == other.Region &&
		r.Language == other.Language && r.Date == other.Date && ptrEqual(r.Default, other.Default)
}

func (r *Release) clone() Variant {
	c := *r
	c.Default = clonePtr(r.Default)
	return &c
}

func (r *Release) fill(o Variant) {
	if other, ok := o.(*Release); ok {
		fillString(&r.Language, other.Language)
		fillString(&r.Date, other.Date)
	}
}

// Archive is a named archive reference.
type Archive struct {
	Name string `json:"name"`
}

func (a *Archive) Kind() Kind { return KindArchive }
func (a *Archive) GetName() string { return a.Name }
func (a *Archive) equal(o Variant) bool {
	other, ok := o.(*Archive)
	return ok && a.Name == other.Name
}
func (a *Archive) clone() Variant {
	c := *a
	return &c
}

// Blank stands in for a machine without any items.
type Blank struct{}

func (b *Blank) Kind() Kind { return KindBlank }
func (b *Blank) GetName() string { return "" }
func (b *Blank) equal(o Variant) bool {
	_, ok := o.(*Blank)
	return ok
}
func (b *Blank) clone() Variant { return &Blank{} }

// Condition gates a setting, adjuster or dip switch on a port value.
type Condition struct {
	Tag      string `json:"tag,omitempty"`
	Mask     string `json:"mask,omitempty"`
	Relation string `json:"relation,omitempty"`
	Value    string `json:"value,omitempty"`
}

func (c *Condition) Kind() Kind { return KindCondition }
func (c *Condition) GetName() string { return "" }
func (c *Condition) equal(o Variant) bool {
	other, ok := o.(*Condition)
	return ok && *c == *other
}
func (c *Condition) clone() Variant {
	v := *c
	return &v
}

func conditionEq(a, b Condition) bool { return a == b }

// Location is a switch position.
type Location struct {
	Name     string `json:"name"`
	Number   *int64 `json:"number,omitempty"`
	Inverted *bool  `json:"inverted,omitempty"`
}

func (l *Location) Kind() Kind { return KindLocation }
func (l *Location) GetName() string { return l.Name }
func (l *Location) equal(o Variant) bool {
	other, ok := o.(*Location)
	return ok && locationEq(*l, *other)
}
func (l *Location) clone() Variant {
	v := l.copy()
	return &v
}

func (l Location) copy() Location {
	l.Number = clonePtr(l.Number)
	l.Inverted = clonePtr(l.Inverted)
	return l
}

func locationEq(a, b Location) bool {
	return a.Name == b.Name && ptrEqual(a.Number, b.Number) && ptrEqual(a.Inverted, b.Inverted)
}

// Setting is one value of a configuration.
type Setting struct {
	Name       string      `json:"name"`
	Value      string      `json:"value,omitempty"`
	Default    *bool       `json:"default,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

func (s *Setting) Kind() Kind { return KindSetting }
func (s *Setting) GetName() string { return s.Name }
func (s *Setting) equal(o Variant) bool {
	other, ok := o.(*Setting)
	return ok && settingEq(*s, *other)
}
func (s *Setting) clone() Variant {
	v := s.copy()
	return &v
}

func (s Setting) copy() Setting {
	s.Default = clonePtr(s.Default)
	s.Conditions = slices.Clone(s.Conditions)
	return s
}

func settingEq(a, b Setting) bool {
	return a.Name == b.Name && a.Value == b.Value && ptrEqual(a.Default, b.Default) &&
		sameSet(a.Conditions, b.Conditions, conditionEq)
}

// Configuration is a machine configuration option with its settings.
type Configuration struct {
	Name       string      `json:"name"`
	Tag        string      `json:"tag,omitempty"`
	Mask       string      `json:"mask,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
	Locations  []Location  `json:"locations,omitempty"`
	Settings   []Setting   `json:"settings,omitempty"`
}

func (c *Configuration) Kind() Kind { return KindConfiguration }
func (c *Configuration) GetName() string { return c.Name }
func (c *Configuration) equal(o Variant) bool {
	other, ok := o.(*Configuration)
	return ok && c.Name == other.Name && c.Tag == other.Tag && c.Mask == other.Mask &&
		sameSet(c.Conditions, other.Conditions, conditionEq) &&
		sameSet(c.Locations, other.Locations, locationEq) &&
		sameSet(c.Settings, other.Settings, settingEq)
}

func (c *Configuration) clone() Variant {
	v := *c
	v.Conditions = slices.Clone(c.Conditions)
	v.Locations = copyAll(c.Locations, Location.copy)
	v.Settings = copyAll(c.Settings, Setting.copy)
	return &v
}

// Instance is a named device instance.
type Instance struct {
	Name      string `json:"name"`
	BriefName string `json:"briefname,omitempty"`
}

// Extension is a file extension accepted by a device.
type Extension struct {
	Name string `json:"name"`
}

// Device is an attachable device such as a cartridge slot.
type Device struct {
	DeviceType string      `json:"type,omitempty"`
	Tag        string      `json:"tag,omitempty"`
	FixedImage string      `json:"fixed_image,omitempty"`
	Interface  string      `json:"interface,omitempty"`
	Mandatory  *int64      `json:"mandatory,omitempty"`
	Instances  []Instance  `json:"instances,omitempty"`
	Extensions []Extension `json:"extensions,omitempty"`
}

func (d *Device) Kind() Kind { return KindDevice }
func (d *Device) GetName() string { return "" }
func (d *Device) equal(o Variant) bool {
	other, ok := o.(*Device)
	return ok && d.DeviceType == other.DeviceType && d.Tag == other.Tag &&
		d.FixedImage == other.FixedImage && d.Interface == other.Interface &&
		ptrEqual(d.Mandatory, other.Mandatory) &&
		sameSet(d.Instances, other.Instances, func(a, b Instance) bool { return a == b }) &&
		sameSet(d.Extensions, other.Extensions, func(a, b Extension) bool { return a == b })
}

func (d *Device) clone() Variant {
	v := *d
	v.Mandatory = clonePtr(d.Mandatory)
	v.Instances = slices.Clone(d.Instances)
	v.Extensions = slices.Clone(d.Extensions)
	return &v
}

// Control is an input control.
type Control struct {
	ControlType     string `json:"type,omitempty"`
	Player          *int64 `json:"player,omitempty"`
	Buttons         *int64 `json:"buttons,omitempty"`
	RequiredButtons *int64 `json:"reqbuttons,omitempty"`
	Minimum         *int64 `json:"minimum,omitempty"`
	Maximum         *int64 `json:"maximum,omitempty"`
	Sensitivity     *int64 `json:"sensitivity,omitempty"`
	KeyDelta        *int64 `json:"keydelta,omitempty"`
	Reverse         *bool  `json:"reverse,omitempty"`
	Ways            string `json:"ways,omitempty"`
	Ways2           string `json:"ways2,omitempty"`
	Ways3           string `json:"ways3,omitempty"`
}

func (c *Control) Kind() Kind { return KindControl }
func (c *Control) GetName() string { return "" }
func (c *Control) equal(o Variant) bool {
	other, ok := o.(*Control)
	return ok && c.ControlType == other.ControlType &&
		ptrEqual(c.Player, other.Player) &&
		ptrEqual(c.Buttons, other.Buttons) &&
		ptrEqual(c.RequiredButtons, other.RequiredButtons) &&
		ptrEqual(c.Minimum, other.Minimum) &&
		ptrEqual(c.Maximum, other.Maximum) &&
		ptrEqual(c.Sensitivity, other.Sensitivity) &&
		ptrEqual(c.KeyDelta, other.KeyDelta) &&
		ptrEqual(c.Reverse, other.Reverse) &&
		c.Ways == other.Ways && c.Ways2 == other.Ways2 && c.Ways3 == other.Ways3
}

func (c *Control) clone() Variant {
	v := *c
	v.Player = clonePtr(c.Player)
	v.Buttons = clonePtr(c.Buttons)
	v.RequiredButtons = clonePtr(c.RequiredButtons)
	v.Minimum = clonePtr(c.Minimum)
	v.Maximum = clonePtr(c.Maximum)
	v.Sensitivity = clonePtr(c.Sensitivity)
	v.KeyDelta = clonePtr(c.KeyDelta)
	v.Reverse = clonePtr(c.Reverse)
	return &v
}

// Info is a free-form name/value pair.
type Info struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

func (i *Info) Kind() Kind { return KindInfo }
func (i *Info) GetName() string { return i.Name }
func (i *Info) equal(o Variant) bool {
	other, ok := o.(*Info)
	return ok && *i == *other
}
func (i *Info) clone() Variant {
	v := *i
	return &v
}

// Chip is a CPU or audio chip.
type Chip struct {
	Name     string `json:"name"`
	Tag      string `json:"tag,omitempty"`
	ChipType string `json:"type,omitempty"`
	Clock    *int64 `json:"clock,omitempty"`
}

func (c *Chip) Kind() Kind { return KindChip }
func (c *Chip) GetName() string { return c.Name }
func (c *Chip) equal(o Variant) bool {
	other, ok := o.(*Chip)
	return ok && c.Name == other.Name && c.Tag == other.Tag &&
		c.ChipType == other.ChipType && ptrEqual(c.Clock, other.Clock)
}

func (c *Chip) clone() Variant {
	v := *c
	v.Clock = clonePtr(c.Clock)
	return &v
}

func (c *Chip) fill(o Variant) {
	if other, ok := o.(*Chip); ok {
		fillPtr(&c.Clock, other.Clock)
	}
}

// Adjuster is an analog adjustment.
type Adjuster struct {
	Name       string      `json:"name"`
	Default    *bool       `json:"default,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

func (a *Adjuster) Kind() Kind { return KindAdjuster }
func (a *Adjuster) GetName() string { return a.Name }
func (a *Adjuster) equal(o Variant) bool {
	other, ok := o.(*Adjuster)
	return ok && a.Name == other.Name && ptrEqual(a.Default, other.Default) &&
		sameSet(a.Conditions, other.Conditions, conditionEq)
}

func (a *Adjuster) clone() Variant {
	v := *a
	v.Default = clonePtr(a.Default)
	v.Conditions = slices.Clone(a.Conditions)
	return &v
}

// DipValue is one position of a dip switch.
type DipValue struct {
	Name    string `json:"name"`
	Value   string `json:"value,omitempty"`
	Default *bool  `json:"default,omitempty"`
}

func (d DipValue) copy() DipValue {
	d.Default = clonePtr(d.Default)
	return d
}

func dipValueEq(a, b DipValue) bool {
	return a.Name == b.Name && a.Value == b.Value && ptrEqual(a.Default, b.Default)
}

// DipSwitch is a bank of dip switches.
type DipSwitch struct {
	Name       string      `json:"name"`
	Tag        string      `json:"tag,omitempty"`
	Mask       string      `json:"mask,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
	Locations  []Location  `json:"locations,omitempty"`
	Values     []DipValue  `json:"values,omitempty"`
}

func (d *DipSwitch) Kind() Kind { return KindDipSwitch }
func (d *DipSwitch) GetName() string { return d.Name }
func (d *DipSwitch) equal(o Variant) bool {
	other, ok := o.(*DipSwitch)
	return ok && d.Name == other.Name && d.Tag == other.Tag && d.Mask == other.Mask &&
		sameSet(d.Conditions, other.Conditions, conditionEq) &&
		sameSet(d.Locations, other.Locations, locationEq) &&
		sameSet(d.Values, other.Values, dipValueEq)
}

func (d *DipSwitch) clone() Variant {
	v := *d
	v.Conditions = slices.Clone(d.Conditions)
	v.Locations = copyAll(d.Locations, Location.copy)
	v.Values = copyAll(d.Values, DipValue.copy)
	return &v
}

// Driver describes emulation status.
type Driver struct {
	Status    string `json:"status,omitempty"`
	Emulation string `json:"emulation,omitempty"`
	Cocktail  string `json:"cocktail,omitempty"`
	SaveState string `json:"savestate,omitempty"`
}

func (d *Driver) Kind() Kind { return KindDriver }
func (d *Driver) GetName() string { return "" }
func (d *Driver) equal(o Variant) bool {
	other, ok := o.(*Driver)
	return ok && *d == *other
}
func (d *Driver) clone() Variant {
	v := *d
	return &v
}

// RamOption is a selectable RAM size.
type RamOption struct {
	Name    string `json:"name"`
	Default *bool  `json:"default,omitempty"`
	Content string `json:"content,omitempty"`
}

func (r *RamOption) Kind() Kind { return KindRamOption }
func (r *RamOption) GetName() string { return r.Name }
func (r *RamOption) equal(o Variant) bool {
	other, ok := o.(*RamOption)
	return ok && r.Name == other.Name && r.Content == other.Content && ptrEqual(r.Default, other.Default)
}

func (r *RamOption) clone() Variant {
	v := *r
	v.Default = clonePtr(r.Default)
	return &v
}

// SoftwareList references a software list.
type SoftwareList struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
	Filter string `json:"filter,omitempty"`
}

func (s *SoftwareList) Kind() Kind { return KindSoftwareList }
func (s *SoftwareList) GetName() string { return s.Name }
func (s *SoftwareList) equal(o Variant) bool {
	other, ok := o.(*SoftwareList)
	return ok && *s == *other
}
func (s *SoftwareList) clone() Variant {
	v := *s
	return &v
}

// Sound describes the audio channels of a machine.
type Sound struct {
	Channels *int64 `json:"channels,omitempty"`
}

func (s *Sound) Kind() Kind { return KindSound }
func (s *Sound) GetName() string { return "" }
func (s *Sound) equal(o Variant) bool {
	other, ok := o.(*Sound)
	return ok && ptrEqual(s.Channels, other.Channels)
}

func (s *Sound) clone() Variant {
	return &Sound{Channels: clonePtr(s.Channels)}
}

func copyAll[T any](in []T, cp func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = cp(v)
	}
	return out
}

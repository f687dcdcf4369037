package fuse

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// Kind is the physical encoding of a fuse.
type Kind int

const (
	// KindStandard fuses live at a fixed bit position of the fuse array.
	KindStandard Kind = iota
	// KindFuseless fuses are realized from the record log.
	KindFuseless
	// KindPseudo fuses are composed of sub-fields of other fuses.
	KindPseudo
)

func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindFuseless:
		return "fuseless"
	case KindPseudo:
		return "pseudo"
	default:
		return "unknown"
	}
}

// ParseKind .
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "standard":
		return KindStandard, nil
	case "fuseless":
		return KindFuseless, nil
	case "pseudo":
		return KindPseudo, nil
	default:
		return KindStandard, errors.Wrapf(terrors.ErrBadParameter, "invalid fuse kind %q", s)
	}
}

// Location addresses bits [Hi:Lo] of the Word-th register.
type Location struct {
	Word int  `toml:"word" mapstructure:"word"`
	Hi   uint `toml:"hi" mapstructure:"hi"`
	Lo   uint `toml:"lo" mapstructure:"lo"`
}

// Width .
func (l Location) Width() uint {
	return l.Hi - l.Lo + 1
}

// Mask returns the value mask of the location, not shifted.
func (l Location) Mask() uint32 {
	return utils.FieldMask(l.Hi, l.Lo)
}

func (l Location) valid() bool {
	return l.Word >= 0 && l.Hi >= l.Lo && l.Hi < 32
}

// SubField is one slice [Hi:Lo] of a pseudo fuse master value, backed by Def.
type SubField struct {
	Def *FuseDef
	Hi  uint
	Lo  uint
}

// FuseDef .
type FuseDef struct {
	Name      string
	Kind      Kind
	Primary   Location
	Redundant *Location
	// Opt is the location of the OPT shadow copy inside the OPT image.
	Opt  *Location
	Subs []SubField
}

// Width is the number of value bits the fuse carries.
func (d *FuseDef) Width() uint {
	if d.Kind != KindPseudo {
		return d.Primary.Width()
	}
	var hi uint
	for _, sub := range d.Subs {
		hi = utils.Max(hi, sub.Hi)
	}
	return hi + 1
}

// Mask covers the value bits. For a pseudo fuse it is the union of its
// sub-fields.
func (d *FuseDef) Mask() uint32 {
	if d.Kind != KindPseudo {
		return utils.FieldMask(d.Width()-1, 0)
	}
	var m uint32
	for _, sub := range d.Subs {
		m |= utils.FieldMask(sub.Hi, sub.Lo) << sub.Lo
	}
	return m
}

// IsFuseless .
func (d *FuseDef) IsFuseless() bool {
	return d.Kind == KindFuseless
}

// IsPseudo .
func (d *FuseDef) IsPseudo() bool {
	return d.Kind == KindPseudo
}

// Requirement binds a fuse to the spec it must satisfy.
type Requirement struct {
	Def  *FuseDef
	Spec Spec
}

// SkuConfig .
type SkuConfig struct {
	Name         string
	Requirements []Requirement
	// IffRows are kept in catalog write order.
	IffRows []uint32
}

// MiscInfo .
type MiscInfo struct {
	Chip          string `mapstructure:"chip"`
	Revision      string `mapstructure:"revision"`
	FuseArraySize int    `mapstructure:"fuse_array_size"`
}

// Catalog is immutable once loaded.
type Catalog struct {
	Fuses map[string]*FuseDef
	Skus  []*SkuConfig
	Info  MiscInfo
}

// Fuse .
func (c *Catalog) Fuse(name string) (*FuseDef, error) {
	if c == nil {
		return nil, terrors.ErrCatalogNotLoaded
	}
	def, ok := c.Fuses[name]
	if !ok {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "unknown fuse %s", name)
	}
	return def, nil
}

// Sku .
func (c *Catalog) Sku(name string) (*SkuConfig, error) {
	if c == nil {
		return nil, terrors.ErrCatalogNotLoaded
	}
	for _, sku := range c.Skus {
		if sku.Name == name {
			return sku, nil
		}
	}
	return nil, errors.Wrapf(terrors.ErrBadParameter, "unknown SKU %s", name)
}

// FuseNames returns the sorted fuse names.
func (c *Catalog) FuseNames() []string {
	var names = make([]string, 0, len(c.Fuses))
	for name := range c.Fuses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks locations, pseudo partitions and SKU references.
func (c *Catalog) Validate() error {
	if c == nil {
		return terrors.ErrCatalogNotLoaded
	}
	for _, name := range c.FuseNames() {
		if err := c.validateFuse(c.Fuses[name]); err != nil {
			return err
		}
	}

	var seen = mapset.NewSet[string]()
	for _, sku := range c.Skus {
		if seen.Contains(sku.Name) {
			return errors.Wrapf(terrors.ErrBadParameter, "duplicated SKU %s", sku.Name)
		}
		seen.Add(sku.Name)

		for _, req := range sku.Requirements {
			if req.Def == nil || req.Spec == nil {
				return errors.Wrapf(terrors.ErrBadParameter, "SKU %s has an incomplete requirement", sku.Name)
			}
			if _, ok := c.Fuses[req.Def.Name]; !ok {
				return errors.Wrapf(terrors.ErrBadParameter, "SKU %s requires unknown fuse %s", sku.Name, req.Def.Name)
			}
		}
	}
	return nil
}

func (c *Catalog) validateFuse(def *FuseDef) error {
	if def.Kind != KindPseudo {
		if !def.Primary.valid() {
			return errors.Wrapf(terrors.ErrBadParameter, "fuse %s has invalid location %+v", def.Name, def.Primary)
		}
		if def.Redundant != nil && def.Redundant.Width() != def.Primary.Width() {
			return errors.Wrapf(terrors.ErrBadParameter, "fuse %s redundant width differs", def.Name)
		}
		if def.Opt != nil && def.Opt.Width() != def.Primary.Width() {
			return errors.Wrapf(terrors.ErrBadParameter, "fuse %s OPT width differs", def.Name)
		}
		return nil
	}

	if len(def.Subs) < 1 {
		return errors.Wrapf(terrors.ErrBadParameter, "pseudo fuse %s has no sub fuses", def.Name)
	}
	for _, sub := range def.Subs {
		if sub.Def == nil {
			return errors.Wrapf(terrors.ErrBadParameter, "pseudo fuse %s has a nil sub fuse", def.Name)
		}
		if sub.Def.Kind == KindPseudo {
			return errors.Wrapf(terrors.ErrBadParameter, "pseudo fuse %s nests pseudo fuse %s", def.Name, sub.Def.Name)
		}
		if sub.Hi-sub.Lo+1 != sub.Def.Width() {
			return errors.Wrapf(terrors.ErrBadParameter, "pseudo fuse %s: field %s is [%d:%d] but the fuse is %d bits",
				def.Name, sub.Def.Name, sub.Hi, sub.Lo, sub.Def.Width())
		}
	}
	if err := ValidateFields(FieldMap(def)); err != nil {
		return errors.Wrapf(err, "pseudo fuse %s", def.Name)
	}
	if def.Mask() != utils.FieldMask(def.Width()-1, 0) {
		return errors.Wrapf(terrors.ErrBadParameter, "pseudo fuse %s leaves gaps in [%d:0]", def.Name, def.Width()-1)
	}
	return nil
}

// OverrideMode .
type OverrideMode int

const (
	// MergeWithFloorsweepDefault merges the override with the catalog requirement.
	MergeWithFloorsweepDefault OverrideMode = iota
	// FullOverride asserts the override value regardless of the catalog requirement.
	FullOverride
)

func (m OverrideMode) String() string {
	if m == FullOverride {
		return "full"
	}
	return "merge"
}

// ParseOverrideMode .
func ParseOverrideMode(s string) (OverrideMode, error) {
	switch s {
	case "", "merge":
		return MergeWithFloorsweepDefault, nil
	case "full":
		return FullOverride, nil
	default:
		return MergeWithFloorsweepDefault, errors.Wrapf(terrors.ErrBadParameter, "invalid override mode %q", s)
	}
}

// Override is a user supplied value for one fuse.
type Override struct {
	Fuse  string
	Value uint32
	Mode  OverrideMode
}

// ParseOverride parses NAME=VALUE[:merge|full].
func ParseOverride(s string) (Override, error) {
	name, rest := utils.PartLeft(strings.TrimSpace(s), "=")
	val, mode := utils.PartLeft(rest, ":")
	if len(name) < 1 || len(val) < 1 {
		return Override{}, errors.Wrapf(terrors.ErrBadParameter, "invalid override %q", s)
	}

	var ov = Override{Fuse: name}
	var err error
	if ov.Value, err = utils.ParseUint32(val); err != nil {
		return ov, errors.Wrapf(terrors.ErrBadParameter, "invalid override value %q", val)
	}
	ov.Mode, err = ParseOverrideMode(mode)
	return ov, err
}

// Options is the planning configuration handed to every match and plan call.
type Options struct {
	Ignore      mapset.Set[string]
	RIR         mapset.Set[string]
	RIRDisable  mapset.Set[string]
	UndoEnabled bool
	// Priority lists the floorsweep bits to set first, per fuse.
	Priority  map[string][]uint
	Overrides map[string]Override
}

// NewOptions .
func NewOptions() Options {
	return Options{
		Ignore:     mapset.NewSet[string](),
		RIR:        mapset.NewSet[string](),
		RIRDisable: mapset.NewSet[string](),
		Priority:   map[string][]uint{},
		Overrides:  map[string]Override{},
	}
}

// IsIgnored .
func (o Options) IsIgnored(name string) bool {
	return o.Ignore != nil && o.Ignore.Contains(name)
}

// IsRIR .
func (o Options) IsRIR(name string) bool {
	return o.RIR != nil && o.RIR.Contains(name)
}

// IsRIRDisable .
func (o Options) IsRIRDisable(name string) bool {
	return o.RIRDisable != nil && o.RIRDisable.Contains(name)
}

// Override returns the override of the fuse if any.
func (o Options) Override(name string) (*Override, bool) {
	ov, ok := o.Overrides[name]
	if !ok {
		return nil, false
	}
	return &ov, true
}

// PlanEntry is the value to assert for one fuse.
type PlanEntry struct {
	Def   *FuseDef
	Value uint32
	// NeedsRIR marks a value only reachable through a repair record.
	NeedsRIR bool
	// UndoRIR marks a plan that sets new bits on a RIR-disable-eligible fuse.
	UndoRIR bool
}

// BurnPlan .
type BurnPlan struct {
	Sku     string
	Entries []PlanEntry
}

// Entry finds the entry of the named fuse.
func (p *BurnPlan) Entry(name string) (PlanEntry, bool) {
	for _, e := range p.Entries {
		if e.Def.Name == name {
			return e, true
		}
	}
	return PlanEntry{}, false
}

package fuse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// Attribute is the tag of a Spec.
type Attribute int

// Attributes .
const (
	AttrDontCare Attribute = iota
	AttrMatchVal
	AttrBitCount
	AttrUndoFuse
	AttrReadOnly
	AttrAteNot
	AttrAteRange
)

var attrNames = map[Attribute]string{
	AttrDontCare: "dontcare",
	AttrMatchVal: "matchval",
	AttrBitCount: "bitcount",
	AttrUndoFuse: "undo",
	AttrReadOnly: "readonly",
	AttrAteNot:   "atenot",
	AttrAteRange: "aterange",
}

func (a Attribute) String() string {
	if name, ok := attrNames[a]; ok {
		return name
	}
	return "unknown"
}

// AttrMask selects attributes in reports.
type AttrMask uint32

// AttrAll .
const AttrAll AttrMask = ^AttrMask(0)

// MaskOf .
func MaskOf(attrs ...Attribute) AttrMask {
	var m AttrMask
	for _, a := range attrs {
		m |= 1 << uint(a)
	}
	return m
}

// Has .
func (m AttrMask) Has(a Attribute) bool {
	return m&(1<<uint(a)) != 0
}

// ParseAttrMask parses a comma separated attribute list; "all" or empty selects everything.
func ParseAttrMask(s string) (AttrMask, error) {
	var names = utils.SplitList(strings.ToLower(s))
	if len(names) < 1 || lo.Contains(names, "all") {
		return AttrAll, nil
	}
	var m AttrMask
	for _, name := range names {
		attr, ok := lo.FindKey(attrNames, name)
		if !ok {
			return 0, errors.Wrapf(terrors.ErrBadParameter, "unknown attribute %q", name)
		}
		m |= MaskOf(attr)
	}
	return m, nil
}

// Spec is the closed set of requirement payloads.
type Spec interface {
	Attribute() Attribute
	String() string
	spec()
}

// DontCare .
type DontCare struct{}

// MatchVal accepts any of Values; declared order is the burn preference order.
type MatchVal struct {
	Values []uint32
}

// ReadOnly is checked like MatchVal but never written.
type ReadOnly struct {
	Values []uint32
}

// AteNot accepts anything but Values.
type AteNot struct {
	Values []uint32
}

// Range is an inclusive [Min, Max].
type Range struct {
	Min uint32
	Max uint32
}

// AteRange accepts values inside any of Ranges.
type AteRange struct {
	Ranges []Range
}

// BitCount requires exactly Target bits set.
type BitCount struct {
	Target int
}

// UndoState is the target of a two bit undo fuse.
type UndoState int

// UndoStates .
const (
	// UndoDisabled is "0": never enabled, or enabled then undone.
	UndoDisabled UndoState = iota
	// UndoEnabled is "1": enabled and not undone.
	UndoEnabled
	// UndoDontCare is "1x": anything but a live enable.
	UndoDontCare
)

// UndoFuse .
type UndoFuse struct {
	Target UndoState
}

func (DontCare) spec() {}
func (MatchVal) spec() {}
func (ReadOnly) spec() {}
func (AteNot) spec()   {}
func (AteRange) spec() {}
func (BitCount) spec() {}
func (UndoFuse) spec() {}

// Attribute .
func (DontCare) Attribute() Attribute { return AttrDontCare }

// Attribute .
func (MatchVal) Attribute() Attribute { return AttrMatchVal }

// Attribute .
func (ReadOnly) Attribute() Attribute { return AttrReadOnly }

// Attribute .
func (AteNot) Attribute() Attribute { return AttrAteNot }

// Attribute .
func (AteRange) Attribute() Attribute { return AttrAteRange }

// Attribute .
func (BitCount) Attribute() Attribute { return AttrBitCount }

// Attribute .
func (UndoFuse) Attribute() Attribute { return AttrUndoFuse }

func (DontCare) String() string { return "x" }

func (s MatchVal) String() string { return joinHex(s.Values) }

func (s ReadOnly) String() string { return "ro:" + joinHex(s.Values) }

func (s AteNot) String() string { return "!" + joinHex(s.Values) }

func (s AteRange) String() string {
	var parts = lo.Map(s.Ranges, func(r Range, _ int) string {
		return utils.Hex(r.Min) + "-" + utils.Hex(r.Max)
	})
	return "range:" + strings.Join(parts, ",")
}

func (s BitCount) String() string { return fmt.Sprintf("bits:%d", s.Target) }

func (s UndoFuse) String() string {
	switch s.Target {
	case UndoDisabled:
		return "undo:0"
	case UndoEnabled:
		return "undo:1"
	default:
		return "undo:1x"
	}
}

// Contains .
func (r Range) Contains(v uint32) bool {
	return v >= r.Min && v <= r.Max
}

func joinHex(vals []uint32) string {
	return strings.Join(lo.Map(vals, func(v uint32, _ int) string { return utils.Hex(v) }), ",")
}

// ParseSpec parses the textual requirement grammar:
//
//	x | dontcare | ""        DontCare
//	v[,v...]                 MatchVal
//	ro:v[,v...]              ReadOnly
//	!v[,v...] | not:v,...    AteNot
//	range:a-b[,a-b...]       AteRange
//	bits:n                   BitCount
//	undo:0|00|1|01|1x|10     UndoFuse
func ParseSpec(s string) (spec Spec, err error) {
	var raw = strings.ToLower(strings.TrimSpace(s))

	switch {
	case raw == "" || raw == "x" || raw == "dontcare":
		spec = DontCare{}

	case strings.HasPrefix(raw, "ro:"):
		var vals []uint32
		vals, err = parseValues(raw[3:])
		spec = ReadOnly{Values: vals}

	case strings.HasPrefix(raw, "not:"):
		var vals []uint32
		vals, err = parseValues(raw[4:])
		spec = AteNot{Values: vals}

	case strings.HasPrefix(raw, "!"):
		var vals []uint32
		vals, err = parseValues(raw[1:])
		spec = AteNot{Values: vals}

	case strings.HasPrefix(raw, "range:"):
		var ranges []Range
		ranges, err = parseRanges(raw[6:])
		spec = AteRange{Ranges: ranges}

	case strings.HasPrefix(raw, "bits:"):
		var n int
		if n, err = strconv.Atoi(strings.TrimSpace(raw[5:])); err != nil || n < 0 || n > 32 {
			err = errors.Wrap(terrors.ErrBadParameter, "invalid bit count")
		}
		spec = BitCount{Target: n}

	case strings.HasPrefix(raw, "undo:"):
		var target UndoState
		target, err = ParseUndoState(raw[5:])
		spec = UndoFuse{Target: target}

	default:
		var vals []uint32
		vals, err = parseValues(raw)
		spec = MatchVal{Values: vals}
	}

	if err != nil {
		return nil, errors.Wrapf(err, "spec %q", s)
	}
	return spec, nil
}

// ParseUndoState .
func ParseUndoState(s string) (UndoState, error) {
	switch strings.TrimSpace(s) {
	case "0", "00":
		return UndoDisabled, nil
	case "1", "01":
		return UndoEnabled, nil
	case "1x", "10":
		return UndoDontCare, nil
	default:
		return UndoDisabled, errors.Wrapf(terrors.ErrBadParameter, "invalid undo state %q", s)
	}
}

func parseValues(s string) ([]uint32, error) {
	var parts = utils.SplitList(s)
	if len(parts) < 1 {
		return nil, errors.Wrap(terrors.ErrBadParameter, "empty value list")
	}
	var vals = make([]uint32, 0, len(parts))
	for _, p := range parts {
		v, err := utils.ParseUint32(p)
		if err != nil {
			return nil, errors.Wrapf(terrors.ErrBadParameter, "invalid value %q", p)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func parseRanges(s string) ([]Range, error) {
	var parts = utils.SplitList(s)
	if len(parts) < 1 {
		return nil, errors.Wrap(terrors.ErrBadParameter, "empty range list")
	}
	var ranges = make([]Range, 0, len(parts))
	for _, p := range parts {
		minStr, maxStr := utils.PartLeft(p, "-")
		if maxStr == "" {
			maxStr = minStr
		}
		minV, err := utils.ParseUint32(minStr)
		if err != nil {
			return nil, errors.Wrapf(terrors.ErrBadParameter, "invalid range %q", p)
		}
		maxV, err := utils.ParseUint32(maxStr)
		if err != nil || maxV < minV {
			return nil, errors.Wrapf(terrors.ErrBadParameter, "invalid range %q", p)
		}
		ranges = append(ranges, Range{Min: minV, Max: maxV})
	}
	return ranges, nil
}

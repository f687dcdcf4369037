package fuse

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// GetFuseValToBurn computes the value to assert for one requirement.
// write is false when nothing has to be written for the fuse.
func GetFuseValToBurn(img *RegisterImage, req Requirement, ov *Override, opts Options) (entry PlanEntry, write bool, err error) {
	var def = req.Def
	raw, err := img.ExtractFuseVal(def)
	if err != nil {
		return entry, false, err
	}

	entry.Def = def
	if writes(req.Spec, ov) {
		if err := checkRawOpt(img, def, opts); err != nil {
			return entry, false, err
		}
	}

	if ov != nil && ov.Mode == FullOverride {
		entry.Value = seedValue(def, raw, ov)
		markUndoRIR(&entry, raw, opts)
		return entry, true, nil
	}

	switch spec := req.Spec.(type) {
	case DontCare:
		if ov == nil {
			return entry, false, nil
		}
		entry.Value = seedValue(def, raw, ov)

	case MatchVal:
		if entry, err = planMatchVal(def, raw, spec, ov, opts); err != nil {
			return entry, false, err
		}

	case BitCount:
		if entry.Value, err = planBitCount(def, raw, spec, ov, opts); err != nil {
			return entry, false, err
		}

	case UndoFuse:
		if entry.Value, err = planUndo(def, raw, spec, opts); err != nil {
			return entry, false, err
		}

	case ReadOnly, AteNot, AteRange:
		// Burned by test equipment or never, not by us.
		return entry, false, nil

	default:
		return entry, false, errors.Wrapf(terrors.ErrSoftwareError, "fuse %s has unknown spec %T", def.Name, req.Spec)
	}

	markUndoRIR(&entry, raw, opts)
	return entry, true, nil
}

// writes reports whether planning spec under ov may assert bits at all.
func writes(spec Spec, ov *Override) bool {
	if ov != nil && ov.Mode == FullOverride {
		return true
	}
	switch spec.(type) {
	case ReadOnly, AteNot, AteRange:
		return false
	case DontCare:
		return ov != nil
	}
	return true
}

// seedValue replaces fuseless values outright and ORs the override into
// everything else, since physical bits cannot be cleared.
func seedValue(def *FuseDef, raw uint32, ov *Override) uint32 {
	if ov == nil {
		return raw
	}
	if def.IsFuseless() {
		return ov.Value & def.Mask()
	}
	return (raw | ov.Value) & def.Mask()
}

func markUndoRIR(entry *PlanEntry, raw uint32, opts Options) {
	if opts.IsRIRDisable(entry.Def.Name) && entry.Value&^raw != 0 {
		entry.UndoRIR = true
	}
}

// planMatchVal keeps the seed when it is already allowed, otherwise picks the
// first allowed value in declared order that only sets bits. The declared
// order is part of the catalog contract and must not be optimised.
func planMatchVal(def *FuseDef, raw uint32, spec MatchVal, ov *Override, opts Options) (PlanEntry, error) {
	var entry = PlanEntry{Def: def}
	if len(spec.Values) < 1 {
		return entry, errors.Wrapf(terrors.ErrBadParameter, "fuse %s has an empty value list", def.Name)
	}

	var seed = seedValue(def, raw, ov)
	if lo.Contains(spec.Values, seed) {
		entry.Value = seed
		return entry, nil
	}

	for _, candidate := range spec.Values {
		if def.IsFuseless() || utils.Covers(seed, candidate) {
			entry.Value = candidate
			return entry, nil
		}
	}

	if opts.IsRIR(def.Name) {
		entry.Value = spec.Values[0]
		entry.NeedsRIR = true
		return entry, nil
	}
	return entry, newFuseError(terrors.ErrCannotBlowFuse, def.Name, spec.String(), seed)
}

// planBitCount sets the priority bits first, then the lowest clear bits, until
// exactly Target bits are set.
func planBitCount(def *FuseDef, raw uint32, spec BitCount, ov *Override, opts Options) (uint32, error) {
	var value = raw
	if def.IsFuseless() && utils.PopCount(value) > spec.Target {
		value = 0
	}
	if ov != nil {
		value |= ov.Value
	}
	value &= def.Mask()

	if utils.PopCount(value) > spec.Target {
		return 0, newFuseError(terrors.ErrCannotMeetFsRequirements, def.Name, spec.String(), value)
	}

	// only bits backed by a physical field are candidates
	var mask = def.Mask()
	var set = func(bit uint) {
		if bit < 32 && mask&(1<<bit) != 0 && utils.PopCount(value) < spec.Target {
			value |= 1 << bit
		}
	}
	for _, bit := range opts.Priority[def.Name] {
		set(bit)
	}
	for bit := uint(0); bit < def.Width(); bit++ {
		set(bit)
	}

	if utils.PopCount(value) != spec.Target {
		return 0, newFuseError(terrors.ErrCannotMeetFsRequirements, def.Name, spec.String(), value)
	}
	return value, nil
}

// planUndo drives the two bit undo encoding: bit 0 enables, bit 1 undoes.
func planUndo(def *FuseDef, raw uint32, spec UndoFuse, opts Options) (uint32, error) {
	if raw > 3 {
		return 0, newFuseError(terrors.ErrSoftwareError, def.Name, spec.String(), raw)
	}

	switch spec.Target {
	case UndoDisabled:
		if raw != 1 {
			return 0, nil
		}
		if !opts.UndoEnabled {
			return 0, newFuseError(terrors.ErrCannotMeetFsRequirements, def.Name, spec.String(), raw)
		}
		return 2, nil

	case UndoEnabled:
		if raw > 1 {
			return 0, newFuseError(terrors.ErrCannotMeetFsRequirements, def.Name, spec.String(), raw)
		}
		return 1, nil

	default:
		return 2, nil
	}
}

// Plan computes the burn plan of skuName, or of the overrides alone when
// skuName is empty. It stops at the first fuse that cannot be planned so that
// no partial plan ever reaches the hardware.
func Plan(cat *Catalog, img *RegisterImage, skuName string, opts Options) (*BurnPlan, error) {
	resolved, err := ResolveOverrides(cat, skuName, opts)
	if err != nil {
		return nil, err
	}

	var plan = &BurnPlan{Sku: skuName}
	for _, r := range resolved {
		if r.Override == nil && opts.IsIgnored(r.Def.Name) {
			continue
		}

		entry, write, err := GetFuseValToBurn(img, r.Requirement, r.Override, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "plan SKU %q", skuName)
		}
		if !write {
			continue
		}

		if !r.Def.IsPseudo() {
			plan.Entries = append(plan.Entries, entry)
			continue
		}

		values := FuseDecompose(FieldMap(r.Def), entry.Value)
		for _, sub := range r.Def.Subs {
			plan.Entries = append(plan.Entries, PlanEntry{
				Def:      sub.Def,
				Value:    values[sub.Def.Name],
				NeedsRIR: entry.NeedsRIR,
				UndoRIR:  entry.UndoRIR,
			})
		}
	}
	return plan, nil
}

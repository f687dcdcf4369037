package fuse

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// Field is the [Hi:Lo] slice a named sub-field occupies in a master value.
type Field struct {
	Hi uint
	Lo uint
}

// FieldMap builds the sub-field layout of a pseudo fuse.
func FieldMap(def *FuseDef) map[string]Field {
	var fields = make(map[string]Field, len(def.Subs))
	for _, sub := range def.Subs {
		fields[sub.Def.Name] = Field{Hi: sub.Hi, Lo: sub.Lo}
	}
	return fields
}

// ValidateFields fails when two fields overlap or a field leaves the 32-bit master.
func ValidateFields(fields map[string]Field) error {
	var names = make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return fields[names[i]].Lo < fields[names[j]].Lo })

	var used uint32
	for _, name := range names {
		f := fields[name]
		if f.Hi < f.Lo || f.Hi > 31 {
			return errors.Wrapf(terrors.ErrBadParameter, "field %s has invalid range [%d:%d]", name, f.Hi, f.Lo)
		}
		mask := utils.FieldMask(f.Hi, f.Lo) << f.Lo
		if used&mask != 0 {
			return errors.Wrapf(terrors.ErrBadParameter, "field %s overlaps another field", name)
		}
		used |= mask
	}
	return nil
}

// FuseCompose writes every field present in both fields and values into master.
// Bits outside those fields are left untouched.
func FuseCompose(fields map[string]Field, values map[string]uint32, master *uint32) {
	for name, f := range fields {
		if val, ok := values[name]; ok {
			*master = utils.SetField(*master, f.Hi, f.Lo, val)
		}
	}
}

// FuseDecompose slices every field out of master.
func FuseDecompose(fields map[string]Field, master uint32) map[string]uint32 {
	var values = make(map[string]uint32, len(fields))
	for name, f := range fields {
		values[name] = utils.GetField(master, f.Hi, f.Lo)
	}
	return values
}

// FuseDecomposeField slices a single field out of master.
func FuseDecomposeField(fields map[string]Field, name string, master uint32) (uint32, error) {
	f, ok := fields[name]
	if !ok {
		return 0, errors.Wrapf(terrors.ErrBadParameter, "unknown field %s", name)
	}
	return utils.GetField(master, f.Hi, f.Lo), nil
}

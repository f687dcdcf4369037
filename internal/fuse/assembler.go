package fuse

import (
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// Assembler turns plan entries into register words for one encoding.
type Assembler interface {
	Assemble(entries []PlanEntry) ([]uint32, error)
}

var (
	_ Assembler = ColumnWriter{}
	_ Assembler = RecordWriter{}
)

// ColumnWriter ORs standard fuse values into a fuse array of Size words, at
// the primary and redundant locations.
type ColumnWriter struct {
	Size int
}

// Assemble .
func (w ColumnWriter) Assemble(entries []PlanEntry) ([]uint32, error) {
	var bm = utils.NewBitmap32Words(make([]uint32, w.Size))
	for _, e := range entries {
		if e.Def.Kind != KindStandard || e.NeedsRIR {
			continue
		}
		if err := orLocation(bm, e.Def.Primary, e.Value); err != nil {
			return nil, errors.Wrapf(err, "fuse %s", e.Def.Name)
		}
		if e.Def.Redundant == nil {
			continue
		}
		if err := orLocation(bm, *e.Def.Redundant, e.Value); err != nil {
			return nil, errors.Wrapf(err, "fuse %s redundant copy", e.Def.Name)
		}
	}
	return bm.Slices, nil
}

func orLocation(bm *utils.Bitmap32, loc Location, val uint32) error {
	if val&^loc.Mask() != 0 {
		return errors.Wrapf(terrors.ErrFuseValueOutOfRange, "value %s exceeds [%d:%d]", utils.Hex(val), loc.Hi, loc.Lo)
	}
	return bm.OrField(loc.Word, loc.Hi, loc.Lo, val)
}

// RecordWriter logs fuseless values, and the repair bookkeeping of any fuse,
// as records.
type RecordWriter struct{}

// Assemble .
func (RecordWriter) Assemble(entries []PlanEntry) ([]uint32, error) {
	var records []Record
	for _, e := range entries {
		var loc = e.Def.Primary
		switch e.Def.Kind {
		case KindFuseless:
			if e.NeedsRIR {
				records = append(records, Record{Type: RecordRIR, Name: e.Def.Name, Loc: loc, Value: e.Value})
			}
			primary := Record{Type: RecordWrite, Name: e.Def.Name, Loc: loc, Value: e.Value}
			if e.UndoRIR {
				primary.Type |= RecordUndoRIR
			}
			records = append(records, primary)

		case KindStandard:
			if e.NeedsRIR {
				records = append(records, Record{Type: RecordRIR, Name: e.Def.Name, Loc: loc, Value: e.Value})
			}
			if e.UndoRIR {
				records = append(records, Record{Type: RecordUndoRIR, Name: e.Def.Name, Loc: loc, Value: e.Value})
			}
		}
	}
	return EncodeRecords(records)
}

// WritePlan is the register write plan of one burn, split by encoding.
type WritePlan struct {
	Column  []uint32
	Records []uint32
	Iff     []uint32
}

// Words concatenates column, records and IFF rows, the order the hardware
// consumes them in.
func (w WritePlan) Words() []uint32 {
	var words = make([]uint32, 0, len(w.Column)+len(w.Records)+len(w.Iff))
	words = append(words, w.Column...)
	words = append(words, w.Records...)
	return append(words, w.Iff...)
}

// AssemblePlan encodes plan for a fuse array of size words. iffRows must be
// in catalog write order.
func AssemblePlan(plan *BurnPlan, size int, iffRows []uint32) (wp WritePlan, err error) {
	if wp.Column, err = (ColumnWriter{Size: size}).Assemble(plan.Entries); err != nil {
		return wp, errors.Wrapf(err, "column plan of SKU %q", plan.Sku)
	}
	if wp.Records, err = (RecordWriter{}).Assemble(plan.Entries); err != nil {
		return wp, errors.Wrapf(err, "record plan of SKU %q", plan.Sku)
	}
	wp.Iff = append([]uint32(nil), iffRows...)
	return wp, nil
}

// Assemble produces the full write plan: column words, then fuseless records,
// then the IFF rows in catalog write order.
func Assemble(plan *BurnPlan, size int, iffRows []uint32) ([]uint32, error) {
	wp, err := AssemblePlan(plan, size, iffRows)
	if err != nil {
		return nil, err
	}
	return wp.Words(), nil
}

package fuse

import (
	"testing"

	"github.com/projecteru2/yafuse/pkg/test/assert"
	"github.com/projecteru2/yafuse/pkg/utils"
)

const testArraySize = 4

func at(word int, hi, lo uint) Location {
	return Location{Word: word, Hi: hi, Lo: lo}
}

func ref(l Location) *Location {
	return &l
}

// newTestCatalog lays out:
//
//	word 0: FUSE_A[1:0] FUSE_B[7:4] FUSE_FS[15:8] FUSE_UNDO[17:16] FUSE_RO[23:20]
//	word 1: FUSE_B redundant copy [7:4]
//	word 2: FUSE_LESS[3:0] (fuseless)
//	word 3: FUSE_P0[1:0] FUSE_P1[9:8], composing PSEUDO_P as P1:P0
func newTestCatalog() *Catalog {
	var (
		a    = &FuseDef{Name: "FUSE_A", Primary: at(0, 1, 0), Opt: ref(at(0, 1, 0))}
		b    = &FuseDef{Name: "FUSE_B", Primary: at(0, 7, 4), Redundant: ref(at(1, 7, 4))}
		fs   = &FuseDef{Name: "FUSE_FS", Primary: at(0, 15, 8)}
		undo = &FuseDef{Name: "FUSE_UNDO", Primary: at(0, 17, 16)}
		ro   = &FuseDef{Name: "FUSE_RO", Primary: at(0, 23, 20)}
		less = &FuseDef{Name: "FUSE_LESS", Kind: KindFuseless, Primary: at(2, 3, 0)}
		p0   = &FuseDef{Name: "FUSE_P0", Primary: at(3, 1, 0)}
		p1   = &FuseDef{Name: "FUSE_P1", Primary: at(3, 9, 8)}
		p    = &FuseDef{Name: "PSEUDO_P", Kind: KindPseudo, Subs: []SubField{
			{Def: p0, Hi: 1, Lo: 0},
			{Def: p1, Hi: 3, Lo: 2},
		}}
	)

	var cat = &Catalog{
		Fuses: map[string]*FuseDef{},
		Info:  MiscInfo{Chip: "TU0", Revision: "A1", FuseArraySize: testArraySize},
	}
	for _, def := range []*FuseDef{a, b, fs, undo, ro, less, p0, p1, p} {
		cat.Fuses[def.Name] = def
	}

	cat.Skus = []*SkuConfig{
		{
			Name:         "X",
			Requirements: []Requirement{{Def: a, Spec: MatchVal{Values: []uint32{0x3}}}},
		},
		{
			Name: "Y",
			Requirements: []Requirement{
				{Def: a, Spec: MatchVal{Values: []uint32{0x1, 0x3}}},
				{Def: b, Spec: DontCare{}},
				{Def: fs, Spec: BitCount{Target: 3}},
				{Def: undo, Spec: UndoFuse{Target: UndoDisabled}},
				{Def: ro, Spec: ReadOnly{Values: []uint32{0x0}}},
				{Def: less, Spec: MatchVal{Values: []uint32{0x5}}},
				{Def: p, Spec: MatchVal{Values: []uint32{0x9}}},
			},
			IffRows: []uint32{0x10, 0x20},
		},
		{
			Name:         "Z",
			Requirements: []Requirement{{Def: b, Spec: DontCare{}}},
		},
	}
	return cat
}

// goodY is a device state satisfying SKU Y.
func goodY() map[string]uint32 {
	return map[string]uint32{
		"FUSE_A":    0x1,
		"FUSE_FS":   0x7,
		"FUSE_LESS": 0x5,
		"PSEUDO_P":  0x9,
	}
}

func rawOf(t *testing.T, cat *Catalog, vals map[string]uint32) []uint32 {
	var raw = make([]uint32, testArraySize)
	var bm = utils.NewBitmap32Words(raw)
	for name, val := range vals {
		def := cat.Fuses[name]
		if def.IsPseudo() {
			for sub, v := range FuseDecompose(FieldMap(def), val) {
				l := cat.Fuses[sub].Primary
				assert.NilErr(t, bm.PutField(l.Word, l.Hi, l.Lo, v))
			}
			continue
		}
		assert.NilErr(t, bm.PutField(def.Primary.Word, def.Primary.Hi, def.Primary.Lo, val))
	}
	return raw
}

// imageOf builds an image whose OPT shadows agree with RAW.
func imageOf(t *testing.T, cat *Catalog, vals map[string]uint32) *RegisterImage {
	var raw = rawOf(t, cat, vals)
	return NewRegisterImage(raw, raw)
}

package fuse

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/test/assert"
)

func TestIsFuseRight(t *testing.T) {
	var cat = newTestCatalog()
	cases := []struct {
		fuse    string
		val     uint32
		spec    Spec
		matched bool
	}{
		{"FUSE_A", 0x3, MatchVal{Values: []uint32{1, 3}}, true},
		{"FUSE_A", 0x2, MatchVal{Values: []uint32{1, 3}}, false},
		{"FUSE_RO", 0x0, ReadOnly{Values: []uint32{0}}, true},
		{"FUSE_RO", 0x4, AteNot{Values: []uint32{4}}, false},
		{"FUSE_RO", 0x5, AteNot{Values: []uint32{4}}, true},
		{"FUSE_RO", 0x5, AteRange{Ranges: []Range{{1, 3}, {5, 7}}}, true},
		{"FUSE_RO", 0x4, AteRange{Ranges: []Range{{1, 3}, {5, 7}}}, false},
		{"FUSE_FS", 0x7, BitCount{Target: 3}, true},
		{"FUSE_FS", 0xf, BitCount{Target: 3}, false},
		{"FUSE_LESS", 0x5, MatchVal{Values: []uint32{5}}, true},
		{"PSEUDO_P", 0x9, MatchVal{Values: []uint32{9}}, true},
		{"PSEUDO_P", 0x8, MatchVal{Values: []uint32{9}}, false},
	}
	for _, c := range cases {
		var img = imageOf(t, cat, map[string]uint32{c.fuse: c.val})
		res, err := IsFuseRight(img, Requirement{Def: cat.Fuses[c.fuse], Spec: c.spec}, NewOptions())
		assert.NilErr(t, err)
		assert.Equal(t, c.matched, res.Matched, "%s=%#x %s", c.fuse, c.val, c.spec)
		assert.Equal(t, c.val, res.Actual)
		assert.True(t, res.Measured)
	}
}

func TestIsFuseRightDontCare(t *testing.T) {
	var cat = newTestCatalog()
	var img = imageOf(t, cat, map[string]uint32{"FUSE_B": 0xf})
	res, err := IsFuseRight(img, Requirement{Def: cat.Fuses["FUSE_B"], Spec: DontCare{}}, NewOptions())
	assert.NilErr(t, err)
	assert.True(t, res.Matched)
	assert.False(t, res.Measured)
	assert.Equal(t, uint32(0xf), res.Actual)
}

func TestIsFuseRightRedundantCopy(t *testing.T) {
	var cat = newTestCatalog()
	var raw = make([]uint32, testArraySize)
	raw[0] = 0x10
	raw[1] = 0x20
	var img = NewRegisterImage(raw, raw)

	res, err := IsFuseRight(img, Requirement{Def: cat.Fuses["FUSE_B"], Spec: MatchVal{Values: []uint32{0x3}}}, NewOptions())
	assert.NilErr(t, err)
	assert.True(t, res.Matched)
}

func TestIsFuseRightUndo(t *testing.T) {
	var cat = newTestCatalog()
	cases := []struct {
		target  UndoState
		raw     uint32
		matched bool
	}{
		{UndoDisabled, 0, true},
		{UndoDisabled, 1, false},
		{UndoDisabled, 2, false},
		{UndoDisabled, 3, true},
		{UndoEnabled, 0, false},
		{UndoEnabled, 1, true},
		{UndoEnabled, 3, false},
		{UndoDontCare, 0, true},
		{UndoDontCare, 1, false},
		{UndoDontCare, 2, true},
	}
	for _, c := range cases {
		var img = imageOf(t, cat, map[string]uint32{"FUSE_UNDO": c.raw})
		res, err := IsFuseRight(img, Requirement{Def: cat.Fuses["FUSE_UNDO"], Spec: UndoFuse{Target: c.target}}, NewOptions())
		assert.NilErr(t, err)
		assert.Equal(t, c.matched, res.Matched, "target %d raw %d", c.target, c.raw)
	}

	var wide = &FuseDef{Name: "WIDE_UNDO", Primary: at(1, 18, 16)}
	var raw = make([]uint32, testArraySize)
	raw[1] = 4 << 16
	_, err := IsFuseRight(NewRegisterImage(raw, raw), Requirement{Def: wide, Spec: UndoFuse{Target: UndoEnabled}}, NewOptions())
	assert.True(t, terrors.IsSoftwareErr(err))
}

func TestIsFuseRightRawOptMismatch(t *testing.T) {
	var cat = newTestCatalog()
	var raw = rawOf(t, cat, map[string]uint32{"FUSE_A": 0x3})
	var img = NewRegisterImage(raw, make([]uint32, 1))
	var req = Requirement{Def: cat.Fuses["FUSE_A"], Spec: MatchVal{Values: []uint32{3}}}

	_, err := IsFuseRight(img, req, NewOptions())
	assert.True(t, terrors.IsRawOptMismatchErr(err))
	var fe *FuseError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "FUSE_A", fe.Fuse)
	assert.Equal(t, "RAW 0x3", fe.Expected)
	assert.Equal(t, "OPT 0x0", fe.Actual)

	// fuses awaiting a repair record are judged on RAW alone
	var opts = NewOptions()
	opts.RIR.Add("FUSE_A")
	res, err := IsFuseRight(img, req, opts)
	assert.NilErr(t, err)
	assert.True(t, res.Matched)

	res, err = IsFuseRight(img, Requirement{Def: cat.Fuses["FUSE_A"], Spec: DontCare{}}, NewOptions())
	assert.NilErr(t, err)
	assert.True(t, res.Matched)
}

func TestIsFuseRightNoImage(t *testing.T) {
	var cat = newTestCatalog()
	_, err := IsFuseRight(nil, Requirement{Def: cat.Fuses["FUSE_A"], Spec: DontCare{}}, NewOptions())
	assert.ErrIs(t, err, terrors.ErrImageNotCaptured)
}

func TestResultErr(t *testing.T) {
	var cat = newTestCatalog()
	var req = Requirement{Def: cat.Fuses["FUSE_A"], Spec: MatchVal{Values: []uint32{3}}}
	assert.NilErr(t, Result{Matched: true}.Err(req))

	err := Result{Actual: 1, Measured: true}.Err(req)
	assert.True(t, terrors.IsFuseValueOutOfRangeErr(err))
	assert.Equal(t, "fuse FUSE_A: expected 0x3, actual 0x1: fuse value out of range", err.Error())
}

package fuse

import (
	"testing"

	"github.com/samber/lo"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/test/assert"
)

func infoNames(infos []FuseInfo) []string {
	return lo.Map(infos, func(i FuseInfo, _ int) string { return i.Name })
}

func TestGetFusesInfo(t *testing.T) {
	var cat = newTestCatalog()
	var vals = goodY()
	vals["FUSE_FS"] = 0x3
	var img = imageOf(t, cat, vals)

	all, err := GetFusesInfo(cat, img, "Y", WhichAll, AttrAll, NewOptions())
	assert.NilErr(t, err)
	assert.Equal(t, []string{"FUSE_A", "FUSE_B", "FUSE_FS", "FUSE_UNDO", "FUSE_RO", "FUSE_LESS", "PSEUDO_P"}, infoNames(all))

	bad, err := GetFusesInfo(cat, img, "Y", WhichBad, AttrAll, NewOptions())
	assert.NilErr(t, err)
	assert.Len(t, bad, 1)
	assert.Equal(t, FuseInfo{Name: "FUSE_FS", Attribute: AttrBitCount, Actual: 0x3, Expected: "bits:3"}, bad[0])

	good, err := GetFusesInfo(cat, img, "Y", WhichGood, AttrAll, NewOptions())
	assert.NilErr(t, err)
	assert.Len(t, good, 6)

	mv, err := GetFusesInfo(cat, img, "Y", WhichAll, MaskOf(AttrMatchVal), NewOptions())
	assert.NilErr(t, err)
	assert.Equal(t, []string{"FUSE_A", "FUSE_LESS", "PSEUDO_P"}, infoNames(mv))
}

func TestGetFusesInfoIgnore(t *testing.T) {
	var cat = newTestCatalog()
	var img = imageOf(t, cat, map[string]uint32{"FUSE_FS": 0xff})
	var opts = NewOptions()
	opts.Ignore.Add("FUSE_FS")

	bad, err := GetFusesInfo(cat, img, "Y", WhichBad, MaskOf(AttrBitCount), opts)
	assert.NilErr(t, err)
	assert.Len(t, bad, 0)

	good, err := GetFusesInfo(cat, img, "Y", WhichGood, MaskOf(AttrBitCount), opts)
	assert.NilErr(t, err)
	assert.Equal(t, []string{"FUSE_FS"}, infoNames(good))
}

func TestGetFusesInfoIgnoreUnreadable(t *testing.T) {
	var cat = newTestCatalog()
	// a three bit undo fuse holding an impossible encoding
	var wide = &FuseDef{Name: "WIDE_UNDO", Primary: at(1, 18, 16)}
	cat.Fuses[wide.Name] = wide
	cat.Skus = append(cat.Skus, &SkuConfig{Name: "W", Requirements: []Requirement{
		{Def: cat.Fuses["FUSE_A"], Spec: MatchVal{Values: []uint32{0x1}}},
		{Def: wide, Spec: UndoFuse{Target: UndoDisabled}},
	}})
	var raw = rawOf(t, cat, map[string]uint32{"FUSE_A": 0x1, "WIDE_UNDO": 0x5})
	var img = NewRegisterImage(raw, raw)

	_, err := GetFusesInfo(cat, img, "W", WhichAll, AttrAll, NewOptions())
	assert.True(t, terrors.IsSoftwareErr(err))

	var opts = NewOptions()
	opts.Ignore.Add("WIDE_UNDO")
	all, err := GetFusesInfo(cat, img, "W", WhichAll, AttrAll, opts)
	assert.NilErr(t, err)
	assert.Equal(t, []string{"FUSE_A", "WIDE_UNDO"}, infoNames(all))
	assert.True(t, all[1].Matched)
	assert.Equal(t, uint32(0x5), all[1].Actual)
}

func TestGetFusesInfoRawOptMismatch(t *testing.T) {
	var cat = newTestCatalog()
	var raw = rawOf(t, cat, map[string]uint32{"FUSE_A": 0x3})
	var img = NewRegisterImage(raw, []uint32{0x1})

	bad, err := GetFusesInfo(cat, img, "X", WhichBad, AttrAll, NewOptions())
	assert.NilErr(t, err)
	assert.Len(t, bad, 1)
	assert.Equal(t, uint32(0x3), bad[0].Actual)
	assert.True(t, len(bad[0].Reason) > 0)
}

func TestGetFusesInfoFailed(t *testing.T) {
	var cat = newTestCatalog()
	_, err := GetFusesInfo(cat, imageOf(t, cat, nil), "NO_SUCH_SKU", WhichAll, AttrAll, NewOptions())
	assert.True(t, terrors.IsBadParameterErr(err))

	_, err = GetFusesInfo(cat, nil, "X", WhichAll, AttrAll, NewOptions())
	assert.True(t, terrors.IsSoftwareErr(err))
}

func TestParseWhich(t *testing.T) {
	for in, want := range map[string]Which{"": WhichAll, "all": WhichAll, "Good": WhichGood, "bad": WhichBad} {
		w, err := ParseWhich(in)
		assert.NilErr(t, err)
		assert.Equal(t, want, w)
	}
	_, err := ParseWhich("ugly")
	assert.True(t, terrors.IsBadParameterErr(err))
}

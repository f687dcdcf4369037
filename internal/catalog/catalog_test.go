package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/test/assert"
)

func TestLoadXML(t *testing.T) {
	cat, err := LoadFile("testdata/catalog.xml", "")
	assert.NilErr(t, err)

	assert.Equal(t, fuse.MiscInfo{Chip: "TU0", Revision: "A1", FuseArraySize: 4}, cat.Info)
	assert.Len(t, cat.Fuses, 7)
	assert.Len(t, cat.Skus, 2)

	a, err := cat.Fuse("FUSE_A")
	assert.NilErr(t, err)
	assert.Equal(t, fuse.KindStandard, a.Kind)
	assert.Equal(t, fuse.Location{Word: 0, Hi: 1, Lo: 0}, *a.Opt)
	assert.Nil(t, a.Redundant)

	p, err := cat.Fuse("PSEUDO_P")
	assert.NilErr(t, err)
	assert.Equal(t, fuse.KindPseudo, p.Kind)
	assert.Len(t, p.Subs, 2)
	assert.Equal(t, "FUSE_P1", p.Subs[1].Def.Name)
	assert.True(t, p.Subs[1].Def == cat.Fuses["FUSE_P1"])

	y, err := cat.Sku("Y")
	assert.NilErr(t, err)
	assert.Equal(t, []uint32{0x10, 0x20}, y.IffRows)
	assert.Equal(t, fuse.BitCount{Target: 3}, y.Requirements[2].Spec)
	assert.Equal(t, fuse.MatchVal{Values: []uint32{1, 3}}, y.Requirements[0].Spec)
}

func TestLoadTOMLMatchesXML(t *testing.T) {
	x, err := LoadFile("testdata/catalog.xml", FormatXML)
	assert.NilErr(t, err)
	y, err := LoadFile("testdata/catalog.toml", "")
	assert.NilErr(t, err)
	assert.Equal(t, x, y)
}

func TestLoadFailed(t *testing.T) {
	cases := map[string]struct {
		loader Loader
		body   string
	}{
		"broken xml":      {XMLLoader{}, `<catalog><fuses></catalog>`},
		"unknown sub":     {XMLLoader{}, `<catalog><fuses><fuse name="P" kind="pseudo"><sub fuse="Q" hi="0" lo="0"/></fuse></fuses></catalog>`},
		"bad word":        {XMLLoader{}, `<catalog><fuses><fuse name="A" word="w" hi="0" lo="0"/></fuses></catalog>`},
		"bad kind":        {XMLLoader{}, `<catalog><fuses><fuse name="A" kind="magic" word="0" hi="0" lo="0"/></fuses></catalog>`},
		"duplicated fuse": {XMLLoader{}, `<catalog><fuses><fuse name="A" word="0" hi="0" lo="0"/><fuse name="A" word="0" hi="1" lo="1"/></fuses></catalog>`},
		"bad spec":        {XMLLoader{}, `<catalog><fuses><fuse name="A" word="0" hi="0" lo="0"/></fuses><skus><sku name="S"><require fuse="A" spec="bits:x"/></sku></skus></catalog>`},
		"bad iff":         {XMLLoader{}, `<catalog><skus><sku name="S"><iff>zz</iff></sku></skus></catalog>`},
		"bad info":        {XMLLoader{}, `<catalog><info fuse_array_size="many"/></catalog>`},
		"invalid layout":  {XMLLoader{}, `<catalog><fuses><fuse name="A" word="0" hi="0" lo="3"/></fuses></catalog>`},
		"broken toml":     {TOMLLoader{}, `[[fuse]`},
		"unknown key":     {TOMLLoader{}, "[[fuse]]\nname = \"A\"\nwidth = 3\n"},
		"unknown fuse":    {TOMLLoader{}, "[[sku]]\nname = \"S\"\nrequire = [{ fuse = \"A\", spec = \"1\" }]\n"},
	}
	for name, c := range cases {
		cat, err := c.loader.Load(strings.NewReader(c.body))
		assert.Err(t, err)
		assert.True(t, terrors.IsBadParameterErr(err), name)
		assert.Nil(t, cat, name)
	}

	_, err := LoadFile("testdata/missing.xml", "")
	assert.True(t, terrors.IsBadParameterErr(err))

	_, err = NewLoader("yaml")
	assert.True(t, terrors.IsBadParameterErr(err))
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatOf("/etc/yafuse/tu0.TOML"))
	assert.Equal(t, FormatXML, FormatOf("/etc/yafuse/tu0.xml"))
	assert.Equal(t, FormatXML, FormatOf("tu0"))
}

func TestLazy(t *testing.T) {
	var calls int32
	var fail = true
	var lazy = NewLazy(func() (*fuse.Catalog, error) {
		atomic.AddInt32(&calls, 1)
		if fail {
			return nil, errors.New("boom")
		}
		return &fuse.Catalog{}, nil
	})

	cat, err := lazy.Get()
	assert.Err(t, err)
	assert.Nil(t, cat)
	assert.False(t, lazy.Loaded())

	fail = false
	cat, err = lazy.Get()
	assert.NilErr(t, err)
	assert.NotNil(t, cat)
	assert.True(t, lazy.Loaded())

	again, err := lazy.Get()
	assert.NilErr(t, err)
	assert.True(t, cat == again)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRegistry(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "catalog.toml")
	body, err := os.ReadFile("testdata/catalog.toml")
	assert.NilErr(t, err)
	assert.NilErr(t, os.WriteFile(path, body, 0600))

	var reg = NewRegistry(time.Hour)
	first, err := reg.Get(path, "")
	assert.NilErr(t, err)
	second, err := reg.Get(path, FormatTOML)
	assert.NilErr(t, err)
	assert.True(t, first == second)
	assert.Equal(t, 1, reg.Len())

	// cached even after the file is gone
	assert.NilErr(t, os.Remove(path))
	third, err := reg.Get(path, "")
	assert.NilErr(t, err)
	assert.True(t, first == third)

	reg.Forget(path, "")
	assert.Equal(t, 0, reg.Len())
	_, err = reg.Get(path, "")
	assert.True(t, terrors.IsBadParameterErr(err))
}

package catalog

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
)

// TOMLLoader reads catalogs with an [info] table and [[fuse]] and [[sku]]
// arrays; see testdata/catalog.toml.
type TOMLLoader struct{}

// Load .
func (TOMLLoader) Load(r io.Reader) (*fuse.Catalog, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "parse TOML catalog: %s", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "unknown catalog keys %v", undecoded)
	}
	return doc.build()
}

package catalog

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
)

// Catalog file formats.
const (
	FormatXML  = "xml"
	FormatTOML = "toml"
)

// Loader parses one catalog format.
type Loader interface {
	Load(r io.Reader) (*fuse.Catalog, error)
}

// NewLoader .
func NewLoader(format string) (Loader, error) {
	switch strings.ToLower(format) {
	case FormatXML:
		return XMLLoader{}, nil
	case FormatTOML:
		return TOMLLoader{}, nil
	default:
		return nil, errors.Wrapf(terrors.ErrBadParameter, "unknown catalog format %q", format)
	}
}

// FormatOf guesses the format from the file extension, falling back to XML.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatXML
}

// LoadFile parses the catalog at path. An empty format is guessed.
func LoadFile(path, format string) (*fuse.Catalog, error) {
	if len(format) < 1 {
		format = FormatOf(path)
	}
	loader, err := NewLoader(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "open catalog: %s", err)
	}
	defer f.Close()

	cat, err := loader.Load(f)
	return cat, errors.Wrapf(err, "catalog %s", path)
}

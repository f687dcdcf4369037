package catalog

import (
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/terrors"
)

// document is the format independent shape of a catalog file.
type document struct {
	Info  map[string]any `toml:"info"`
	Fuses []fuseDoc      `toml:"fuse"`
	Skus  []skuDoc       `toml:"sku"`
}

type fuseDoc struct {
	Name      string         `toml:"name"`
	Kind      string         `toml:"kind"`
	Primary   fuse.Location  `toml:"primary"`
	Redundant *fuse.Location `toml:"redundant"`
	Opt       *fuse.Location `toml:"opt"`
	Subs      []subDoc       `toml:"subs"`
}

type subDoc struct {
	Fuse string `toml:"fuse"`
	Hi   uint   `toml:"hi"`
	Lo   uint   `toml:"lo"`
}

type skuDoc struct {
	Name     string       `toml:"name"`
	Requires []requireDoc `toml:"require"`
	Iff      []uint32     `toml:"iff"`
}

type requireDoc struct {
	Fuse string `toml:"fuse"`
	Spec string `toml:"spec"`
}

// build resolves names and parses requirement specs. Nothing of a failed build
// is kept.
func (doc *document) build() (*fuse.Catalog, error) {
	var cat = &fuse.Catalog{Fuses: map[string]*fuse.FuseDef{}}

	if err := decodeInfo(doc.Info, &cat.Info); err != nil {
		return nil, err
	}

	var pseudos []fuseDoc
	for _, fd := range doc.Fuses {
		kind, err := fuse.ParseKind(fd.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "fuse %s", fd.Name)
		}
		if _, exists := cat.Fuses[fd.Name]; exists || len(fd.Name) < 1 {
			return nil, errors.Wrapf(terrors.ErrBadParameter, "duplicated or empty fuse name %q", fd.Name)
		}
		cat.Fuses[fd.Name] = &fuse.FuseDef{
			Name:      fd.Name,
			Kind:      kind,
			Primary:   fd.Primary,
			Redundant: fd.Redundant,
			Opt:       fd.Opt,
		}
		if kind == fuse.KindPseudo {
			pseudos = append(pseudos, fd)
		}
	}

	for _, fd := range pseudos {
		def := cat.Fuses[fd.Name]
		for _, sd := range fd.Subs {
			sub, err := cat.Fuse(sd.Fuse)
			if err != nil {
				return nil, errors.Wrapf(err, "pseudo fuse %s", fd.Name)
			}
			def.Subs = append(def.Subs, fuse.SubField{Def: sub, Hi: sd.Hi, Lo: sd.Lo})
		}
	}

	for _, sd := range doc.Skus {
		sku := &fuse.SkuConfig{Name: sd.Name, IffRows: sd.Iff}
		for _, rd := range sd.Requires {
			def, err := cat.Fuse(rd.Fuse)
			if err != nil {
				return nil, errors.Wrapf(err, "SKU %s", sd.Name)
			}
			spec, err := fuse.ParseSpec(rd.Spec)
			if err != nil {
				return nil, errors.Wrapf(err, "SKU %s fuse %s", sd.Name, rd.Fuse)
			}
			sku.Requirements = append(sku.Requirements, fuse.Requirement{Def: def, Spec: spec})
		}
		cat.Skus = append(cat.Skus, sku)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func decodeInfo(raw map[string]any, info *fuse.MiscInfo) error {
	if len(raw) < 1 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           info,
	})
	if err != nil {
		return errors.Wrap(err, "info decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return errors.Wrapf(terrors.ErrBadParameter, "invalid catalog info: %s", err)
	}
	return nil
}

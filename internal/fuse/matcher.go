package fuse

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/projecteru2/yafuse/pkg/terrors"
)

// FindSkuMatch returns, in catalog order, every SKU the device matches.
// live holds the device IFF rows in hardware replay order.
func FindSkuMatch(cat *Catalog, img *RegisterImage, live []uint32, opts Options) ([]string, error) {
	if cat == nil {
		return nil, terrors.ErrCatalogNotLoaded
	}

	var writeOrder = lo.Reverse(slices.Clone(live))
	var matched = []string{}
	for _, sku := range cat.Skus {
		ok, err := MatchSku(sku, img, writeOrder, opts)
		switch {
		case terrors.IsRawOptMismatchErr(err):
			continue
		case err != nil:
			return nil, errors.Wrapf(err, "SKU %s", sku.Name)
		case ok:
			matched = append(matched, sku.Name)
		}
	}
	return matched, nil
}

// MatchSku reports whether the device state satisfies sku. iffRows must already
// be in catalog write order.
func MatchSku(sku *SkuConfig, img *RegisterImage, iffRows []uint32, opts Options) (bool, error) {
	var supported bool
	for _, req := range sku.Requirements {
		if opts.IsIgnored(req.Def.Name) {
			continue
		}
		res, err := IsFuseRight(img, req, opts)
		if err != nil {
			return false, err
		}
		if !res.Measured {
			continue
		}
		supported = true
		if !res.Matched {
			return false, nil
		}
	}
	if !supported {
		return false, nil
	}
	if len(sku.IffRows) > 0 && !slices.Equal(sku.IffRows, iffRows) {
		return false, nil
	}
	return true, nil
}

// CheckFuse evaluates an ad-hoc textual spec against the named fuse.
func CheckFuse(cat *Catalog, img *RegisterImage, name, spec string, opts Options) (Result, error) {
	def, err := cat.Fuse(name)
	if err != nil {
		return Result{}, err
	}
	parsed, err := ParseSpec(spec)
	if err != nil {
		return Result{}, err
	}
	return IsFuseRight(img, Requirement{Def: def, Spec: parsed}, opts)
}

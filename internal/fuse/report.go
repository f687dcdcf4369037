package fuse

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
)

// Which selects the fuses of a report.
type Which int

// Report selections.
const (
	WhichAll Which = iota
	WhichGood
	WhichBad
)

// ParseWhich .
func ParseWhich(s string) (Which, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return WhichAll, nil
	case "good":
		return WhichGood, nil
	case "bad":
		return WhichBad, nil
	default:
		return WhichAll, errors.Wrapf(terrors.ErrBadParameter, "invalid selection %q", s)
	}
}

// FuseInfo is one report line.
type FuseInfo struct {
	Name      string
	Attribute Attribute
	Actual    uint32
	Expected  string
	Matched   bool
	// Reason is set when the fuse failed for something else than its content.
	Reason string
}

// GetFusesInfo reports the requirements of skuName whose attribute is in mask.
// Ignored fuses are always reported as good.
func GetFusesInfo(cat *Catalog, img *RegisterImage, skuName string, which Which, mask AttrMask, opts Options) ([]FuseInfo, error) {
	sku, err := cat.Sku(skuName)
	if err != nil {
		return nil, err
	}

	var infos []FuseInfo
	for _, req := range sku.Requirements {
		var attr = req.Spec.Attribute()
		if !mask.Has(attr) {
			continue
		}

		info, err := reportFuse(img, req, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "SKU %s", skuName)
		}

		if which == WhichGood && !info.Matched || which == WhichBad && info.Matched {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// reportFuse evaluates one requirement. Ignored fuses are read, never judged.
func reportFuse(img *RegisterImage, req Requirement, opts Options) (FuseInfo, error) {
	var info = FuseInfo{Name: req.Def.Name, Attribute: req.Spec.Attribute(), Expected: req.Spec.String()}
	if opts.IsIgnored(req.Def.Name) {
		actual, err := img.ExtractFuseVal(req.Def)
		info.Actual, info.Matched = actual, true
		return info, err
	}

	res, err := IsFuseRight(img, req, opts)
	switch {
	case terrors.IsRawOptMismatchErr(err):
		info.Reason = err.Error()
	case err != nil:
		return info, err
	default:
		info.Matched = res.Matched
	}
	info.Actual = res.Actual
	return info, nil
}

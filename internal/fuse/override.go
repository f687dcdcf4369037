package fuse

import (
	"sort"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/projecteru2/yafuse/pkg/terrors"
)

// Resolved is a requirement together with the override that takes precedence
// over its catalog default.
type Resolved struct {
	Requirement
	Override *Override
}

// ResolveOverrides merges user overrides ahead of the catalog requirements of
// skuName. An empty skuName resolves the overrides alone. Overrides on fuses the
// SKU does not mention are appended in name order as don't-care requirements.
func ResolveOverrides(cat *Catalog, skuName string, opts Options) ([]Resolved, error) {
	if cat == nil {
		return nil, terrors.ErrCatalogNotLoaded
	}

	var names = make([]string, 0, len(opts.Overrides))
	for name := range opts.Overrides {
		if _, err := cat.Fuse(name); err != nil {
			return nil, errors.Wrap(err, "override")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var resolved []Resolved
	var covered = mapset.NewThreadUnsafeSet[string]()

	if len(skuName) > 0 {
		sku, err := cat.Sku(skuName)
		if err != nil {
			return nil, err
		}
		for _, req := range sku.Requirements {
			ov, _ := opts.Override(req.Def.Name)
			resolved = append(resolved, Resolved{Requirement: req, Override: ov})
			covered.Add(req.Def.Name)
		}
	}

	for _, name := range names {
		if covered.Contains(name) {
			continue
		}
		ov, _ := opts.Override(name)
		resolved = append(resolved, Resolved{
			Requirement: Requirement{Def: cat.Fuses[name], Spec: DontCare{}},
			Override:    ov,
		})
	}
	return resolved, nil
}

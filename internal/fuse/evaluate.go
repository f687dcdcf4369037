package fuse

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// Result is the outcome of evaluating one requirement.
type Result struct {
	Matched bool
	Actual  uint32
	// Measured is false when the requirement says nothing about the device.
	Measured bool
}

// Err converts a content mismatch into ErrFuseValueOutOfRange.
func (r Result) Err(req Requirement) error {
	if r.Matched {
		return nil
	}
	return newFuseError(terrors.ErrFuseValueOutOfRange, req.Def.Name, req.Spec.String(), r.Actual)
}

// IsFuseRight evaluates req against img.
// A RAW/OPT disagreement is returned as an error wrapping ErrRawOptMismatch,
// never as a plain mismatch.
func IsFuseRight(img *RegisterImage, req Requirement, opts Options) (Result, error) {
	actual, err := img.ExtractFuseVal(req.Def)
	if err != nil {
		return Result{}, err
	}

	if _, ok := req.Spec.(DontCare); ok {
		return Result{Matched: true, Actual: actual}, nil
	}

	if err := checkRawOpt(img, req.Def, opts); err != nil {
		return Result{Actual: actual, Measured: true}, err
	}

	matched, err := matchSpec(req.Spec, actual)
	if err != nil {
		return Result{Actual: actual, Measured: true}, errors.Wrapf(err, "fuse %s", req.Def.Name)
	}
	return Result{Matched: matched, Actual: actual, Measured: true}, nil
}

func checkRawOpt(img *RegisterImage, def *FuseDef, opts Options) error {
	switch def.Kind {
	case KindPseudo:
		for _, sub := range def.Subs {
			if err := checkRawOpt(img, sub.Def, opts); err != nil {
				return errors.Wrapf(err, "pseudo fuse %s", def.Name)
			}
		}
		return nil
	case KindFuseless:
		return nil
	}

	if def.Opt == nil || opts.IsRIR(def.Name) {
		return nil
	}
	raw, err := img.ExtractFuseVal(def)
	if err != nil {
		return err
	}
	opt, err := img.ExtractOptFuseVal(def)
	if err != nil {
		return err
	}
	if raw != opt {
		return rawOptMismatch(def, raw, opt)
	}
	return nil
}

func matchSpec(spec Spec, actual uint32) (bool, error) {
	switch s := spec.(type) {
	case DontCare:
		return true, nil
	case MatchVal:
		return lo.Contains(s.Values, actual), nil
	case ReadOnly:
		return lo.Contains(s.Values, actual), nil
	case AteNot:
		return !lo.Contains(s.Values, actual), nil
	case AteRange:
		return lo.SomeBy(s.Ranges, func(r Range) bool { return r.Contains(actual) }), nil
	case BitCount:
		return utils.PopCount(actual) == s.Target, nil
	case UndoFuse:
		return matchUndo(s.Target, actual)
	default:
		return false, errors.Wrapf(terrors.ErrSoftwareError, "unknown spec %T", spec)
	}
}

func matchUndo(target UndoState, raw uint32) (bool, error) {
	if raw > 3 {
		return false, errors.Wrapf(terrors.ErrSoftwareError, "undo fuse reads %d", raw)
	}
	switch target {
	case UndoDisabled:
		return raw == 0 || raw == 3, nil
	case UndoEnabled:
		return raw == 1, nil
	default:
		return raw != 1, nil
	}
}

package fuse

import (
	"fmt"

	"github.com/projecteru2/yafuse/pkg/terrors"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// FuseError reports a failure on one fuse with both encodings.
type FuseError struct {
	Fuse     string
	Expected string
	Actual   string
	cause    error
}

func (e *FuseError) Error() string {
	return fmt.Sprintf("fuse %s: expected %s, actual %s: %v", e.Fuse, e.Expected, e.Actual, e.cause)
}

// Unwrap .
func (e *FuseError) Unwrap() error {
	return e.cause
}

func newFuseError(cause error, fuse, expected string, actual uint32) *FuseError {
	return &FuseError{
		Fuse:     fuse,
		Expected: expected,
		Actual:   utils.Hex(actual),
		cause:    cause,
	}
}

func rawOptMismatch(def *FuseDef, raw, opt uint32) *FuseError {
	return &FuseError{
		Fuse:     def.Name,
		Expected: "RAW " + utils.Hex(raw),
		Actual:   "OPT " + utils.Hex(opt),
		cause:    terrors.ErrRawOptMismatch,
	}
}

package terrors

import "github.com/cockroachdb/errors"

var (
	// ErrBadParameter indicates an unknown fuse, an unknown SKU or a missing catalog.
	ErrBadParameter = errors.New("bad parameter")

	// ErrSoftwareError indicates an impossible encoding was read back, e.g. an undo fuse above 3.
	ErrSoftwareError = errors.New("software error")

	// ErrFuseValueOutOfRange indicates a fuse content mismatch under strict matching.
	ErrFuseValueOutOfRange = errors.New("fuse value out of range")

	// ErrCannotMeetFsRequirements indicates a bit count already over budget, or an undo without permission.
	ErrCannotMeetFsRequirements = errors.New("cannot meet floorsweeping requirements")

	// ErrCannotBlowFuse indicates no allowed value is reachable by only setting bits.
	ErrCannotBlowFuse = errors.Wrap(ErrFuseValueOutOfRange, "cannot blow fuse")

	// ErrRawOptMismatch indicates the RAW and OPT copies of a fuse disagree.
	ErrRawOptMismatch = errors.New("RAW and OPT fuse values disagree")

	// ErrCatalogNotLoaded .
	ErrCatalogNotLoaded = errors.Wrap(ErrBadParameter, "fuse catalog not loaded")

	// ErrImageNotCaptured .
	ErrImageNotCaptured = errors.Wrap(ErrSoftwareError, "register image not captured")

	// ErrInvalidValue indicates the value is invalid.
	ErrInvalidValue = errors.New("invalid value")
)

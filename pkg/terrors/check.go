package terrors

import "github.com/cockroachdb/errors"

// IsBadParameterErr .
func IsBadParameterErr(err error) bool {
	return errors.Is(err, ErrBadParameter)
}

// IsSoftwareErr .
func IsSoftwareErr(err error) bool {
	return errors.Is(err, ErrSoftwareError)
}

// IsFuseValueOutOfRangeErr .
func IsFuseValueOutOfRangeErr(err error) bool {
	return errors.Is(err, ErrFuseValueOutOfRange)
}

// IsCannotMeetFsRequirementsErr .
func IsCannotMeetFsRequirementsErr(err error) bool {
	return errors.Is(err, ErrCannotMeetFsRequirements)
}

// IsCannotBlowFuseErr .
func IsCannotBlowFuseErr(err error) bool {
	return errors.Is(err, ErrCannotBlowFuse)
}

// IsRawOptMismatchErr .
func IsRawOptMismatchErr(err error) bool {
	return errors.Is(err, ErrRawOptMismatch)
}

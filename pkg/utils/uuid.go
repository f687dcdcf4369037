package utils

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// UUIDStr returns a time based UUID.
func UUIDStr() (string, error) {
	var u, err = uuid.NewUUID()
	if err != nil {
		return "", errors.Wrap(err, "new UUID")
	}
	return u.String(), nil
}

package utils

import (
	"strconv"
	"strings"

	"github.com/projecteru2/core/utils"
	"golang.org/x/exp/constraints"
)

// Max .
func Max[T constraints.Ordered](a, b T) T {
	return utils.Max(a, b)
}

// ParseUint32 parses decimal, 0x, 0o and 0b prefixed numbers.
func ParseUint32(s string) (uint32, error) {
	var v, err = strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	return uint32(v), err
}

// Hex .
func Hex(v uint32) string {
	return "0x" + strconv.FormatUint(uint64(v), 16)
}

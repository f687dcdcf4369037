package configs

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
)

// Duration is a non-negative time.Duration written as text in config files.
type Duration time.Duration

// Duration .
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalText accepts Go durations; a bare integer counts seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	var s = strings.TrimSpace(string(text))
	if secs, err := strconv.ParseUint(s, 10, 32); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	dur, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return errors.Wrapf(terrors.ErrBadParameter, "invalid duration %q", s)
	case dur < 0:
		return errors.Wrapf(terrors.ErrBadParameter, "negative duration %q", s)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText drops trailing zero units, 1h30m0s is written as 1h30m.
func (d Duration) MarshalText() ([]byte, error) {
	var s = time.Duration(d).String()
	for _, suffix := range []string{"m0s", "h0m"} {
		if strings.HasSuffix(s, suffix) {
			s = s[:len(s)-2]
		}
	}
	return []byte(s), nil
}

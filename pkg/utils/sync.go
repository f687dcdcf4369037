package utils

import (
	"sync/atomic"
)

// Once runs fn until it succeeds once; a failed fn leaves the Once unset.
// It is not safe to call Do concurrently before the first success.
type Once struct {
	done int32
}

// Do .
func (o *Once) Do(fn func() error) (err error) {
	if !atomic.CompareAndSwapInt32(&o.done, 0, 1) {
		return
	}

	if err = fn(); err != nil {
		// rollback
		atomic.StoreInt32(&o.done, 0)
	}

	return
}

// Done .
func (o *Once) Done() bool {
	return atomic.LoadInt32(&o.done) == 1
}

package mock

import testify "github.com/stretchr/testify/mock"

// Anything .
const Anything = testify.Anything

// Mock .
type Mock = testify.Mock

// Ret .
type Ret struct {
	testify.Arguments
}

// NewRet .
func NewRet(args testify.Arguments) *Ret {
	return &Ret{args}
}

// Err .
func (r *Ret) Err(index int) (err error) {
	if obj := r.Get(index); obj != nil {
		err = obj.(error) //nolint
	}
	return
}

// Words .
func (r *Ret) Words(index int) (words []uint32) {
	if obj := r.Get(index); obj != nil {
		words = obj.([]uint32) //nolint
	}
	return
}

package mocks

import (
	"context"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/internal/hw"
	"github.com/projecteru2/yafuse/pkg/test/mock"
)

// Hardware is a mock of hw.Hardware and hw.IffReader.
type Hardware struct {
	mock.Mock
}

var (
	_ hw.Hardware  = (*Hardware)(nil)
	_ hw.IffReader = (*Hardware)(nil)
)

// Refresh .
func (_m *Hardware) Refresh(ctx context.Context) (hw.Snapshot, error) {
	var ret = mock.NewRet(_m.Called(ctx))
	var snap hw.Snapshot
	if obj := ret.Get(0); obj != nil {
		snap = obj.(hw.Snapshot) //nolint
	}
	return snap, ret.Err(1)
}

// Burn .
func (_m *Hardware) Burn(ctx context.Context, plan fuse.WritePlan) error {
	return mock.NewRet(_m.Called(ctx, plan)).Err(0)
}

// Size .
func (_m *Hardware) Size() int {
	return _m.Called().Int(0)
}

// LiveIffRows .
func (_m *Hardware) LiveIffRows(ctx context.Context) ([]uint32, error) {
	var ret = mock.NewRet(_m.Called(ctx))
	return ret.Words(0), ret.Err(1)
}

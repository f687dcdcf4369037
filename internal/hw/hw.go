package hw

import (
	"context"

	"github.com/projecteru2/yafuse/internal/fuse"
)

// Snapshot is the sensed state of a device at one instant.
type Snapshot struct {
	Raw []uint32
	Opt []uint32
}

// Image wraps the snapshot for evaluation.
func (s Snapshot) Image() *fuse.RegisterImage {
	return fuse.NewRegisterImage(s.Raw, s.Opt)
}

// Hardware is the register interface of one device.
type Hardware interface {
	// Refresh senses RAW and OPT. It has no side effects and may be retried.
	Refresh(ctx context.Context) (Snapshot, error)
	// Burn commits a write plan. It must never be retried blindly.
	Burn(ctx context.Context, plan fuse.WritePlan) error
	// Size is the number of words of the fuse array.
	Size() int
}

// IffReader reads the IFF rows the device replays, in replay order.
type IffReader interface {
	LiveIffRows(ctx context.Context) ([]uint32, error)
}

package device

import (
	"sort"

	"github.com/alphadose/haxmap"
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/yafuse/pkg/terrors"
)

// Registry indexes the devices of one host by ID.
type Registry struct {
	devices *haxmap.Map[string, *Device]
}

// NewRegistry .
func NewRegistry() *Registry {
	return &Registry{devices: haxmap.New[string, *Device]()}
}

// Add .
func (r *Registry) Add(dev *Device) error {
	if _, loaded := r.devices.GetOrSet(dev.ID(), dev); loaded {
		return errors.Wrapf(terrors.ErrBadParameter, "device %s already registered", dev.ID())
	}
	return nil
}

// Get .
func (r *Registry) Get(id string) (*Device, error) {
	dev, ok := r.devices.Get(id)
	if !ok {
		return nil, errors.Wrapf(terrors.ErrBadParameter, "unknown device %s", id)
	}
	return dev, nil
}

// IDs returns the sorted device IDs.
func (r *Registry) IDs() []string {
	var ids = make([]string, 0, r.devices.Len())
	r.devices.ForEach(func(id string, _ *Device) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

package catalog

import (
	"sync"

	"github.com/projecteru2/yafuse/internal/fuse"
	"github.com/projecteru2/yafuse/pkg/utils"
)

// Lazy parses a catalog on first use and keeps it. A failed parse is not
// remembered, the next Get tries again.
type Lazy struct {
	mu   sync.Mutex
	once utils.Once
	load func() (*fuse.Catalog, error)
	cat  *fuse.Catalog
}

// NewLazy .
func NewLazy(load func() (*fuse.Catalog, error)) *Lazy {
	return &Lazy{load: load}
}

// NewLazyFile .
func NewLazyFile(path, format string) *Lazy {
	return NewLazy(func() (*fuse.Catalog, error) {
		return LoadFile(path, format)
	})
}

// Get .
func (l *Lazy) Get() (*fuse.Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.once.Do(func() error {
		cat, err := l.load()
		if err != nil {
			return err
		}
		l.cat = cat
		return nil
	})
	return l.cat, err
}

// Loaded .
func (l *Lazy) Loaded() bool {
	return l.once.Done()
}

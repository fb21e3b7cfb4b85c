package ffalloc

import (
	"sync"

	"github.com/pkg/errors"
)

// Heap stores byte values in a caller supplied region, placing each one
// with an Allocator spanning len(mem). Values are never moved.
type Heap struct {
	sync.RWMutex
	mem   []byte // Entire region
	alloc *Allocator
}

// NewHeap wraps mem. The region may come from anywhere, an off-heap mmap
// included; the Heap never resizes it.
func NewHeap(mem []byte, opts ...Option) (*Heap, error) {
	a, err := New(uint64(len(mem)), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "new heap")
	}
	return &Heap{mem: mem, alloc: a}, nil
}

// Write stores data under id and returns the offset it was placed at.
func (h *Heap) Write(id string, data []byte) (uint64, error) {
	h.Lock()
	defer h.Unlock()

	start, err := h.alloc.Allocate(id, uint64(len(data)))
	if err != nil {
		return 0, err
	}
	copy(h.mem[start:start+uint64(len(data))], data)
	return start, nil
}

// Read returns a copy of the value stored under id.
func (h *Heap) Read(id string) ([]byte, error) {
	h.RLock()
	defer h.RUnlock()

	b, ok := h.alloc.Lookup(id)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownID, "read %q", id)
	}
	data := make([]byte, b.Size)
	copy(data, h.mem[b.Start:b.End()])
	return data, nil
}

// Free releases the value stored under id. The bytes are left as they are.
func (h *Heap) Free(id string) error {
	h.Lock()
	defer h.Unlock()
	return h.alloc.Free(id)
}

// Status reports the partition of the region.
func (h *Heap) Status() Snapshot {
	h.RLock()
	defer h.RUnlock()
	return h.alloc.Status()
}

// TotalFreeSpace indicates the remaining free space available
func (h *Heap) TotalFreeSpace() uint64 {
	h.RLock()
	defer h.RUnlock()
	return h.alloc.TotalFree()
}

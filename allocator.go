package ffalloc

import (
	"ffalloc/freelist"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// FreeBlock is an unallocated range [Start, Start+Size).
type FreeBlock = freelist.Block

// AllocatedBlock is a range [Start, Start+Size) owned by ID.
type AllocatedBlock struct {
	ID    string
	Start uint64
	Size  uint64
}

// End returns the first offset past the block.
func (b AllocatedBlock) End() uint64 {
	return b.Start + b.Size
}

// Allocator partitions a fixed address space [0, size) into named
// allocations and free blocks. Allocation is first-fit in address order
// and freed ranges are coalesced with their free neighbours right away.
type Allocator struct {
	mu    locker
	size  uint64            // Total size of the address space
	fsm   *freeSpaceManager // Manages the free space
	table *table            // Stores id to allocated range
	log   *slog.Logger
}

// New creates an Allocator over [0, totalSize) with one free block spanning all of it.
func New(totalSize uint64, opts ...Option) (*Allocator, error) {
	if totalSize == 0 {
		return nil, errors.Wrap(ErrInvalidSize, "total size must be positive")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Allocator{
		mu:    newLocker(o.locking),
		size:  totalSize,
		fsm:   newFSM(o.carve, o.logger),
		table: newTable(),
		log:   o.logger,
	}
	if err := a.fsm.add(FreeBlock{Start: 0, Size: totalSize}); err != nil {
		return nil, errors.Wrap(err, "new allocator")
	}
	return a, nil
}

// Allocate reserves size units for id and returns the start of the range.
// It fails with ErrInsufficientSpace when no single free block is large
// enough, ErrDuplicateID when id is still allocated and ErrInvalidSize for
// a zero size. A failed call leaves the allocator unchanged.
func (a *Allocator) Allocate(id string, size uint64) (uint64, error) {
	if size == 0 {
		return 0, errors.Wrapf(ErrInvalidSize, "allocate %q", id)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.table.load(id); ok {
		a.log.Debug("allocate rejected", slog.String("id", id), slog.Uint64("size", size))
		return 0, errors.Wrapf(ErrDuplicateID, "allocate %q", id)
	}

	start, ok := a.fsm.extract(size)
	if !ok {
		a.log.Debug("allocate failed",
			slog.String("id", id),
			slog.Uint64("size", size),
			slog.Uint64("free", a.fsm.totalFreeSpace()))
		return 0, errors.Wrapf(ErrInsufficientSpace, "allocate %q (%d)", id, size)
	}
	a.table.store(AllocatedBlock{ID: id, Start: start, Size: size})
	a.log.Debug("allocated", slog.String("id", id), slog.Uint64("start", start), slog.Uint64("size", size))
	return start, nil
}

// Free releases the range held by id and coalesces it with adjacent free blocks.
// It fails with ErrUnknownID when id is not allocated.
func (a *Allocator) Free(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.table.loadAndDelete(id)
	if !ok {
		a.log.Debug("free failed", slog.String("id", id))
		return errors.Wrapf(ErrUnknownID, "free %q", id)
	}
	if err := a.fsm.add(FreeBlock{Start: b.Start, Size: b.Size}); err != nil {
		// the range came out of the table, so it cannot overlap the free list
		// unless the partition is already broken
		a.table.store(b)
		return errors.Wrapf(err, "free %q", id)
	}
	a.log.Debug("freed", slog.String("id", id), slog.Uint64("start", b.Start), slog.Uint64("size", b.Size))
	return nil
}

// Lookup returns the range allocated to id.
func (a *Allocator) Lookup(id string) (AllocatedBlock, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.table.load(id)
}

// TotalSize is the size of the address space.
func (a *Allocator) TotalSize() uint64 {
	return a.size
}

// TotalFree is the sum of all free block sizes.
func (a *Allocator) TotalFree() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fsm.totalFreeSpace()
}

// Status returns a copy of the current partition.
func (a *Allocator) Status() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Snapshot{
		TotalSize:   a.size,
		Allocated:   a.table.sorted(),
		Free:        a.fsm.layout(),
		TotalFree:   a.fsm.totalFreeSpace(),
		LargestFree: a.fsm.largest(),
	}
}

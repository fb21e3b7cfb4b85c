package ffalloc

import (
	"ffalloc/freelist"

	"golang.org/x/exp/slog"
)

// freeSpaceManager keeps the free list sorted and coalesced.
// Callers hold the allocator lock.
type freeSpaceManager struct {
	list  *freelist.List
	carve freelist.Carve
	log   *slog.Logger
}

func newFSM(carve freelist.Carve, log *slog.Logger) *freeSpaceManager {
	return &freeSpaceManager{
		list:  freelist.New(),
		carve: carve,
		log:   log,
	}
}

// add returns a range to the pool and runs the merge pass
func (m *freeSpaceManager) add(fs freelist.Block) error {
	if err := m.list.Insert(fs); err != nil {
		return err
	}
	if n := m.list.Merge(); n > 0 {
		m.log.Debug("coalesced free blocks",
			slog.Int("folded", n),
			slog.Int("blocks", m.list.Len()))
	}
	return nil
}

// extract cuts size units out of the first fitting free block
func (m *freeSpaceManager) extract(size uint64) (uint64, bool) {
	return m.list.Take(size, m.carve)
}

func (m *freeSpaceManager) totalFreeSpace() uint64 {
	return m.list.Free()
}

func (m *freeSpaceManager) largest() uint64 {
	return m.list.Largest()
}

func (m *freeSpaceManager) layout() []freelist.Block {
	return m.list.Blocks()
}

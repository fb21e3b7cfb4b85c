package freelist

import (
	"fmt"
	"strings"

	"github.com/google/btree"
	"github.com/pkg/errors"
)

// degree of the underlying btree
const degree = 16

// Carve selects which end of a free block an allocation is cut from.
type Carve uint8

const (
	// Front cuts the allocation from the low-address end of the block.
	Front Carve = iota
	// Back cuts the allocation from the high-address end of the block.
	Back
)

func (c Carve) String() string {
	switch c {
	case Front:
		return "front"
	case Back:
		return "back"
	}
	return fmt.Sprintf("carve(%d)", uint8(c))
}

var (
	// ErrEmptyBlock is returned when inserting a zero sized block.
	ErrEmptyBlock = errors.New("empty free block")
	// ErrOverlap is returned when an inserted block shares offsets with a listed one.
	ErrOverlap    = errors.New("free block overlaps an existing block")
)

// List is the set of free blocks ordered by start offset.
// It is not safe for concurrent use.
type List struct {
	tree *btree.BTreeG[Block]
	free uint64 // sum of all block sizes
}

func byStart(a, b Block) bool {
	return a.Start < b.Start
}

// New returns an empty List.
func New() *List {
	return &List{tree: btree.NewG[Block](degree, byStart)}
}

// Insert adds b to the list without coalescing it with its neighbours.
// Call Merge afterwards to restore the no-adjacency invariant.
func (l *List) Insert(b Block) error {
	if b.Size == 0 {
		return errors.Wrapf(ErrEmptyBlock, "insert %v", b)
	}
	if prev, ok := l.before(b.Start); ok && prev.overlaps(b) {
		return errors.Wrapf(ErrOverlap, "insert %v over %v", b, prev)
	}
	if next, ok := l.from(b.Start); ok && next.overlaps(b) {
		return errors.Wrapf(ErrOverlap, "insert %v over %v", b, next)
	}
	l.tree.ReplaceOrInsert(b)
	l.free += b.Size
	return nil
}

// Take removes size units from the first block, in address order, that can hold them.
// An exactly fitting block is removed whole; a larger one is shrunk from the end chosen by carve.
// ok is false when no block is large enough, in which case the list is unchanged.
func (l *List) Take(size uint64, carve Carve) (start uint64, ok bool) {
	if size == 0 {
		return 0, false
	}
	var fit Block
	l.tree.Ascend(func(b Block) bool {
		if b.Size >= size {
			fit, ok = b, true
			return false
		}
		return true
	})
	if !ok {
		return 0, false
	}

	l.tree.Delete(fit)
	l.free -= size
	switch {
	case fit.Size == size:
		return fit.Start, true
	case carve == Back:
		l.tree.ReplaceOrInsert(Block{Start: fit.Start, Size: fit.Size - size})
		return fit.End() - size, true
	default:
		l.tree.ReplaceOrInsert(Block{Start: fit.Start + size, Size: fit.Size - size})
		return fit.Start, true
	}
}

// Merge coalesces adjacent blocks in a single ascending pass and returns
// the number of blocks that were folded into a neighbour.
func (l *List) Merge() int {
	merged := make([]Block, 0, l.tree.Len())
	l.tree.Ascend(func(b Block) bool {
		if n := len(merged); n > 0 && merged[n-1].End() == b.Start {
			merged[n-1].Size += b.Size
		} else {
			merged = append(merged, b)
		}
		return true
	})

	folded := l.tree.Len() - len(merged)
	if folded == 0 {
		return 0
	}
	l.tree.Clear(false)
	for _, b := range merged {
		l.tree.ReplaceOrInsert(b)
	}
	return folded
}

// Blocks returns a copy of the list in ascending start order.
func (l *List) Blocks() []Block {
	bs := make([]Block, 0, l.tree.Len())
	l.tree.Ascend(func(b Block) bool {
		bs = append(bs, b)
		return true
	})
	return bs
}

// Largest returns the size of the biggest block, 0 when the list is empty.
func (l *List) Largest() uint64 {
	var largest uint64
	l.tree.Ascend(func(b Block) bool {
		if b.Size > largest {
			largest = b.Size
		}
		return true
	})
	return largest
}

// Len is the number of blocks.
func (l *List) Len() int {
	return l.tree.Len()
}

// Free is the total size of all blocks.
func (l *List) Free() uint64 {
	return l.free
}

func (l *List) String() string {
	var sb strings.Builder
	l.tree.Ascend(func(b Block) bool {
		sb.WriteString(b.String())
		return true
	})
	return sb.String()
}

// before returns the last block starting below pos
func (l *List) before(pos uint64) (prev Block, ok bool) {
	l.tree.DescendLessOrEqual(Block{Start: pos}, func(b Block) bool {
		if b.Start == pos {
			return true
		}
		prev, ok = b, true
		return false
	})
	return
}

// from returns the first block starting at or above pos
func (l *List) from(pos uint64) (next Block, ok bool) {
	l.tree.AscendGreaterOrEqual(Block{Start: pos}, func(b Block) bool {
		next, ok = b, true
		return false
	})
	return
}

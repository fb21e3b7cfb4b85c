package freelist

import "fmt"

// Block is an unallocated range [Start, Start+Size).
type Block struct {
	Start uint64 // Start offset
	Size  uint64 // Length of the range
}

// End returns the first offset past the block.
func (b Block) End() uint64 {
	return b.Start + b.Size
}

// adjacent checks if other begins exactly where b ends or the other way round
func (b Block) adjacent(other Block) bool {
	return b.End() == other.Start || other.End() == b.Start
}

func (b Block) overlaps(other Block) bool {
	return b.Start < other.End() && other.Start < b.End()
}

func (b Block) String() string {
	return fmt.Sprintf("[%v:%v)", b.Start, b.End())
}

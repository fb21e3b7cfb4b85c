package ffalloc

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Snapshot is a point-in-time copy of an allocator's partition.
// Allocated and Free are both ordered by start offset.
type Snapshot struct {
	TotalSize   uint64
	Allocated   []AllocatedBlock
	Free        []FreeBlock
	TotalFree   uint64
	LargestFree uint64
}

// Segment is one range of the memory map.
type Segment struct {
	Start uint64
	Size  uint64
	Free  bool
	ID    string // owner, empty for free segments
}

// End returns the first offset past the segment.
func (s Segment) End() uint64 {
	return s.Start + s.Size
}

// Map interleaves allocated and free ranges in address order.
func (s Snapshot) Map() []Segment {
	segs := make([]Segment, 0, len(s.Allocated)+len(s.Free))
	i, j := 0, 0
	for i < len(s.Allocated) || j < len(s.Free) {
		if j == len(s.Free) || (i < len(s.Allocated) && s.Allocated[i].Start < s.Free[j].Start) {
			a := s.Allocated[i]
			segs = append(segs, Segment{Start: a.Start, Size: a.Size, ID: a.ID})
			i++
			continue
		}
		f := s.Free[j]
		segs = append(segs, Segment{Start: f.Start, Size: f.Size, Free: true})
		j++
	}
	return segs
}

// Fragmentation is the share of free space outside the largest free block:
// 0 when all free space is one block (or nothing is free), approaching 1
// as free space splinters.
func (s Snapshot) Fragmentation() float64 {
	if s.TotalFree == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.TotalFree)
}

// Validate checks that the allocated and free ranges tile [0, TotalSize)
// exactly and that no two free blocks touch.
func (s Snapshot) Validate() error {
	var pos uint64
	prevFree := false
	for _, seg := range s.Map() {
		if seg.Size == 0 {
			return errors.Errorf("zero sized segment at %d", seg.Start)
		}
		switch {
		case seg.Start < pos:
			return errors.Errorf("segment [%d:%d) overlaps previous range ending at %d", seg.Start, seg.End(), pos)
		case seg.Start > pos:
			return errors.Errorf("gap [%d:%d) is neither free nor allocated", pos, seg.Start)
		}
		if seg.Free && prevFree {
			return errors.Errorf("free block at %d is adjacent to the previous free block", seg.Start)
		}
		prevFree = seg.Free
		pos = seg.End()
	}
	if pos != s.TotalSize {
		return errors.Errorf("partition covers [0:%d), want [0:%d)", pos, s.TotalSize)
	}

	var free uint64
	for _, f := range s.Free {
		free += f.Size
	}
	if free != s.TotalFree {
		return errors.Errorf("free blocks sum to %d, recorded total is %d", free, s.TotalFree)
	}
	return nil
}

// String renders the memory map one range per line.
func (s Snapshot) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Memory map (%s, %s free, fragmentation %.2f):\n",
		humanize.IBytes(s.TotalSize), humanize.IBytes(s.TotalFree), s.Fragmentation())
	for _, seg := range s.Map() {
		owner := "free"
		if !seg.Free {
			owner = seg.ID
		}
		fmt.Fprintf(&sb, "  %8s - %-8s %10s  %s\n",
			offset(seg.Start),
			offset(seg.End()-1),
			humanize.IBytes(seg.Size),
			owner)
	}
	return sb.String()
}

// offset formats v with thousands separators
func offset(v uint64) string {
	if v <= math.MaxInt64 {
		return humanize.Comma(int64(v))
	}
	return humanize.BigComma(new(big.Int).SetUint64(v))
}

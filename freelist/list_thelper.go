package freelist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// VerifyInOrder checks that the blocks are strictly ascending and never overlap.
func VerifyInOrder(t *testing.T, l *List) {
	t.Helper()

	var prev *Block
	for _, b := range l.Blocks() {
		b := b
		require.NotZero(t, b.Size, "zero sized block at %v", b.Start)
		if prev != nil {
			require.Less(t, prev.Start, b.Start)
			require.False(t, prev.overlaps(b), "%v overlaps %v", prev, b)
		}
		prev = &b
	}
}

// VerifyNoAdjacency checks that Merge left no pair of touching blocks behind.
func VerifyNoAdjacency(t *testing.T, l *List) {
	t.Helper()

	bs := l.Blocks()
	for i := 1; i < len(bs); i++ {
		require.False(t, bs[i-1].adjacent(bs[i]), "%v touches %v", bs[i-1], bs[i])
	}
}

// VerifyFree checks the cached free total against the blocks.
func VerifyFree(t *testing.T, l *List) {
	t.Helper()

	total := uint64(0)
	for _, b := range l.Blocks() {
		total += b.Size
	}
	require.Equal(t, total, l.Free())
}

// VerifyLonelyBlock checks that the list holds exactly the given block.
func VerifyLonelyBlock(t *testing.T, l *List, want Block) {
	t.Helper()

	require.Equal(t, []Block{want}, l.Blocks())
}

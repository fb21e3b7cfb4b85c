package freelist

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newList(t *testing.T, data [][]uint64) *List {
	t.Helper()
	l := New()
	for _, d := range data {
		require.NoError(t, l.Insert(Block{Start: d[0], Size: d[1]}))
	}
	return l
}

func TestList_InsertMerge(t *testing.T) {
	wrapper := func(data [][]uint64, folded int, additionalChecks func(l *List)) func(t *testing.T) {
		return func(t *testing.T) {
			l := newList(t, data)
			VerifyInOrder(t, l)
			require.Equal(t, folded, l.Merge())
			VerifyInOrder(t, l)
			VerifyNoAdjacency(t, l)
			VerifyFree(t, l)
			require.Equal(t, calcFree(data), l.Free())
			if additionalChecks != nil {
				additionalChecks(l)
			}
		}
	}

	t.Run("no merge", wrapper(
		[][]uint64{{28, 2}, {2, 4}, {7, 5}, {15, 4}, {21, 5}, {41, 19}, {80, 20}},
		0, nil,
	))

	t.Run("simple merge", wrapper(
		[][]uint64{{28, 2}, {2, 5}, {7, 5}, {15, 4}, {21, 5}, {41, 19}, {80, 20}},
		1, func(l *List) {
			require.Equal(t, Block{Start: 2, Size: 10}, l.Blocks()[0])
		},
	))

	t.Run("merge all", wrapper(
		[][]uint64{{20, 10}, {60, 10}, {0, 10}, {40, 10}, {30, 10}, {50, 10}, {10, 10}},
		6, func(l *List) {
			VerifyLonelyBlock(t, l, Block{Start: 0, Size: 70})
		},
	))

	t.Run("merge chain", wrapper(
		[][]uint64{{60, 10}, {40, 10}, {20, 10}, {0, 10}, {30, 10}},
		2, func(l *List) {
			require.Equal(t, 3, l.Len())
		},
	))

	t.Run("idempotent", wrapper(
		[][]uint64{{0, 10}, {10, 10}},
		1, func(l *List) {
			require.Zero(t, l.Merge())
			VerifyLonelyBlock(t, l, Block{Start: 0, Size: 20})
		},
	))
}

func TestList_InsertBad(t *testing.T) {
	l := newList(t, [][]uint64{{10, 10}, {40, 10}})

	err := l.Insert(Block{Start: 30, Size: 0})
	require.True(t, errors.Is(err, ErrEmptyBlock))

	for _, b := range []Block{{5, 6}, {19, 2}, {10, 10}, {12, 2}, {35, 6}, {0, 100}} {
		err = l.Insert(b)
		require.True(t, errors.Is(err, ErrOverlap), "insert %v", b)
	}
	require.Equal(t, []Block{{10, 10}, {40, 10}}, l.Blocks())
	require.Equal(t, uint64(20), l.Free())

	// touching ranges are fine
	require.NoError(t, l.Insert(Block{Start: 20, Size: 20}))
	require.Equal(t, 2, l.Merge())
	VerifyLonelyBlock(t, l, Block{Start: 10, Size: 40})
}

func TestList_Take(t *testing.T) {
	t.Run("first fit", func(t *testing.T) {
		l := newList(t, [][]uint64{{0, 5}, {10, 50}, {100, 20}})
		start, ok := l.Take(20, Front)
		require.True(t, ok)
		require.Equal(t, uint64(10), start)
		require.Equal(t, []Block{{0, 5}, {30, 30}, {100, 20}}, l.Blocks())
		VerifyFree(t, l)
	})

	t.Run("back carve", func(t *testing.T) {
		l := newList(t, [][]uint64{{0, 5}, {10, 50}})
		start, ok := l.Take(20, Back)
		require.True(t, ok)
		require.Equal(t, uint64(40), start)
		require.Equal(t, []Block{{0, 5}, {10, 30}}, l.Blocks())
		VerifyFree(t, l)
	})

	t.Run("exact fit removes block", func(t *testing.T) {
		for _, carve := range []Carve{Front, Back} {
			l := newList(t, [][]uint64{{0, 5}, {10, 50}})
			start, ok := l.Take(5, carve)
			require.True(t, ok)
			require.Equal(t, uint64(0), start)
			require.Equal(t, []Block{{10, 50}}, l.Blocks())
		}
	})

	t.Run("no fit", func(t *testing.T) {
		l := newList(t, [][]uint64{{0, 5}, {10, 50}})
		_, ok := l.Take(51, Front)
		require.False(t, ok)
		_, ok = l.Take(0, Front)
		require.False(t, ok)
		require.Equal(t, []Block{{0, 5}, {10, 50}}, l.Blocks())
		require.Equal(t, uint64(55), l.Free())
	})
}

func TestList_Random(t *testing.T) {
	const total = 4096
	r := rand.New(rand.NewSource(7))
	l := New()
	require.NoError(t, l.Insert(Block{Start: 0, Size: total}))
	var taken []Block
	for i := 0; i < 2000; i++ {
		if len(taken) > 0 && r.Intn(2) == 0 {
			idx := r.Intn(len(taken))
			require.NoError(t, l.Insert(taken[idx]))
			l.Merge()
			taken = append(taken[:idx], taken[idx+1:]...)
			VerifyNoAdjacency(t, l)
		} else {
			size := uint64(r.Intn(128) + 1)
			carve := Carve(r.Intn(2))
			if start, ok := l.Take(size, carve); ok {
				taken = append(taken, Block{Start: start, Size: size})
			}
		}
		VerifyInOrder(t, l)
		VerifyFree(t, l)
	}
	for _, b := range taken {
		require.NoError(t, l.Insert(b))
	}
	l.Merge()
	VerifyLonelyBlock(t, l, Block{Start: 0, Size: total})
}

func TestCarve_String(t *testing.T) {
	require.Equal(t, "front", Front.String())
	require.Equal(t, "back", Back.String())
	require.Equal(t, "carve(9)", Carve(9).String())
}

func Benchmark_TakeInsert(b *testing.B) {
	l := New()
	_ = l.Insert(Block{Start: 0, Size: uint64(b.N) * 16})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		start, ok := l.Take(8, Front)
		if ok && i%2 == 0 {
			_ = l.Insert(Block{Start: start, Size: 8})
			l.Merge()
		}
	}
}

func calcFree(data [][]uint64) uint64 {
	total := uint64(0)
	for _, d := range data {
		total += d[1]
	}
	return total
}

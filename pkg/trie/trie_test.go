package trie

import (
	"math/bits"
	"math/rand"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strides = []int{1, 2, 4, 8}

func mustNew(t testing.TB, stride int) *Trie {
	t.Helper()
	tr, err := New(stride)
	require.NoError(t, err)
	return tr
}

// TestNewTrie verifies that a new trie holds only the root and matches nothing.
func TestNewTrie(t *testing.T) {
	for _, stride := range strides {
		tr := mustNew(t, stride)

		assert.Equal(t, stride, tr.Stride())
		assert.Equal(t, 1, tr.NodeCount(), "a new trie only has a root")
		assert.Equal(t, NoRoute, tr.Lookup(0))
		assert.Equal(t, NoRoute, tr.Lookup(0xFFFFFFFF))
		assert.Equal(t, NoRoute, tr.Lookup(0x0A0A0A0A))
	}
}

func TestNewRejectsInvalidStride(t *testing.T) {
	for _, stride := range []int{-1, 0, 3, 5, 6, 7, 16, 32} {
		tr, err := New(stride)
		assert.Nil(t, tr)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "stride %d must be rejected", stride)
	}
}

func TestExtractBits(t *testing.T) {
	testCases := []struct {
		value    uint32
		start    int
		n        int
		expected uint32
	}{
		{0xC0A80000, 0, 8, 0xC0},
		{0xC0A80000, 8, 8, 0xA8},
		{0xC0A80000, 16, 8, 0x00},
		{0x0A0A0A0A, 0, 4, 0x0},
		{0x0A0A0A0A, 4, 4, 0xA},
		{0x80000000, 0, 1, 1},
		{0x80000000, 1, 1, 0},
		{0x00000001, 31, 1, 1},
		{0x00000003, 30, 2, 3},
		{0xFFFFFFFF, 24, 8, 0xFF},
		{0x12345678, 0, 32, 0x12345678},
		{0x12345678, 28, 4, 0x8},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ExtractBits(tc.value, tc.start, tc.n),
			"ExtractBits(0x%08X, %d, %d)", tc.value, tc.start, tc.n)
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, uint32(0), Mask(0))
	assert.Equal(t, uint32(0x80000000), Mask(1))
	assert.Equal(t, uint32(0xFFFF8000), Mask(17))
	assert.Equal(t, uint32(0xFFFFFFFF), Mask(32))
}

func TestInsertRejectsInvalidArguments(t *testing.T) {
	tr := mustNew(t, 4)

	assert.True(t, errors.Is(tr.Insert(0x0A000000, -1, 1), ErrInvalidArgument))
	assert.True(t, errors.Is(tr.Insert(0x0A000000, 33, 1), ErrInvalidArgument))
	assert.True(t, errors.Is(tr.Insert(0x0A000000, 8, -1), ErrInvalidArgument))
	assert.Equal(t, 1, tr.NodeCount(), "rejected inserts must not touch the tree")

	// the trie stays usable
	require.NoError(t, tr.Insert(0x0A000000, 8, 1))
	assert.Equal(t, 1, tr.Lookup(0x0A010203))
}

// TestLookupNestedPrefixes checks the nested /8, /16, /24 scenario.
func TestLookupNestedPrefixes(t *testing.T) {
	for _, stride := range strides {
		tr := mustNew(t, stride)
		require.NoError(t, tr.Insert(0x0A000000, 8, 1))
		require.NoError(t, tr.Insert(0x0A0A0000, 16, 2))
		require.NoError(t, tr.Insert(0x0A0A0A00, 24, 3))

		assert.Equal(t, 3, tr.Lookup(0x0A0A0A0A), "stride %d", stride)
		assert.Equal(t, 2, tr.Lookup(0x0A0AFFFF), "stride %d", stride)
		assert.Equal(t, 1, tr.Lookup(0x0AFFFFFF), "stride %d", stride)
		assert.Equal(t, NoRoute, tr.Lookup(0xFFFFFFFF), "stride %d", stride)
	}
}

// TestLeafPushing verifies that a /17 in a stride 8 trie lands on exactly the
// 128 third level nodes whose high bit is zero.
func TestLeafPushing(t *testing.T) {
	tr := mustNew(t, 8)
	require.NoError(t, tr.Insert(0xC0A80000, 17, 7))

	pushed := map[uint32]NodeInfo{}
	tr.Walk(func(n NodeInfo) bool {
		if n.Depth < 3 {
			assert.False(t, n.HasRoute, "a /17 must not be stored above its boundary")
			return true
		}
		require.Equal(t, []uint32{0xC0, 0xA8}, n.Path[:2])
		pushed[n.Path[2]] = n
		return true
	})

	require.Len(t, pushed, 128)
	for index := uint32(0); index < 256; index++ {
		n, found := pushed[index]
		if index < 128 {
			require.True(t, found, "child %d must carry the route", index)
			assert.True(t, n.HasRoute)
			assert.Equal(t, 7, n.NextHop)
			assert.Equal(t, 17, n.RouteLength)
		} else {
			assert.False(t, found, "child %d must not carry the route", index)
		}
	}

	assert.Equal(t, 1+1+1+128, tr.NodeCount())
	assert.Equal(t, 7, tr.Lookup(0xC0A80000))
	assert.Equal(t, 7, tr.Lookup(0xC0A87FFF))
	assert.Equal(t, NoRoute, tr.Lookup(0xC0A88000))
	assert.Equal(t, NoRoute, tr.Lookup(0xC0A9FFFF))
}

func TestLeafPushingIgnoresBitsBeyondLength(t *testing.T) {
	for _, stride := range strides {
		tr := mustNew(t, stride)
		// only the first 5 bits (00001) are significant
		require.NoError(t, tr.Insert(0x0FFFFFFF, 5, 4))

		assert.Equal(t, 4, tr.Lookup(0x08000000), "stride %d", stride)
		assert.Equal(t, 4, tr.Lookup(0x0FFFFFFF), "stride %d", stride)
		assert.Equal(t, NoRoute, tr.Lookup(0x10000000), "stride %d", stride)
		assert.Equal(t, NoRoute, tr.Lookup(0x07FFFFFF), "stride %d", stride)
	}
}

func TestEqualLengthFirstInsertWins(t *testing.T) {
	for _, stride := range strides {
		tr := mustNew(t, stride)
		require.NoError(t, tr.Insert(0x0A000000, 8, 1))
		require.NoError(t, tr.Insert(0x0AFFFFFF, 8, 2)) // same /8
		require.NoError(t, tr.Insert(0xC0A80000, 17, 3))
		require.NoError(t, tr.Insert(0xC0A80000, 17, 4))

		assert.Equal(t, 1, tr.Lookup(0x0A010101), "stride %d", stride)
		assert.Equal(t, 3, tr.Lookup(0xC0A81234), "stride %d", stride)
	}
}

func TestLongerPrefixWinsRegardlessOfOrder(t *testing.T) {
	orders := [][][2]int{
		{{17, 7}, {18, 9}},
		{{18, 9}, {17, 7}},
	}

	for _, stride := range strides {
		for _, order := range orders {
			tr := mustNew(t, stride)
			for _, p := range order {
				require.NoError(t, tr.Insert(0xC0A80000, p[0], p[1]))
			}

			assert.Equal(t, 9, tr.Lookup(0xC0A80001), "stride %d order %v", stride, order)
			assert.Equal(t, 7, tr.Lookup(0xC0A84000), "stride %d order %v", stride, order)
			assert.Equal(t, NoRoute, tr.Lookup(0xC0A88000), "stride %d order %v", stride, order)
		}
	}
}

func TestDefaultRoute(t *testing.T) {
	for _, stride := range strides {
		tr := mustNew(t, stride)
		require.NoError(t, tr.Insert(0, 0, 100))
		require.NoError(t, tr.Insert(0xFFFFFFFF, 0, 200)) // ignored, the first default route is permanent

		assert.Equal(t, 100, tr.Lookup(0))
		assert.Equal(t, 100, tr.Lookup(0xFFFFFFFF))
		assert.Equal(t, 1, tr.NodeCount(), "the default route lives on the root")

		require.NoError(t, tr.Insert(0x0A000000, 8, 1))
		assert.Equal(t, 1, tr.Lookup(0x0A0A0A0A))
		assert.Equal(t, 100, tr.Lookup(0x0B000000))
	}
}

func TestHostRoute(t *testing.T) {
	for _, stride := range strides {
		tr := mustNew(t, stride)
		require.NoError(t, tr.Insert(0xC0A80101, 32, 5))

		assert.Equal(t, 5, tr.Lookup(0xC0A80101), "stride %d", stride)
		assert.Equal(t, NoRoute, tr.Lookup(0xC0A80100), "stride %d", stride)
		assert.Equal(t, NoRoute, tr.Lookup(0xC0A80102), "stride %d", stride)
		assert.Equal(t, 32/stride+1, tr.NodeCount(), "stride %d", stride)
	}
}

func TestNodeCountIsMonotonic(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for _, stride := range strides {
		tr := mustNew(t, stride)
		last := tr.NodeCount()

		for i := 0; i < 500; i++ {
			prefix, length := rnd.Uint32(), rnd.Intn(33)
			require.NoError(t, tr.Insert(prefix, length, i))
			assert.GreaterOrEqual(t, tr.NodeCount(), last)
			last = tr.NodeCount()

			// the same prefix again creates nothing
			require.NoError(t, tr.Insert(prefix, length, i+1))
			assert.Equal(t, last, tr.NodeCount())
		}

		assert.Equal(t, tr.CountNodes(), tr.NodeCount(), "stride %d", stride)
	}
}

func TestLookupDoesNotMutate(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	tr := mustNew(t, 4)
	for i := 0; i < 200; i++ {
		require.NoError(t, tr.Insert(rnd.Uint32(), rnd.Intn(33), i))
	}

	nodes := tr.NodeCount()
	dump := tr.String()
	addrs := make([]uint32, 1000)
	for i := range addrs {
		addrs[i] = rnd.Uint32()
	}

	first := make([]int, len(addrs))
	for i, addr := range addrs {
		first[i] = tr.Lookup(addr)
	}
	for round := 0; round < 3; round++ {
		for i, addr := range addrs {
			require.Equal(t, first[i], tr.Lookup(addr))
		}
	}

	assert.Equal(t, nodes, tr.NodeCount())
	assert.Equal(t, nodes, tr.CountNodes())
	assert.Equal(t, dump, tr.String())
}

func TestNodeSize(t *testing.T) {
	if bits.UintSize != 64 {
		t.Skip("sizes below assume 64-bit pointers")
	}

	assert.Equal(t, uint64(64), NodeSize(1))
	assert.Equal(t, uint64(80), NodeSize(2))
	assert.Equal(t, uint64(176), NodeSize(4))
	assert.Equal(t, uint64(2096), NodeSize(8))
}

func TestEstimateMemory(t *testing.T) {
	for _, stride := range strides {
		tr := mustNew(t, stride)
		require.NoError(t, tr.Insert(0x0A0A0A00, 24, 3))

		assert.Equal(t, uint64(tr.NodeCount())*NodeSize(stride), tr.EstimateMemory())
		assert.Zero(t, tr.EstimateMemory()%uint64(bits.UintSize/8), "estimate is pointer aligned")
	}
}

func TestReset(t *testing.T) {
	tr := mustNew(t, 2)
	require.NoError(t, tr.Insert(0, 0, 1))
	require.NoError(t, tr.Insert(0x0A000000, 8, 2))

	tr.Reset()

	assert.Equal(t, 1, tr.NodeCount())
	assert.Equal(t, NoRoute, tr.Lookup(0x0A000000))

	// a new default route is accepted after a reset
	require.NoError(t, tr.Insert(0, 0, 3))
	assert.Equal(t, 3, tr.Lookup(0x0A000000))
}

func TestPrint(t *testing.T) {
	tr := mustNew(t, 4)
	require.NoError(t, tr.Insert(0x0A000000, 8, 1))

	expected := "Trie structure (stride=4):\n" +
		"root\n" +
		"  0\n" +
		"    0-10 [next_hop=1]\n"
	assert.Equal(t, expected, tr.String())
}

func TestPrintStrideOne(t *testing.T) {
	tr := mustNew(t, 1)
	require.NoError(t, tr.Insert(0, 0, 9))
	require.NoError(t, tr.Insert(0x80000000, 1, 5))
	require.NoError(t, tr.Insert(0x40000000, 2, 6))

	expected := "Trie structure (stride=1):\n" +
		"root [next_hop=9]\n" +
		"  0\n" +
		"    0/1 [next_hop=6]\n" +
		"  1 [next_hop=5]\n"
	assert.Equal(t, expected, tr.String())
}

func TestWalkStops(t *testing.T) {
	tr := mustNew(t, 8)
	require.NoError(t, tr.Insert(0xC0A80000, 17, 7))

	visited := 0
	tr.Walk(func(NodeInfo) bool {
		visited++
		return visited < 5
	})
	assert.Equal(t, 5, visited)
}

func BenchmarkInsert(b *testing.B) {
	for _, stride := range strides {
		b.Run(strideName(stride), func(b *testing.B) {
			rnd := rand.New(rand.NewSource(1))
			tr := mustNew(b, stride)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = tr.Insert(rnd.Uint32(), 8+rnd.Intn(25), i)
			}
		})
	}
}

func BenchmarkLookup(b *testing.B) {
	for _, stride := range strides {
		b.Run(strideName(stride), func(b *testing.B) {
			rnd := rand.New(rand.NewSource(1))
			tr := mustNew(b, stride)
			for i := 0; i < 10000; i++ {
				_ = tr.Insert(rnd.Uint32(), 8+rnd.Intn(17), i)
			}
			addrs := make([]uint32, 1024)
			for i := range addrs {
				addrs[i] = rnd.Uint32()
			}
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				tr.Lookup(addrs[i%len(addrs)])
			}
		})
	}
}

func strideName(stride int) string {
	return "stride-" + strconv.Itoa(stride)
}

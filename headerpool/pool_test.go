package headerpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ordata-labs/chainorg/chainhash"
	"github.com/ordata-labs/chainorg/wire"
)

// fakeIndex is a minimal IndexedLookup backed by a map, standing in for
// FastChain in these unit tests.
type fakeIndex struct {
	heights map[chainhash.Hash]int32
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{heights: make(map[chainhash.Hash]int32)}
}

func (f *fakeIndex) IndexedHeight(hash chainhash.Hash) (int32, bool) {
	h, ok := f.heights[hash]
	return h, ok
}

func newHeader(prev chainhash.Hash, nonce uint32) *wire.Header {
	return &wire.Header{
		Version:    1,
		PrevBlock:  prev,
		Timestamp:  time.Unix(1600000000, int64(nonce)),
		Bits:       0x207fffff,
		Nonce:      nonce,
	}
}

func TestGetBranchEmptyWhenIndexed(t *testing.T) {
	idx := newFakeIndex()
	pool := New(idx)

	h := newHeader(chainhash.Hash{}, 1)
	idx.heights[h.Hash()] = 5

	branch := pool.GetBranch(h)
	require.True(t, branch.Empty())
}

func TestGetBranchEmptyWhenPooledAtKnownHeight(t *testing.T) {
	idx := newFakeIndex()
	pool := New(idx)

	h := newHeader(chainhash.Hash{}, 1)
	pool.Add(h, 5)

	branch := pool.GetBranch(h)
	require.True(t, branch.Empty())
}

func TestGetBranchOrphanWhenParentUnknown(t *testing.T) {
	idx := newFakeIndex()
	pool := New(idx)

	h := newHeader(chainhash.Hash{0xaa}, 1)
	branch := pool.GetBranch(h)
	require.True(t, branch.Empty())
}

func TestGetBranchWalksPooledAncestors(t *testing.T) {
	idx := newFakeIndex()
	pool := New(idx)

	root := newHeader(chainhash.Hash{}, 0)
	idx.heights[root.Hash()] = 10

	h1 := newHeader(root.Hash(), 1)
	pool.Add(h1, UnknownHeight)
	h2 := newHeader(h1.Hash(), 2)
	pool.Add(h2, UnknownHeight)

	h3 := newHeader(h2.Hash(), 3)
	branch := pool.GetBranch(h3)

	require.False(t, branch.Empty())
	require.Equal(t, int32(10), branch.Height())
	require.Equal(t, int32(13), branch.TopHeight())
	require.Len(t, branch.Headers(), 3)
	require.Equal(t, h1.Hash(), branch.Headers()[0].Hash())
	require.Equal(t, h3.Hash(), branch.Top().Hash())
}

func TestRemoveCascadesToDescendants(t *testing.T) {
	idx := newFakeIndex()
	pool := New(idx)

	root := newHeader(chainhash.Hash{}, 0)
	idx.heights[root.Hash()] = 10

	h1 := newHeader(root.Hash(), 1)
	pool.Add(h1, UnknownHeight)
	h2 := newHeader(h1.Hash(), 2)
	pool.Add(h2, UnknownHeight)
	h3 := newHeader(h2.Hash(), 3)
	pool.Add(h3, UnknownHeight)

	pool.Remove(h1.Hash())

	require.False(t, pool.Exists(h1.Hash()))
	require.False(t, pool.Exists(h2.Hash()))
	require.False(t, pool.Exists(h3.Hash()))
	require.True(t, pool.WasRecentlyEvicted(h1.Hash()))
}

func TestAddIsNoOpForDuplicate(t *testing.T) {
	idx := newFakeIndex()
	pool := New(idx)

	h := newHeader(chainhash.Hash{}, 1)
	pool.Add(h, 3)
	pool.Add(h, 99)

	require.Equal(t, 1, pool.Len())
}

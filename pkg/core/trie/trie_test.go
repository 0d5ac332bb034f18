package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/quanta-labs/quanta-go/pkg/core/state"
	"github.com/quanta-labs/quanta-go/pkg/core/storage"
	"github.com/quanta-labs/quanta-go/pkg/util"
)

func newTestTrie(t *testing.T) (*Trie, *storage.MemoryStore) {
	db := storage.NewMemoryStore()
	s, err := NewStore(db, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	return New(s), db
}

func accountKey(b byte) state.Key {
	var h state.AccountHash
	for i := range h {
		h[i] = b
	}
	return state.NewAccountKey(h)
}

func hashKey(b byte) state.Key {
	var h [32]byte
	for i := range h {
		h[i] = b
	}
	return state.NewHashKey(h)
}

func u64Value(v uint64) state.StoredValue {
	return *state.NewCLStoredValue(state.CLValueFromU64(v))
}

func TestEmptyRootDeterministic(t *testing.T) {
	tr, _ := newTestTrie(t)
	first, err := tr.EmptyRoot()
	require.NoError(t, err)
	second, err := tr.EmptyRoot()
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, _ := newTestTrie(t)
	third, err := other.EmptyRoot()
	require.NoError(t, err)
	require.Equal(t, first, third)
}

func TestPutThenGet(t *testing.T) {
	tr, _ := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)

	key := accountKey(0x01)
	root, err = tr.Put(root, key, u64Value(42))
	require.NoError(t, err)

	got, err := tr.Get(root, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, u64Value(42), *got)
}

func TestGetAbsentKey(t *testing.T) {
	tr, _ := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)

	got, err := tr.Get(root, accountKey(0x01))
	require.NoError(t, err)
	require.Nil(t, got)

	root, err = tr.Put(root, accountKey(0x01), u64Value(1))
	require.NoError(t, err)

	// Same tag, different payload: descends into the leaf and misses.
	got, err = tr.Get(root, accountKey(0x02))
	require.NoError(t, err)
	require.Nil(t, got)

	// Different tag: misses at the root branch.
	got, err = tr.Get(root, hashKey(0x01))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestKeysDivergingAtFirstByte(t *testing.T) {
	tr, _ := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)

	// Account and hash keys differ in the leading tag byte, so the root
	// branch holds both leaves directly.
	root, err = tr.Put(root, accountKey(0x01), u64Value(1))
	require.NoError(t, err)
	root, err = tr.Put(root, hashKey(0x01), u64Value(2))
	require.NoError(t, err)

	n, err := tr.Store().Get(root)
	require.NoError(t, err)
	branch, ok := n.(*BranchNode)
	require.True(t, ok)
	require.Equal(t, []int{0x00, 0x01}, branch.Pointers.ChildIndexes())
	for _, idx := range branch.Pointers.ChildIndexes() {
		require.Equal(t, LeafPointerT, branch.Pointers[idx].Type)
	}

	v, err := tr.Get(root, accountKey(0x01))
	require.NoError(t, err)
	require.Equal(t, u64Value(1), *v)
	v, err = tr.Get(root, hashKey(0x01))
	require.NoError(t, err)
	require.Equal(t, u64Value(2), *v)
}

func TestLeafSplitCreatesExtension(t *testing.T) {
	tr, _ := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)

	// Keys share the tag byte and 31 hash bytes before diverging.
	var h1, h2 [32]byte
	for i := range h1 {
		h1[i] = 0x0A
		h2[i] = 0x0A
	}
	h2[31] = 0x0B
	k1, k2 := state.NewHashKey(h1), state.NewHashKey(h2)

	root, err = tr.Put(root, k1, u64Value(1))
	require.NoError(t, err)
	root, err = tr.Put(root, k2, u64Value(2))
	require.NoError(t, err)

	v, err := tr.Get(root, k1)
	require.NoError(t, err)
	require.Equal(t, u64Value(1), *v)
	v, err = tr.Get(root, k2)
	require.NoError(t, err)
	require.Equal(t, u64Value(2), *v)

	// Below the root branch the shared 31 hash bytes compress into one
	// extension over the branch where the keys diverge.
	n, err := tr.Store().Get(root)
	require.NoError(t, err)
	rootBranch := n.(*BranchNode)
	require.Equal(t, []int{0x01}, rootBranch.Pointers.ChildIndexes())

	n, err = tr.Store().Get(rootBranch.Pointers[0x01].Digest)
	require.NoError(t, err)
	ext, ok := n.(*ExtensionNode)
	require.True(t, ok)
	require.Len(t, ext.Affix, 31)
	require.Equal(t, NodePointerT, ext.Next.Type)

	n, err = tr.Store().Get(ext.Next.Digest)
	require.NoError(t, err)
	split := n.(*BranchNode)
	require.Equal(t, []int{0x0A, 0x0B}, split.Pointers.ChildIndexes())
}

func TestExtensionSplit(t *testing.T) {
	tr, _ := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)

	var h1, h2, h3 [32]byte
	for i := range h1 {
		h1[i], h2[i], h3[i] = 0x10, 0x10, 0x10
	}
	h2[31] = 0x11 // splits a leaf deep down
	h3[5] = 0x12  // later splits the long extension near its start

	keys := []state.Key{state.NewHashKey(h1), state.NewHashKey(h2), state.NewHashKey(h3)}
	for i, k := range keys {
		root, err = tr.Put(root, k, u64Value(uint64(i)))
		require.NoError(t, err)
	}
	for i, k := range keys {
		v, err := tr.Get(root, k)
		require.NoError(t, err)
		require.NotNil(t, v, "key %d", i)
		require.Equal(t, u64Value(uint64(i)), *v)
	}

	checkNodeInvariants(t, tr, root)
}

// checkNodeInvariants walks every node reachable from root checking that
// extensions carry non-empty affixes and never point at leaves.
func checkNodeInvariants(t *testing.T, tr *Trie, root util.Digest) {
	var walk func(d util.Digest)
	walk = func(d util.Digest) {
		n, err := tr.Store().Get(d)
		require.NoError(t, err)
		switch cur := n.(type) {
		case *ExtensionNode:
			require.NotEmpty(t, cur.Affix)
			require.Equal(t, NodePointerT, cur.Next.Type)
			walk(cur.Next.Digest)
		case *BranchNode:
			for _, idx := range cur.Pointers.ChildIndexes() {
				p := cur.Pointers[idx]
				child, err := tr.Store().Get(p.Digest)
				require.NoError(t, err)
				if p.Type == LeafPointerT {
					require.IsType(t, &LeafNode{}, child)
				} else {
					require.NotEqual(t, LeafNodeT, child.Type())
				}
				walk(p.Digest)
			}
		}
	}
	walk(root)
}

func TestPutKeepsOldVersionsReadable(t *testing.T) {
	tr, _ := newTestTrie(t)
	root0, err := tr.EmptyRoot()
	require.NoError(t, err)

	key := accountKey(0x01)
	root1, err := tr.Put(root0, key, u64Value(1))
	require.NoError(t, err)
	root2, err := tr.Put(root1, key, u64Value(2))
	require.NoError(t, err)
	require.NotEqual(t, root1, root2)

	// The first version still answers with its own value and the empty
	// version still reports the key absent.
	v, err := tr.Get(root2, key)
	require.NoError(t, err)
	require.Equal(t, u64Value(2), *v)
	v, err = tr.Get(root1, key)
	require.NoError(t, err)
	require.Equal(t, u64Value(1), *v)
	v, err = tr.Get(root0, key)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestPutUnrelatedKeysUndisturbed(t *testing.T) {
	tr, _ := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)

	stable := hashKey(0x55)
	root, err = tr.Put(root, stable, u64Value(100))
	require.NoError(t, err)

	for b := byte(0); b < 20; b++ {
		root, err = tr.Put(root, accountKey(b), u64Value(uint64(b)))
		require.NoError(t, err)
	}
	for b := byte(0); b < 20; b++ {
		v, err := tr.Get(root, accountKey(b))
		require.NoError(t, err)
		require.Equal(t, u64Value(uint64(b)), *v)
	}
	v, err := tr.Get(root, stable)
	require.NoError(t, err)
	require.Equal(t, u64Value(100), *v)
}

func TestWalkOrder(t *testing.T) {
	tr, _ := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)

	inserted := []state.Key{hashKey(0x03), accountKey(0x02), accountKey(0x01), hashKey(0x01)}
	for i, k := range inserted {
		root, err = tr.Put(root, k, u64Value(uint64(i)))
		require.NoError(t, err)
	}

	var seen []state.Key
	require.NoError(t, tr.Walk(root, func(k state.Key, v state.StoredValue) error {
		seen = append(seen, k)
		return nil
	}))
	expected := []state.Key{accountKey(0x01), accountKey(0x02), hashKey(0x01), hashKey(0x03)}
	require.Equal(t, expected, seen)
}

func TestPutIdempotent(t *testing.T) {
	tr, db := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)

	root1, err := tr.Put(root, accountKey(0x01), u64Value(7))
	require.NoError(t, err)
	stored := db.Len()

	root2, err := tr.Put(root, accountKey(0x01), u64Value(7))
	require.NoError(t, err)
	require.Equal(t, root1, root2)
	require.Equal(t, stored, db.Len())
}

func TestGetCorruptedNode(t *testing.T) {
	tr, db := newTestTrie(t)
	root, err := tr.EmptyRoot()
	require.NoError(t, err)
	root, err = tr.Put(root, accountKey(0x01), u64Value(1))
	require.NoError(t, err)

	// Overwrite the root node bytes with garbage and force a re-read.
	require.NoError(t, db.Put(storage.AppendPrefix(storage.DataTrie, root.Bytes()), []byte{0xFF, 0xFF}))
	s, err := NewStore(db, 0, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = New(s).Get(root, accountKey(0x01))
	var corErr *CorruptionError
	require.ErrorAs(t, err, &corErr)
	require.Equal(t, root, corErr.Digest)
}

func TestGetMissingRoot(t *testing.T) {
	tr, _ := newTestTrie(t)
	_, err := tr.Get(util.Digest{0x01}, accountKey(0x01))
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
}

package trie

import (
	"bytes"
	"errors"

	"github.com/quanta-labs/quanta-go/pkg/core/state"
	"github.com/quanta-labs/quanta-go/pkg/util"
)

// ErrPathExhausted is returned when a key path runs out before reaching a
// leaf. Canonical key bytes start with a tag and have a fixed length per
// tag, so no key path is a prefix of another; hitting this means the trie
// under the given root was not built from canonical keys.
var ErrPathExhausted = errors.New("key path exhausted inside trie")

// Trie reads and writes key-value pairs of global state through a node
// store. It holds no root itself: every operation takes the root digest
// to work from and Put returns the digest of the new version, leaving all
// previous versions intact.
type Trie struct {
	store *Store
}

// New returns a Trie over the given node store.
func New(store *Store) *Trie {
	return &Trie{store: store}
}

// Store returns the underlying node store.
func (t *Trie) Store() *Store {
	return t.store
}

// EmptyRoot stores the empty trie and returns its root digest. The digest
// only depends on the node encoding, so every call returns the same value.
func (t *Trie) EmptyRoot() (util.Digest, error) {
	return t.store.Put(NewBranchNode())
}

// Get returns the value stored under key in the trie version identified
// by root. An absent key yields (nil, nil); errors mean the lookup itself
// failed.
func (t *Trie) Get(root util.Digest, key state.Key) (*state.StoredValue, error) {
	path := key.Bytes()
	n, err := t.store.Get(root)
	if err != nil {
		return nil, err
	}
	for {
		switch cur := n.(type) {
		case *LeafNode:
			if cur.Key.Equals(key) {
				return &cur.Value, nil
			}
			return nil, nil
		case *ExtensionNode:
			if !bytes.HasPrefix(path, cur.Affix) {
				return nil, nil
			}
			path = path[len(cur.Affix):]
			if n, err = t.store.Get(cur.Next.Digest); err != nil {
				return nil, err
			}
		case *BranchNode:
			if len(path) == 0 {
				return nil, ErrPathExhausted
			}
			p := cur.Pointers[path[0]]
			if p == nil {
				return nil, nil
			}
			path = path[1:]
			if n, err = t.store.Get(p.Digest); err != nil {
				return nil, err
			}
		}
	}
}

// Put writes value under key into the trie version identified by root and
// returns the root digest of the resulting version. The version under
// root is never modified.
func (t *Trie) Put(root util.Digest, key state.Key, value state.StoredValue) (util.Digest, error) {
	n, err := t.store.Get(root)
	if err != nil {
		return util.Digest{}, err
	}
	leaf := NewLeafNode(key, value)
	p, err := t.insert(n, key.Bytes(), leaf)
	if err != nil {
		return util.Digest{}, err
	}
	return p.Digest, nil
}

// Walk calls f for every key-value pair in the trie version identified by
// root, in ascending canonical key order. Traversal stops at the first
// error from f.
func (t *Trie) Walk(root util.Digest, f func(key state.Key, value state.StoredValue) error) error {
	n, err := t.store.Get(root)
	if err != nil {
		return err
	}
	switch cur := n.(type) {
	case *LeafNode:
		return f(cur.Key, cur.Value)
	case *ExtensionNode:
		return t.Walk(cur.Next.Digest, f)
	case *BranchNode:
		for _, idx := range cur.Pointers.ChildIndexes() {
			if err := t.Walk(cur.Pointers[idx].Digest, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// insert adds leaf at path below n and returns a pointer to the rebuilt
// node. path is the suffix of the leaf's key bytes not yet consumed by
// the descent to n.
func (t *Trie) insert(n Node, path []byte, leaf *LeafNode) (Pointer, error) {
	switch cur := n.(type) {
	case *LeafNode:
		return t.insertAtLeaf(cur, path, leaf)
	case *ExtensionNode:
		return t.insertAtExtension(cur, path, leaf)
	case *BranchNode:
		return t.insertAtBranch(cur, path, leaf)
	default:
		return Pointer{}, ErrPathExhausted
	}
}

// insertAtLeaf replaces the value when the keys match and otherwise
// splits: both leaves land under a fresh branch at their first diverging
// byte, reached through an extension if they share a run before it.
func (t *Trie) insertAtLeaf(old *LeafNode, path []byte, leaf *LeafNode) (Pointer, error) {
	if old.Key.Equals(leaf.Key) {
		return t.store.putPointer(leaf)
	}
	consumed := len(leaf.Key.Bytes()) - len(path)
	oldPath := old.Key.Bytes()[consumed:]
	shared := commonPrefix(path, oldPath)
	if shared == len(path) || shared == len(oldPath) {
		return Pointer{}, ErrPathExhausted
	}
	newPtr, err := t.store.putPointer(leaf)
	if err != nil {
		return Pointer{}, err
	}
	oldPtr, err := t.store.putPointer(old)
	if err != nil {
		return Pointer{}, err
	}
	branch := NewBranchNode()
	branch.Pointers[path[shared]] = &newPtr
	branch.Pointers[oldPath[shared]] = &oldPtr
	return t.putWithAffix(branch, path[:shared])
}

// insertAtExtension descends through the extension when the path covers
// its whole affix and otherwise splits the affix at the divergence point.
func (t *Trie) insertAtExtension(ext *ExtensionNode, path []byte, leaf *LeafNode) (Pointer, error) {
	shared := commonPrefix(path, ext.Affix)
	if shared == len(ext.Affix) {
		child, err := t.store.Get(ext.Next.Digest)
		if err != nil {
			return Pointer{}, err
		}
		childPtr, err := t.insert(child, path[shared:], leaf)
		if err != nil {
			return Pointer{}, err
		}
		return t.store.putPointer(NewExtensionNode(ext.Affix, childPtr))
	}
	if shared == len(path) {
		return Pointer{}, ErrPathExhausted
	}

	// The remainder of the old affix either keeps pointing at the old
	// subtree through a shorter extension or, when a single byte is
	// left, collapses into the branch slot itself.
	oldRest := ext.Affix[shared:]
	oldPtr := ext.Next
	if len(oldRest) > 1 {
		var err error
		oldPtr, err = t.store.putPointer(NewExtensionNode(oldRest[1:], ext.Next))
		if err != nil {
			return Pointer{}, err
		}
	}
	newPtr, err := t.store.putPointer(leaf)
	if err != nil {
		return Pointer{}, err
	}
	branch := NewBranchNode()
	branch.Pointers[oldRest[0]] = &oldPtr
	branch.Pointers[path[shared]] = &newPtr
	return t.putWithAffix(branch, path[:shared])
}

func (t *Trie) insertAtBranch(b *BranchNode, path []byte, leaf *LeafNode) (Pointer, error) {
	if len(path) == 0 {
		return Pointer{}, ErrPathExhausted
	}
	idx := path[0]
	slot := b.Pointers[idx]
	if slot == nil {
		leafPtr, err := t.store.putPointer(leaf)
		if err != nil {
			return Pointer{}, err
		}
		return t.store.putPointer(b.With(idx, leafPtr))
	}
	child, err := t.store.Get(slot.Digest)
	if err != nil {
		return Pointer{}, err
	}
	childPtr, err := t.insert(child, path[1:], leaf)
	if err != nil {
		return Pointer{}, err
	}
	return t.store.putPointer(b.With(idx, childPtr))
}

// putWithAffix stores the branch, behind an extension carrying affix when
// it is non-empty.
func (t *Trie) putWithAffix(b *BranchNode, affix []byte) (Pointer, error) {
	p, err := t.store.putPointer(b)
	if err != nil || len(affix) == 0 {
		return p, err
	}
	return t.store.putPointer(NewExtensionNode(affix, p))
}

func commonPrefix(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// Package trie implements the Merkle trie holding global state.
//
// The trie is a 256-way radix tree over the canonical bytes of state keys.
// Nodes are content-addressed: each one is stored under the Blake2b-256
// digest of its serialized form and is never mutated, so writes produce a
// new root digest while every previous root stays readable.
package trie

import (
	"github.com/quanta-labs/quanta-go/pkg/core/state"
	"github.com/quanta-labs/quanta-go/pkg/crypto/hash"
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
	"github.com/quanta-labs/quanta-go/pkg/util"
)

// NodeType represents the variant of a trie node.
type NodeType byte

// Node type tags. Wire format, do not reorder.
const (
	LeafNodeT      NodeType = 0x00
	ExtensionNodeT NodeType = 0x01
	BranchNodeT    NodeType = 0x02
)

// Node is a trie node of any variant. Nodes serialize as a tag byte
// followed by the variant payload; the digest of those bytes is the node's
// identity in the store.
type Node interface {
	bytesrepr.Serializable
	Type() NodeType
}

// LeafNode holds a stored value together with the full key it lives
// under. Keeping the whole key in the leaf means node splits never have
// to re-derive partial paths.
type LeafNode struct {
	Key   state.Key
	Value state.StoredValue
}

// NewLeafNode returns a leaf holding value under key.
func NewLeafNode(key state.Key, value state.StoredValue) *LeafNode {
	return &LeafNode{Key: key, Value: value}
}

// Type implements Node.
func (n *LeafNode) Type() NodeType { return LeafNodeT }

// WriteBytes implements bytesrepr.Serializable.
func (n *LeafNode) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteU8(sink, byte(LeafNodeT))
	sink, err := n.Key.WriteBytes(sink)
	if err != nil {
		return nil, err
	}
	return n.Value.WriteBytes(sink)
}

// SerializedLength implements bytesrepr.Serializable.
func (n *LeafNode) SerializedLength() int {
	return bytesrepr.U8SerializedLength + n.Key.SerializedLength() + n.Value.SerializedLength()
}

// ExtensionNode compresses a run of single-child branches: it carries the
// shared path segment (affix) and a pointer to the node below it. An
// extension's affix is never empty and its pointer never targets a leaf.
type ExtensionNode struct {
	Affix []byte
	Next  Pointer
}

// NewExtensionNode returns an extension with the given affix over next.
func NewExtensionNode(affix []byte, next Pointer) *ExtensionNode {
	return &ExtensionNode{Affix: affix, Next: next}
}

// Type implements Node.
func (n *ExtensionNode) Type() NodeType { return ExtensionNodeT }

// WriteBytes implements bytesrepr.Serializable.
func (n *ExtensionNode) WriteBytes(sink []byte) ([]byte, error) {
	if len(n.Affix) == 0 {
		return nil, bytesrepr.ErrFormatting
	}
	sink = bytesrepr.WriteU8(sink, byte(ExtensionNodeT))
	sink = bytesrepr.WriteBytes(sink, n.Affix)
	return n.Next.WriteBytes(sink)
}

// SerializedLength implements bytesrepr.Serializable.
func (n *ExtensionNode) SerializedLength() int {
	return bytesrepr.U8SerializedLength + bytesrepr.BytesSize(n.Affix) + n.Next.SerializedLength()
}

// BranchNode fans the trie out on the next path byte.
type BranchNode struct {
	Pointers PointerBlock
}

// NewBranchNode returns a branch with no children.
func NewBranchNode() *BranchNode {
	return &BranchNode{}
}

// Type implements Node.
func (n *BranchNode) Type() NodeType { return BranchNodeT }

// WriteBytes implements bytesrepr.Serializable.
func (n *BranchNode) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteU8(sink, byte(BranchNodeT))
	return n.Pointers.WriteBytes(sink)
}

// SerializedLength implements bytesrepr.Serializable.
func (n *BranchNode) SerializedLength() int {
	return bytesrepr.U8SerializedLength + n.Pointers.SerializedLength()
}

// With returns a copy of the branch with the slot at idx set to p. The
// receiver is left untouched, stored nodes being immutable.
func (n *BranchNode) With(idx byte, p Pointer) *BranchNode {
	out := &BranchNode{Pointers: n.Pointers}
	out.Pointers[idx] = &p
	return out
}

// DecodeNode decodes a serialized trie node, requiring full consumption
// of data.
func DecodeNode(data []byte) (Node, error) {
	tag, rem, err := bytesrepr.ReadU8(data)
	if err != nil {
		return nil, err
	}
	var n Node
	switch NodeType(tag) {
	case LeafNodeT:
		leaf := new(LeafNode)
		if rem, err = leaf.Key.FromBytes(rem); err != nil {
			return nil, err
		}
		if rem, err = leaf.Value.FromBytes(rem); err != nil {
			return nil, err
		}
		n = leaf
	case ExtensionNodeT:
		ext := new(ExtensionNode)
		if ext.Affix, rem, err = bytesrepr.ReadBytes(rem); err != nil {
			return nil, err
		}
		if len(ext.Affix) == 0 {
			return nil, bytesrepr.ErrFormatting
		}
		if rem, err = ext.Next.FromBytes(rem); err != nil {
			return nil, err
		}
		n = ext
	case BranchNodeT:
		branch := new(BranchNode)
		if rem, err = branch.Pointers.FromBytes(rem); err != nil {
			return nil, err
		}
		n = branch
	default:
		return nil, bytesrepr.ErrFormatting
	}
	if len(rem) != 0 {
		return nil, bytesrepr.ErrLeftOverBytes
	}
	return n, nil
}

// NodeDigest returns the digest addressing n in the store.
func NodeDigest(n Node) (util.Digest, error) {
	data, err := bytesrepr.Marshal(n)
	if err != nil {
		return util.Digest{}, err
	}
	return hash.Blake2b256(data), nil
}

// pointerTo returns a pointer of the right type for n's variant.
func pointerTo(n Node, d util.Digest) Pointer {
	if n.Type() == LeafNodeT {
		return Pointer{Type: LeafPointerT, Digest: d}
	}
	return Pointer{Type: NodePointerT, Digest: d}
}

package trie

import (
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
	"github.com/quanta-labs/quanta-go/pkg/util"
)

// PointerType tells whether a pointer's target is a leaf or an inner node.
type PointerType byte

// Pointer type tags. Wire format, do not reorder.
const (
	LeafPointerT PointerType = 0x00
	NodePointerT PointerType = 0x01
)

// PointerSerializedLength is the wire size of a Pointer: a tag byte plus
// the raw digest.
const PointerSerializedLength = 1 + util.DigestSize

// Pointer is a typed reference to another trie node by the digest of its
// serialized form.
type Pointer struct {
	Type   PointerType
	Digest util.Digest
}

// WriteBytes implements bytesrepr.Serializable.
func (p Pointer) WriteBytes(sink []byte) ([]byte, error) {
	if p.Type > NodePointerT {
		return nil, bytesrepr.ErrFormatting
	}
	sink = bytesrepr.WriteU8(sink, byte(p.Type))
	return bytesrepr.WriteArray(sink, p.Digest[:]), nil
}

// SerializedLength implements bytesrepr.Serializable.
func (p Pointer) SerializedLength() int {
	return PointerSerializedLength
}

// FromBytes implements bytesrepr.Deserializable.
func (p *Pointer) FromBytes(data []byte) ([]byte, error) {
	tag, rem, err := bytesrepr.ReadU8(data)
	if err != nil {
		return nil, err
	}
	p.Type = PointerType(tag)
	if p.Type > NodePointerT {
		return nil, bytesrepr.ErrFormatting
	}
	return bytesrepr.ReadArray(rem, p.Digest[:])
}

// RadixSize is the branching factor of the trie: one slot per possible
// value of a path byte.
const RadixSize = 256

// PointerBlock is the child table of a branch node: one optional pointer
// per possible next path byte. Slots serialize in index order as
// option-tagged pointers, so empty slots cost one byte each.
type PointerBlock [RadixSize]*Pointer

// WriteBytes implements bytesrepr.Serializable.
func (b PointerBlock) WriteBytes(sink []byte) ([]byte, error) {
	var err error
	for i := range b {
		if sink, err = bytesrepr.WriteOption(sink, b[i]); err != nil {
			return nil, err
		}
	}
	return sink, nil
}

// SerializedLength implements bytesrepr.Serializable.
func (b PointerBlock) SerializedLength() int {
	size := 0
	for i := range b {
		size += bytesrepr.OptionSize(b[i])
	}
	return size
}

// FromBytes implements bytesrepr.Deserializable.
func (b *PointerBlock) FromBytes(data []byte) ([]byte, error) {
	var err error
	for i := range b {
		if b[i], data, err = bytesrepr.ReadOption[Pointer](data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// ChildCount returns the number of occupied slots.
func (b *PointerBlock) ChildCount() int {
	n := 0
	for i := range b {
		if b[i] != nil {
			n++
		}
	}
	return n
}

// ChildIndexes returns the occupied slot indexes in ascending order.
func (b *PointerBlock) ChildIndexes() []int {
	idx := make([]int, 0, b.ChildCount())
	for i := range b {
		if b[i] != nil {
			idx = append(idx, i)
		}
	}
	return idx
}

package state

import (
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

// CLTypeTag identifies a CLType variant on the wire.
type CLTypeTag byte

// CLType tags. Wire format, do not reorder.
const (
	CLBool CLTypeTag = iota
	CLI32
	CLI64
	CLU8
	CLU32
	CLU64
	CLU128
	CLU256
	CLU512
	CLUnit
	CLString
	CLKey
	CLURef
	CLOption
	CLList
	CLByteArray
	CLResult
	CLMap
	CLTuple1
	CLTuple2
	CLTuple3
	CLAny
)

// maxCLTypeDepth bounds type-tree recursion when decoding. Legitimate
// types are shallow; anything deeper is hostile input.
const maxCLTypeDepth = 50

// CLType describes the logical type of a CLValue's payload. Composite
// variants reference inner types: Inner holds the Option/List payload,
// Result ok branch, Map key or first tuple element; Inner2 holds the
// Result err branch, Map value or second tuple element; Inner3 the third
// tuple element. Size is the ByteArray length.
type CLType struct {
	Tag    CLTypeTag
	Inner  *CLType
	Inner2 *CLType
	Inner3 *CLType
	Size   uint32
}

// SimpleCLType returns a CLType with no inner types.
func SimpleCLType(tag CLTypeTag) CLType {
	return CLType{Tag: tag}
}

// OptionCLType returns the type of an optional inner value.
func OptionCLType(inner CLType) CLType {
	return CLType{Tag: CLOption, Inner: &inner}
}

// ListCLType returns the type of a list of inner values.
func ListCLType(inner CLType) CLType {
	return CLType{Tag: CLList, Inner: &inner}
}

// ByteArrayCLType returns the type of a fixed-size byte array.
func ByteArrayCLType(size uint32) CLType {
	return CLType{Tag: CLByteArray, Size: size}
}

// ResultCLType returns the type of an ok-or-error union.
func ResultCLType(ok, errType CLType) CLType {
	return CLType{Tag: CLResult, Inner: &ok, Inner2: &errType}
}

// MapCLType returns the type of a key-value mapping.
func MapCLType(key, value CLType) CLType {
	return CLType{Tag: CLMap, Inner: &key, Inner2: &value}
}

func (t CLType) innerCount() int {
	switch t.Tag {
	case CLOption, CLList, CLTuple1:
		return 1
	case CLResult, CLMap, CLTuple2:
		return 2
	case CLTuple3:
		return 3
	default:
		return 0
	}
}

// WriteBytes implements bytesrepr.Serializable.
func (t CLType) WriteBytes(sink []byte) ([]byte, error) {
	if t.Tag > CLAny {
		return nil, bytesrepr.ErrFormatting
	}
	sink = bytesrepr.WriteU8(sink, byte(t.Tag))
	if t.Tag == CLByteArray {
		return bytesrepr.WriteU32(sink, t.Size), nil
	}
	var err error
	for i, inner := 0, []*CLType{t.Inner, t.Inner2, t.Inner3}; i < t.innerCount(); i++ {
		if inner[i] == nil {
			return nil, bytesrepr.ErrFormatting
		}
		if sink, err = inner[i].WriteBytes(sink); err != nil {
			return nil, err
		}
	}
	return sink, nil
}

// SerializedLength implements bytesrepr.Serializable.
func (t CLType) SerializedLength() int {
	size := bytesrepr.U8SerializedLength
	if t.Tag == CLByteArray {
		return size + bytesrepr.U32SerializedLength
	}
	for i, inner := 0, []*CLType{t.Inner, t.Inner2, t.Inner3}; i < t.innerCount(); i++ {
		if inner[i] != nil {
			size += inner[i].SerializedLength()
		}
	}
	return size
}

// FromBytes implements bytesrepr.Deserializable.
func (t *CLType) FromBytes(data []byte) ([]byte, error) {
	return t.fromBytes(data, 0)
}

func (t *CLType) fromBytes(data []byte, depth int) ([]byte, error) {
	if depth > maxCLTypeDepth {
		return nil, bytesrepr.ErrFormatting
	}
	tag, rem, err := bytesrepr.ReadU8(data)
	if err != nil {
		return nil, err
	}
	*t = CLType{Tag: CLTypeTag(tag)}
	if t.Tag > CLAny {
		return nil, bytesrepr.ErrFormatting
	}
	if t.Tag == CLByteArray {
		t.Size, rem, err = bytesrepr.ReadU32(rem)
		return rem, err
	}
	inner := []**CLType{&t.Inner, &t.Inner2, &t.Inner3}
	for i := 0; i < t.innerCount(); i++ {
		next := new(CLType)
		if rem, err = next.fromBytes(rem, depth+1); err != nil {
			return nil, err
		}
		*inner[i] = next
	}
	return rem, nil
}

package bytesrepr

import "sort"

// Tags used by the Option encoding.
const (
	OptionNoneTag = 0
	OptionSomeTag = 1
)

// Tags used by the Result encoding.
const (
	ResultErrTag = 0
	ResultOkTag  = 1
)

// WriteSlice appends a u32 count followed by every element in order.
func WriteSlice[T Serializable](sink []byte, items []T) ([]byte, error) {
	sink = WriteU32(sink, uint32(len(items)))
	var err error
	for i := range items {
		if sink, err = items[i].WriteBytes(sink); err != nil {
			return nil, err
		}
	}
	return sink, nil
}

// ReadSlice reads a u32-prefixed sequence of T.
func ReadSlice[T any, PT DeserializablePtr[T]](data []byte) ([]T, []byte, error) {
	count, rem, err := ReadU32(data)
	if err != nil {
		return nil, nil, err
	}
	if count > maxSequenceLength {
		return nil, nil, ErrOutOfMemory
	}
	// Capacity is capped: a hostile count must not drive the allocation,
	// decoding the elements will hit ErrEarlyEndOfStream first.
	capHint := count
	if capHint > 1024 {
		capHint = 1024
	}
	result := make([]T, 0, capHint)
	for i := uint32(0); i < count; i++ {
		var item T
		if rem, err = PT(&item).FromBytes(rem); err != nil {
			return nil, nil, err
		}
		result = append(result, item)
	}
	return result, rem, nil
}

// SliceSize returns the serialized length of a u32-prefixed sequence.
func SliceSize[T Serializable](items []T) int {
	size := U32SerializedLength
	for i := range items {
		size += items[i].SerializedLength()
	}
	return size
}

// WriteOption appends a 1-byte tag followed by the payload if v is non-nil.
func WriteOption[T Serializable](sink []byte, v *T) ([]byte, error) {
	if v == nil {
		return append(sink, OptionNoneTag), nil
	}
	return (*v).WriteBytes(append(sink, OptionSomeTag))
}

// ReadOption reads an optional T, returning nil for the none case.
func ReadOption[T any, PT DeserializablePtr[T]](data []byte) (*T, []byte, error) {
	tag, rem, err := ReadU8(data)
	if err != nil {
		return nil, nil, err
	}
	switch tag {
	case OptionNoneTag:
		return nil, rem, nil
	case OptionSomeTag:
		v := new(T)
		if rem, err = PT(v).FromBytes(rem); err != nil {
			return nil, nil, err
		}
		return v, rem, nil
	default:
		return nil, nil, ErrFormatting
	}
}

// OptionSize returns the serialized length of an optional value.
func OptionSize[T Serializable](v *T) int {
	if v == nil {
		return U8SerializedLength
	}
	return U8SerializedLength + (*v).SerializedLength()
}

// Result mirrors an ok-or-error union on the wire: a 1-byte tag followed
// by whichever payload the tag selects.
type Result[T any, E any] struct {
	OK    bool
	Value T
	Error E
}

// WriteResult appends the tagged encoding of r.
func WriteResult[T Serializable, E Serializable](sink []byte, r Result[T, E]) ([]byte, error) {
	if r.OK {
		return r.Value.WriteBytes(append(sink, ResultOkTag))
	}
	return r.Error.WriteBytes(append(sink, ResultErrTag))
}

// ReadResult reads a tagged ok-or-error union.
func ReadResult[T any, E any, PT DeserializablePtr[T], PE DeserializablePtr[E]](data []byte) (Result[T, E], []byte, error) {
	var r Result[T, E]
	tag, rem, err := ReadU8(data)
	if err != nil {
		return r, nil, err
	}
	switch tag {
	case ResultOkTag:
		r.OK = true
		rem, err = PT(&r.Value).FromBytes(rem)
	case ResultErrTag:
		rem, err = PE(&r.Error).FromBytes(rem)
	default:
		return r, nil, ErrFormatting
	}
	if err != nil {
		return r, nil, err
	}
	return r, rem, nil
}

// ResultSize returns the serialized length of an ok-or-error union.
func ResultSize[T Serializable, E Serializable](r Result[T, E]) int {
	if r.OK {
		return U8SerializedLength + r.Value.SerializedLength()
	}
	return U8SerializedLength + r.Error.SerializedLength()
}

// WriteStringMap appends a u32 count followed by key-value pairs in
// ascending key order. Iteration order is fixed by the keys themselves,
// never by Go map ordering, so the encoding is canonical.
func WriteStringMap[V Serializable](sink []byte, m map[string]V) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sink = WriteU32(sink, uint32(len(keys)))
	var err error
	for _, k := range keys {
		sink = WriteString(sink, k)
		if sink, err = m[k].WriteBytes(sink); err != nil {
			return nil, err
		}
	}
	return sink, nil
}

// ReadStringMap reads a u32-prefixed sequence of key-value pairs.
func ReadStringMap[V any, PV DeserializablePtr[V]](data []byte) (map[string]V, []byte, error) {
	count, rem, err := ReadU32(data)
	if err != nil {
		return nil, nil, err
	}
	if count > maxSequenceLength {
		return nil, nil, ErrOutOfMemory
	}
	result := make(map[string]V)
	for i := uint32(0); i < count; i++ {
		var k string
		if k, rem, err = ReadString(rem); err != nil {
			return nil, nil, err
		}
		var v V
		if rem, err = PV(&v).FromBytes(rem); err != nil {
			return nil, nil, err
		}
		result[k] = v
	}
	return result, rem, nil
}

// StringMapSize returns the serialized length of a string-keyed map.
func StringMapSize[V Serializable](m map[string]V) int {
	size := U32SerializedLength
	for k, v := range m {
		size += StringSize(k) + v.SerializedLength()
	}
	return size
}

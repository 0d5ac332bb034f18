/*
Package bytesrepr implements the canonical binary representation shared by
every value persisted to or addressed in global state.

The encoding is deterministic and unambiguous: integers are little-endian
and fixed-width, sequences and strings carry a 4-byte unsigned count,
options and results carry a 1-byte tag, fixed-size byte arrays are written
raw with no prefix. Aggregate types serialize their fields in declaration
order with no padding. Any two conforming encoders must produce
byte-identical output for the same logical value, since content addresses
are computed over these bytes.

Decoding consumes a prefix of the input and returns the remainder, so
composite decoders chain naturally. Malformed input is reported via the
typed sentinel errors below, never via panic: the bytes may come from an
untrusted peer.
*/
package bytesrepr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Deserialization and serialization errors. These are deliberately
// coarse-grained: the caller only ever needs to distinguish truncated
// input, garbage input and hostile length prefixes.
var (
	// ErrEarlyEndOfStream is returned when the input ends before the
	// declared value is complete.
	ErrEarlyEndOfStream = errors.New("early end of stream")
	// ErrFormatting is returned on an invalid tag, discriminant or
	// otherwise malformed payload.
	ErrFormatting = errors.New("formatting")
	// ErrLeftOverBytes is returned by Unmarshal when input bytes remain
	// after the value has been fully decoded.
	ErrLeftOverBytes = errors.New("left-over bytes")
	// ErrOutOfMemory is returned when a length prefix implies an
	// allocation that cannot be satisfied.
	ErrOutOfMemory = errors.New("out of memory")
)

// Serialized lengths of the fixed-width primitives.
const (
	BoolSerializedLength = 1
	U8SerializedLength   = 1
	U16SerializedLength  = 2
	U32SerializedLength  = 4
	U64SerializedLength  = 8
	I32SerializedLength  = 4
	I64SerializedLength  = 8
)

// maxSequenceLength bounds decoded sequence counts. Anything above it can
// not be backed by a real buffer (counts are 32-bit on the wire).
const maxSequenceLength = math.MaxInt32

// Serializable is a value with a canonical binary form.
type Serializable interface {
	// WriteBytes appends the canonical encoding of the value to sink and
	// returns the extended slice.
	WriteBytes(sink []byte) ([]byte, error)
	// SerializedLength returns the exact number of bytes WriteBytes
	// appends. Marshal checks this equality on every call.
	SerializedLength() int
}

// Deserializable is a value which can be decoded from a byte prefix.
type Deserializable interface {
	// FromBytes decodes the value from a prefix of data and returns the
	// unconsumed remainder.
	FromBytes(data []byte) ([]byte, error)
}

// DeserializablePtr is a constraint for a pointer to a deserializable T.
type DeserializablePtr[T any] interface {
	*T
	Deserializable
}

// Marshal serializes v into a freshly allocated buffer. The buffer length
// always equals v.SerializedLength().
func Marshal(v Serializable) ([]byte, error) {
	sink := make([]byte, 0, v.SerializedLength())
	sink, err := v.WriteBytes(sink)
	if err != nil {
		return nil, err
	}
	if len(sink) != v.SerializedLength() {
		return nil, fmt.Errorf("serialized length mismatch: declared %d, wrote %d", v.SerializedLength(), len(sink))
	}
	return sink, nil
}

// Unmarshal decodes v from data and requires the whole buffer to be
// consumed, failing with ErrLeftOverBytes otherwise.
func Unmarshal(data []byte, v Deserializable) error {
	rem, err := v.FromBytes(data)
	if err != nil {
		return err
	}
	if len(rem) != 0 {
		return ErrLeftOverBytes
	}
	return nil
}

// SplitAt splits data into its first n bytes and the remainder, failing
// with ErrEarlyEndOfStream if data is too short.
func SplitAt(data []byte, n int) ([]byte, []byte, error) {
	if n < 0 || n > len(data) {
		return nil, nil, ErrEarlyEndOfStream
	}
	return data[:n], data[n:], nil
}

// WriteBool appends a bool as a single 0 or 1 byte.
func WriteBool(sink []byte, v bool) []byte {
	if v {
		return append(sink, 1)
	}
	return append(sink, 0)
}

// ReadBool reads a bool, rejecting any byte other than 0 or 1.
func ReadBool(data []byte) (bool, []byte, error) {
	if len(data) == 0 {
		return false, nil, ErrEarlyEndOfStream
	}
	switch data[0] {
	case 0:
		return false, data[1:], nil
	case 1:
		return true, data[1:], nil
	default:
		return false, nil, ErrFormatting
	}
}

// WriteU8 appends a single byte.
func WriteU8(sink []byte, v uint8) []byte {
	return append(sink, v)
}

// ReadU8 reads a single byte.
func ReadU8(data []byte) (uint8, []byte, error) {
	if len(data) == 0 {
		return 0, nil, ErrEarlyEndOfStream
	}
	return data[0], data[1:], nil
}

// WriteU16 appends a fixed-width little-endian uint16.
func WriteU16(sink []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(sink, v)
}

// ReadU16 reads a fixed-width little-endian uint16.
func ReadU16(data []byte) (uint16, []byte, error) {
	b, rem, err := SplitAt(data, U16SerializedLength)
	if err != nil {
		return 0, nil, err
	}
	return binary.LittleEndian.Uint16(b), rem, nil
}

// WriteU32 appends a fixed-width little-endian uint32.
func WriteU32(sink []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(sink, v)
}

// ReadU32 reads a fixed-width little-endian uint32.
func ReadU32(data []byte) (uint32, []byte, error) {
	b, rem, err := SplitAt(data, U32SerializedLength)
	if err != nil {
		return 0, nil, err
	}
	return binary.LittleEndian.Uint32(b), rem, nil
}

// WriteU64 appends a fixed-width little-endian uint64.
func WriteU64(sink []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(sink, v)
}

// ReadU64 reads a fixed-width little-endian uint64.
func ReadU64(data []byte) (uint64, []byte, error) {
	b, rem, err := SplitAt(data, U64SerializedLength)
	if err != nil {
		return 0, nil, err
	}
	return binary.LittleEndian.Uint64(b), rem, nil
}

// WriteI32 appends a fixed-width little-endian int32.
func WriteI32(sink []byte, v int32) []byte {
	return WriteU32(sink, uint32(v))
}

// ReadI32 reads a fixed-width little-endian int32.
func ReadI32(data []byte) (int32, []byte, error) {
	u, rem, err := ReadU32(data)
	return int32(u), rem, err
}

// WriteI64 appends a fixed-width little-endian int64.
func WriteI64(sink []byte, v int64) []byte {
	return WriteU64(sink, uint64(v))
}

// ReadI64 reads a fixed-width little-endian int64.
func ReadI64(data []byte) (int64, []byte, error) {
	u, rem, err := ReadU64(data)
	return int64(u), rem, err
}

// WriteBytes appends a variable-length byte sequence with a u32 count
// prefix. Fixed-size arrays are written raw instead, see WriteArray.
func WriteBytes(sink []byte, b []byte) []byte {
	sink = WriteU32(sink, uint32(len(b)))
	return append(sink, b...)
}

// ReadBytes reads a u32-prefixed byte sequence. The returned slice is a
// copy, so the caller may retain it past the life of data.
func ReadBytes(data []byte) ([]byte, []byte, error) {
	count, rem, err := ReadU32(data)
	if err != nil {
		return nil, nil, err
	}
	if count > maxSequenceLength {
		return nil, nil, ErrOutOfMemory
	}
	b, rem, err := SplitAt(rem, int(count))
	if err != nil {
		return nil, nil, err
	}
	out := make([]byte, count)
	copy(out, b)
	return out, rem, nil
}

// BytesSize returns the serialized length of a u32-prefixed byte sequence.
func BytesSize(b []byte) int {
	return U32SerializedLength + len(b)
}

// WriteString appends a u32-prefixed UTF-8 string.
func WriteString(sink []byte, s string) []byte {
	sink = WriteU32(sink, uint32(len(s)))
	return append(sink, s...)
}

// ReadString reads a u32-prefixed string, rejecting invalid UTF-8 with
// ErrFormatting.
func ReadString(data []byte) (string, []byte, error) {
	b, rem, err := ReadBytes(data)
	if err != nil {
		return "", nil, err
	}
	if !utf8.Valid(b) {
		return "", nil, ErrFormatting
	}
	return string(b), rem, nil
}

// StringSize returns the serialized length of a u32-prefixed string.
func StringSize(s string) int {
	return U32SerializedLength + len(s)
}

// WriteArray appends a fixed-size byte array raw, with no length prefix.
// Both sides of the wire must agree on the size out of band.
func WriteArray(sink []byte, b []byte) []byte {
	return append(sink, b...)
}

// ReadArray reads size raw bytes into out, which must be exactly size long.
func ReadArray(data []byte, out []byte) ([]byte, error) {
	b, rem, err := SplitAt(data, len(out))
	if err != nil {
		return nil, err
	}
	copy(out, b)
	return rem, nil
}

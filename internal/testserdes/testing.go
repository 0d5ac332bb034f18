// Package testserdes provides round-trip helpers for serialization tests.
package testserdes

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

// EncodeDecode checks that expected survives a full serialization round
// trip: SerializedLength matches the produced bytes, decoding them into
// actual yields an equal value, and decoding consumes all input.
func EncodeDecode(t *testing.T, expected bytesrepr.Serializable, actual bytesrepr.Deserializable) {
	data, err := bytesrepr.Marshal(expected)
	require.NoError(t, err)
	require.Equal(t, expected.SerializedLength(), len(data))
	require.NoError(t, bytesrepr.Unmarshal(data, actual))
	require.Equal(t, deref(expected), deref(actual))
}

// EncodeBytes serializes a and asserts the declared length holds.
func EncodeBytes(t *testing.T, a bytesrepr.Serializable) []byte {
	data, err := bytesrepr.Marshal(a)
	require.NoError(t, err)
	require.Equal(t, a.SerializedLength(), len(data))
	return data
}

// DecodeFails asserts that data does not decode into a.
func DecodeFails(t *testing.T, data []byte, a bytesrepr.Deserializable) {
	require.Error(t, bytesrepr.Unmarshal(data, a))
}

// TrailingByteFails asserts that decoding rejects input with an extra
// trailing byte, i.e. that full consumption is enforced.
func TrailingByteFails(t *testing.T, expected bytesrepr.Serializable, actual bytesrepr.Deserializable) {
	data, err := bytesrepr.Marshal(expected)
	require.NoError(t, err)
	err = bytesrepr.Unmarshal(append(data, 0xFF), actual)
	require.ErrorIs(t, err, bytesrepr.ErrLeftOverBytes)
}

func deref(a interface{}) interface{} {
	v := reflect.ValueOf(a)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		return v.Elem().Interface()
	}
	return a
}

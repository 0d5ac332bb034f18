package state

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanta-labs/quanta-go/internal/testserdes"
	"github.com/quanta-labs/quanta-go/pkg/crypto/hash"
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

func fill32(b byte) (out [32]byte) {
	for i := range out {
		out[i] = b
	}
	return
}

func TestKeyEncodeDecode(t *testing.T) {
	keys := []Key{
		NewAccountKey(AccountHash(fill32(0xAA))),
		NewHashKey(fill32(0xBB)),
		NewURefKey(URef{Addr: fill32(0xCC), Access: AccessReadAddWrite}),
		NewLocalKey(fill32(0xDD), []byte("counter")),
	}
	for _, k := range keys {
		t.Run(k.String()[:12], func(t *testing.T) {
			testserdes.EncodeDecode(t, k, &Key{})
			testserdes.TrailingByteFails(t, k, &Key{})
		})
	}
}

func TestKeyGoldenBytes(t *testing.T) {
	k := NewAccountKey(AccountHash(fill32(0x07)))
	expected := append([]byte{0x00}, bytes.Repeat([]byte{0x07}, 32)...)
	require.Equal(t, expected, k.Bytes())

	u := NewURefKey(URef{Addr: fill32(0x09), Access: AccessRead})
	expected = append([]byte{0x02}, bytes.Repeat([]byte{0x09}, 32)...)
	expected = append(expected, 0x01)
	require.Equal(t, expected, u.Bytes())
}

func TestKeySerializedLength(t *testing.T) {
	assert.Equal(t, 33, NewAccountKey(AccountHash{}).SerializedLength())
	assert.Equal(t, 33, NewHashKey([32]byte{}).SerializedLength())
	assert.Equal(t, 34, NewURefKey(URef{}).SerializedLength())
	assert.Equal(t, 65, NewLocalKey([32]byte{}, nil).SerializedLength())
}

func TestKeyDecodeInvalidTag(t *testing.T) {
	data := append([]byte{0x7F}, bytes.Repeat([]byte{0}, 32)...)
	_, err := new(Key).FromBytes(data)
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestKeyCompare(t *testing.T) {
	// Tag ordering dominates payload ordering.
	acc := NewAccountKey(AccountHash(fill32(0xFF)))
	h := NewHashKey(fill32(0x00))
	require.Negative(t, acc.Compare(h))
	require.Positive(t, h.Compare(acc))
	require.Zero(t, acc.Compare(acc))
	require.True(t, acc.Equals(acc))
	require.False(t, acc.Equals(h))
}

func TestLocalKeyHash(t *testing.T) {
	seed := fill32(0x11)
	k := NewLocalKey(seed, []byte("slot"))
	expected := hash.Blake2b256(append(seed[:], []byte("slot")...))
	require.Equal(t, [32]byte(expected), k.LocalHash)

	// Different seeds never produce the same address for the same name.
	other := NewLocalKey(fill32(0x12), []byte("slot"))
	require.NotEqual(t, k.LocalHash, other.LocalHash)
}

func TestKeyStringRoundTrip(t *testing.T) {
	keys := []Key{
		NewAccountKey(AccountHash(fill32(0x01))),
		NewHashKey(fill32(0x02)),
		NewURefKey(URef{Addr: fill32(0x03), Access: AccessRead | AccessWrite}),
		NewLocalKey(fill32(0x04), []byte("x")),
	}
	for _, k := range keys {
		parsed, err := ParseKey(k.String())
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	_, err := ParseKey("bogus-ffff")
	require.Error(t, err)
	_, err = ParseKey("account-hash-zzzz")
	require.Error(t, err)
	_, err = ParseKey("hash-ab")
	require.Error(t, err)
}

func TestURefEncodeDecode(t *testing.T) {
	u := URef{Addr: fill32(0x42), Access: AccessReadAddWrite}
	testserdes.EncodeDecode(t, u, &URef{})

	// Unknown access bits are rejected on both paths.
	bad := URef{Addr: fill32(0x42), Access: 0x08}
	_, err := bad.WriteBytes(nil)
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)

	data := testserdes.EncodeBytes(t, u)
	data[len(data)-1] = 0xFF
	testserdes.DecodeFails(t, data, &URef{})
}

func TestParseURef(t *testing.T) {
	u := URef{Addr: fill32(0x5A), Access: AccessRead}
	parsed, err := ParseURef(u.String())
	require.NoError(t, err)
	require.Equal(t, u, parsed)

	for _, s := range []string{
		"uref-abcd",
		"uref-" + strings.Repeat("5a", 32) + "-008",
		"uref-" + strings.Repeat("5a", 32) + "-999",
		"notauref",
	} {
		_, err := ParseURef(s)
		require.Error(t, err, s)
	}
}

func TestNamedKeysCanonicalOrder(t *testing.T) {
	n := NamedKeys{
		"beta":  NewHashKey(fill32(0x02)),
		"alpha": NewHashKey(fill32(0x01)),
	}
	first, err := bytesrepr.Marshal(n)
	require.NoError(t, err)
	second, err := bytesrepr.Marshal(n)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// "alpha" sorts before "beta" regardless of insertion order.
	require.Equal(t, byte(5), first[4])
	require.Equal(t, []byte("alpha"), first[8:13])

	testserdes.EncodeDecode(t, n, &NamedKeys{})
}

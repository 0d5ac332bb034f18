package state

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/quanta-labs/quanta-go/internal/testserdes"
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

func TestCLValueEncodeDecode(t *testing.T) {
	values := map[string]CLValue{
		"bool":      CLValueFromBool(true),
		"i32":       CLValueFromI32(-7),
		"i64":       CLValueFromI64(1 << 40),
		"u8":        CLValueFromU8(0xFE),
		"u32":       CLValueFromU32(0xDEADBEEF),
		"u64":       CLValueFromU64(1<<63 + 5),
		"u256":      CLValueFromU256(uint256.NewInt(1_000_000_007)),
		"string":    CLValueFromString("hello"),
		"unit":      CLValueFromUnit(),
		"key":       CLValueFromKey(NewHashKey(fill32(0x33))),
		"uref":      CLValueFromURef(URef{Addr: fill32(0x44), Access: AccessRead}),
		"bytearray": CLValueFromByteArray([]byte{1, 2, 3}),
	}
	for name, v := range values {
		t.Run(name, func(t *testing.T) {
			testserdes.EncodeDecode(t, v, &CLValue{})
			testserdes.TrailingByteFails(t, v, &CLValue{})
		})
	}
}

func TestCLValueGoldenBytes(t *testing.T) {
	data := testserdes.EncodeBytes(t, CLValueFromU64(7))
	require.Equal(t, []byte{
		8, 0, 0, 0, // payload length
		7, 0, 0, 0, 0, 0, 0, 0, // 7 as u64 LE
		byte(CLU64),
	}, data)

	data = testserdes.EncodeBytes(t, CLValueFromString("ab"))
	require.Equal(t, []byte{
		6, 0, 0, 0, // payload length
		2, 0, 0, 0, 'a', 'b', // string payload carries its own length
		byte(CLString),
	}, data)

	data = testserdes.EncodeBytes(t, CLValueFromByteArray([]byte{9}))
	require.Equal(t, []byte{
		1, 0, 0, 0,
		9,
		byte(CLByteArray), 1, 0, 0, 0, // fixed-size type carries the size
	}, data)
}

func TestCLValueExtractors(t *testing.T) {
	b, err := CLValueFromBool(true).ToBool()
	require.NoError(t, err)
	require.True(t, b)

	i, err := CLValueFromI32(-42).ToI32()
	require.NoError(t, err)
	require.EqualValues(t, -42, i)

	u, err := CLValueFromU64(99).ToU64()
	require.NoError(t, err)
	require.EqualValues(t, 99, u)

	big, err := CLValueFromU256(uint256.NewInt(77)).ToU256()
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(77), big)

	s, err := CLValueFromString("purse").ToString()
	require.NoError(t, err)
	require.Equal(t, "purse", s)

	k := NewAccountKey(AccountHash(fill32(0x21)))
	got, err := CLValueFromKey(k).ToKey()
	require.NoError(t, err)
	require.Equal(t, k, got)
}

func TestCLValueBigInts(t *testing.T) {
	v128, err := CLValueFromU128(big.NewInt(1 << 40))
	require.NoError(t, err)
	testserdes.EncodeDecode(t, v128, &CLValue{})

	amount := new(big.Int).Lsh(big.NewInt(1), 300)
	v512, err := CLValueFromU512(amount)
	require.NoError(t, err)
	got, err := v512.ToU512()
	require.NoError(t, err)
	require.Zero(t, amount.Cmp(got))

	_, err = CLValueFromU128(big.NewInt(-1))
	require.Error(t, err)
	_, err = CLValueFromU128(new(big.Int).Lsh(big.NewInt(1), 128))
	require.Error(t, err)
}

func TestCLValueExtractorTypeMismatch(t *testing.T) {
	_, err := CLValueFromU64(1).ToBool()
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
	_, err = CLValueFromString("x").ToU64()
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestCLValueExtractorLeftOverBytes(t *testing.T) {
	v := CLValueFromBool(true)
	v.Data = append(v.Data, 0x00)
	_, err := v.ToBool()
	require.ErrorIs(t, err, bytesrepr.ErrLeftOverBytes)
}

func TestCLTypeEncodeDecode(t *testing.T) {
	types := []CLType{
		SimpleCLType(CLBool),
		SimpleCLType(CLAny),
		OptionCLType(SimpleCLType(CLU64)),
		ListCLType(SimpleCLType(CLString)),
		ByteArrayCLType(32),
		ResultCLType(SimpleCLType(CLUnit), SimpleCLType(CLString)),
		MapCLType(SimpleCLType(CLString), OptionCLType(SimpleCLType(CLKey))),
	}
	for _, typ := range types {
		testserdes.EncodeDecode(t, typ, &CLType{})
	}
}

func TestCLTypeDecodeHostile(t *testing.T) {
	// Unknown tag.
	_, err := new(CLType).FromBytes([]byte{0x7F})
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)

	// Option chain deeper than the recursion bound.
	deep := make([]byte, maxCLTypeDepth+2)
	for i := range deep {
		deep[i] = byte(CLOption)
	}
	_, err = new(CLType).FromBytes(deep)
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)

	// Truncated composite.
	_, err = new(CLType).FromBytes([]byte{byte(CLMap), byte(CLString)})
	require.ErrorIs(t, err, bytesrepr.ErrEarlyEndOfStream)
}

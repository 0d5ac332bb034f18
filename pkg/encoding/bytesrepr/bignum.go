package bytesrepr

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Widths (in bytes) of the unsigned big-number types.
const (
	U128NumBytes = 16
	U256NumBytes = 32
	U512NumBytes = 64
)

// Big numbers are encoded as one length byte holding the count of
// significant bytes, followed by that many little-endian bytes with no
// trailing zeroes. Zero is a single 0x00 length byte. The minimal-length
// rule is what keeps the encoding canonical: 1 has exactly one valid
// representation regardless of the declared width.

func reverse(b []byte) []byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// WriteU256 appends the canonical encoding of a 256-bit unsigned integer.
func WriteU256(sink []byte, v *uint256.Int) []byte {
	le := reverse(v.Bytes())
	sink = append(sink, byte(len(le)))
	return append(sink, le...)
}

// ReadU256 reads a 256-bit unsigned integer.
func ReadU256(data []byte) (*uint256.Int, []byte, error) {
	n, rem, err := ReadU8(data)
	if err != nil {
		return nil, nil, err
	}
	if int(n) > U256NumBytes {
		return nil, nil, ErrFormatting
	}
	le, rem, err := SplitAt(rem, int(n))
	if err != nil {
		return nil, nil, err
	}
	if n > 0 && le[n-1] == 0 {
		// Non-minimal encodings would break digest determinism.
		return nil, nil, ErrFormatting
	}
	be := reverse(append([]byte(nil), le...))
	return new(uint256.Int).SetBytes(be), rem, nil
}

// U256Size returns the serialized length of a 256-bit unsigned integer.
func U256Size(v *uint256.Int) int {
	return U8SerializedLength + v.ByteLen()
}

// WriteBig appends the canonical encoding of an unsigned big integer of at
// most maxLen bytes (use U128NumBytes or U512NumBytes).
func WriteBig(sink []byte, v *big.Int, maxLen int) ([]byte, error) {
	if v.Sign() < 0 || len(v.Bytes()) > maxLen {
		return nil, ErrFormatting
	}
	le := reverse(v.Bytes())
	sink = append(sink, byte(len(le)))
	return append(sink, le...), nil
}

// ReadBig reads an unsigned big integer of at most maxLen bytes.
func ReadBig(data []byte, maxLen int) (*big.Int, []byte, error) {
	n, rem, err := ReadU8(data)
	if err != nil {
		return nil, nil, err
	}
	if int(n) > maxLen {
		return nil, nil, ErrFormatting
	}
	le, rem, err := SplitAt(rem, int(n))
	if err != nil {
		return nil, nil, err
	}
	if n > 0 && le[n-1] == 0 {
		return nil, nil, ErrFormatting
	}
	be := reverse(append([]byte(nil), le...))
	return new(big.Int).SetBytes(be), rem, nil
}

// BigSize returns the serialized length of an unsigned big integer.
func BigSize(v *big.Int) int {
	return U8SerializedLength + len(v.Bytes())
}

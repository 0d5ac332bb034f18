package state

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

// CLValue is a value of a runtime-described type: the payload is kept in
// its canonical serialized form together with the CLType describing it.
// The trie treats CLValues as opaque; typed access goes through the To*
// extractors.
type CLValue struct {
	Type CLType
	Data []byte
}

// WriteBytes implements bytesrepr.Serializable.
func (v CLValue) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteBytes(sink, v.Data)
	return v.Type.WriteBytes(sink)
}

// SerializedLength implements bytesrepr.Serializable.
func (v CLValue) SerializedLength() int {
	return bytesrepr.BytesSize(v.Data) + v.Type.SerializedLength()
}

// FromBytes implements bytesrepr.Deserializable.
func (v *CLValue) FromBytes(data []byte) ([]byte, error) {
	d, rem, err := bytesrepr.ReadBytes(data)
	if err != nil {
		return nil, err
	}
	v.Data = d
	return v.Type.FromBytes(rem)
}

// CLValueFromBool wraps a bool.
func CLValueFromBool(b bool) CLValue {
	return CLValue{Type: SimpleCLType(CLBool), Data: bytesrepr.WriteBool(nil, b)}
}

// CLValueFromI32 wraps an int32.
func CLValueFromI32(i int32) CLValue {
	return CLValue{Type: SimpleCLType(CLI32), Data: bytesrepr.WriteI32(nil, i)}
}

// CLValueFromI64 wraps an int64.
func CLValueFromI64(i int64) CLValue {
	return CLValue{Type: SimpleCLType(CLI64), Data: bytesrepr.WriteI64(nil, i)}
}

// CLValueFromU8 wraps a byte.
func CLValueFromU8(u uint8) CLValue {
	return CLValue{Type: SimpleCLType(CLU8), Data: bytesrepr.WriteU8(nil, u)}
}

// CLValueFromU32 wraps an uint32.
func CLValueFromU32(u uint32) CLValue {
	return CLValue{Type: SimpleCLType(CLU32), Data: bytesrepr.WriteU32(nil, u)}
}

// CLValueFromU64 wraps an uint64.
func CLValueFromU64(u uint64) CLValue {
	return CLValue{Type: SimpleCLType(CLU64), Data: bytesrepr.WriteU64(nil, u)}
}

// CLValueFromU256 wraps a 256-bit unsigned integer.
func CLValueFromU256(u *uint256.Int) CLValue {
	return CLValue{Type: SimpleCLType(CLU256), Data: bytesrepr.WriteU256(nil, u)}
}

// CLValueFromU128 wraps a 128-bit unsigned integer. Fails if v is negative
// or does not fit in 128 bits.
func CLValueFromU128(v *big.Int) (CLValue, error) {
	data, err := bytesrepr.WriteBig(nil, v, bytesrepr.U128NumBytes)
	if err != nil {
		return CLValue{}, err
	}
	return CLValue{Type: SimpleCLType(CLU128), Data: data}, nil
}

// CLValueFromU512 wraps a 512-bit unsigned integer. Fails if v is negative
// or does not fit in 512 bits.
func CLValueFromU512(v *big.Int) (CLValue, error) {
	data, err := bytesrepr.WriteBig(nil, v, bytesrepr.U512NumBytes)
	if err != nil {
		return CLValue{}, err
	}
	return CLValue{Type: SimpleCLType(CLU512), Data: data}, nil
}

// CLValueFromString wraps a string.
func CLValueFromString(s string) CLValue {
	return CLValue{Type: SimpleCLType(CLString), Data: bytesrepr.WriteString(nil, s)}
}

// CLValueFromUnit returns the unit value, which has an empty payload.
func CLValueFromUnit() CLValue {
	return CLValue{Type: SimpleCLType(CLUnit), Data: []byte{}}
}

// CLValueFromKey wraps a state key.
func CLValueFromKey(k Key) CLValue {
	return CLValue{Type: SimpleCLType(CLKey), Data: k.Bytes()}
}

// CLValueFromURef wraps an unforgeable reference.
func CLValueFromURef(u URef) CLValue {
	data, _ := u.WriteBytes(nil)
	return CLValue{Type: SimpleCLType(CLURef), Data: data}
}

// CLValueFromByteArray wraps raw bytes as a fixed-size byte array.
func CLValueFromByteArray(b []byte) CLValue {
	data := make([]byte, len(b))
	copy(data, b)
	return CLValue{Type: ByteArrayCLType(uint32(len(b))), Data: data}
}

func (v CLValue) expect(tag CLTypeTag) error {
	if v.Type.Tag != tag {
		return fmt.Errorf("%w: unexpected cl type %d", bytesrepr.ErrFormatting, v.Type.Tag)
	}
	return nil
}

func ensureConsumed(rem []byte) error {
	if len(rem) != 0 {
		return bytesrepr.ErrLeftOverBytes
	}
	return nil
}

// ToBool extracts a bool payload.
func (v CLValue) ToBool() (bool, error) {
	if err := v.expect(CLBool); err != nil {
		return false, err
	}
	b, rem, err := bytesrepr.ReadBool(v.Data)
	if err != nil {
		return false, err
	}
	return b, ensureConsumed(rem)
}

// ToI32 extracts an int32 payload.
func (v CLValue) ToI32() (int32, error) {
	if err := v.expect(CLI32); err != nil {
		return 0, err
	}
	i, rem, err := bytesrepr.ReadI32(v.Data)
	if err != nil {
		return 0, err
	}
	return i, ensureConsumed(rem)
}

// ToU64 extracts an uint64 payload.
func (v CLValue) ToU64() (uint64, error) {
	if err := v.expect(CLU64); err != nil {
		return 0, err
	}
	u, rem, err := bytesrepr.ReadU64(v.Data)
	if err != nil {
		return 0, err
	}
	return u, ensureConsumed(rem)
}

// ToU256 extracts a 256-bit unsigned integer payload.
func (v CLValue) ToU256() (*uint256.Int, error) {
	if err := v.expect(CLU256); err != nil {
		return nil, err
	}
	u, rem, err := bytesrepr.ReadU256(v.Data)
	if err != nil {
		return nil, err
	}
	return u, ensureConsumed(rem)
}

// ToU512 extracts a 512-bit unsigned integer payload.
func (v CLValue) ToU512() (*big.Int, error) {
	if err := v.expect(CLU512); err != nil {
		return nil, err
	}
	u, rem, err := bytesrepr.ReadBig(v.Data, bytesrepr.U512NumBytes)
	if err != nil {
		return nil, err
	}
	return u, ensureConsumed(rem)
}

// ToString extracts a string payload.
func (v CLValue) ToString() (string, error) {
	if err := v.expect(CLString); err != nil {
		return "", err
	}
	s, rem, err := bytesrepr.ReadString(v.Data)
	if err != nil {
		return "", err
	}
	return s, ensureConsumed(rem)
}

// ToKey extracts a state key payload.
func (v CLValue) ToKey() (Key, error) {
	var k Key
	if err := v.expect(CLKey); err != nil {
		return k, err
	}
	rem, err := k.FromBytes(v.Data)
	if err != nil {
		return k, err
	}
	return k, ensureConsumed(rem)
}

package state

import (
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

// StoredValueType represents the variant of a StoredValue.
type StoredValueType byte

// Stored value type tags. Wire format, do not reorder.
const (
	CLValueT         StoredValueType = 0x00
	AccountT         StoredValueType = 0x01
	ContractT        StoredValueType = 0x02
	ContractPackageT StoredValueType = 0x03
)

// StoredValue is anything global state can hold under a Key. It is a
// tagged union serialized as a tag byte followed by the variant payload;
// the hash of that byte form addresses the value in the trie.
type StoredValue struct {
	Type            StoredValueType
	CLValue         *CLValue
	Account         *Account
	Contract        *Contract
	ContractPackage *ContractPackage
}

// NewCLStoredValue wraps a CLValue.
func NewCLStoredValue(v CLValue) *StoredValue {
	return &StoredValue{Type: CLValueT, CLValue: &v}
}

// NewAccountStoredValue wraps an Account.
func NewAccountStoredValue(a Account) *StoredValue {
	return &StoredValue{Type: AccountT, Account: &a}
}

// NewContractStoredValue wraps a Contract.
func NewContractStoredValue(c Contract) *StoredValue {
	return &StoredValue{Type: ContractT, Contract: &c}
}

// NewPackageStoredValue wraps a ContractPackage.
func NewPackageStoredValue(p ContractPackage) *StoredValue {
	return &StoredValue{Type: ContractPackageT, ContractPackage: &p}
}

func (v StoredValue) payload() bytesrepr.Serializable {
	switch v.Type {
	case CLValueT:
		if v.CLValue != nil {
			return *v.CLValue
		}
	case AccountT:
		if v.Account != nil {
			return *v.Account
		}
	case ContractT:
		if v.Contract != nil {
			return *v.Contract
		}
	case ContractPackageT:
		if v.ContractPackage != nil {
			return *v.ContractPackage
		}
	}
	return nil
}

// WriteBytes implements bytesrepr.Serializable.
func (v StoredValue) WriteBytes(sink []byte) ([]byte, error) {
	p := v.payload()
	if p == nil {
		return nil, bytesrepr.ErrFormatting
	}
	return p.WriteBytes(bytesrepr.WriteU8(sink, byte(v.Type)))
}

// SerializedLength implements bytesrepr.Serializable.
func (v StoredValue) SerializedLength() int {
	p := v.payload()
	if p == nil {
		return bytesrepr.U8SerializedLength
	}
	return bytesrepr.U8SerializedLength + p.SerializedLength()
}

// FromBytes implements bytesrepr.Deserializable.
func (v *StoredValue) FromBytes(data []byte) ([]byte, error) {
	tag, rem, err := bytesrepr.ReadU8(data)
	if err != nil {
		return nil, err
	}
	*v = StoredValue{Type: StoredValueType(tag)}
	switch v.Type {
	case CLValueT:
		v.CLValue = new(CLValue)
		return v.CLValue.FromBytes(rem)
	case AccountT:
		v.Account = new(Account)
		return v.Account.FromBytes(rem)
	case ContractT:
		v.Contract = new(Contract)
		return v.Contract.FromBytes(rem)
	case ContractPackageT:
		v.ContractPackage = new(ContractPackage)
		return v.ContractPackage.FromBytes(rem)
	default:
		return nil, bytesrepr.ErrFormatting
	}
}

package state

import (
	"encoding/hex"

	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

// AccountHashSize is the size of an account hash in bytes.
const AccountHashSize = 32

// AccountHash is the 32-byte address of an account record.
type AccountHash [AccountHashSize]byte

// String implements the stringer interface.
func (a AccountHash) String() string {
	return hex.EncodeToString(a[:])
}

// ActionThresholds hold the weights an account requires for routine
// deployment and for key management actions.
type ActionThresholds struct {
	Deployment    uint8
	KeyManagement uint8
}

// WriteBytes implements bytesrepr.Serializable.
func (t ActionThresholds) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteU8(sink, t.Deployment)
	return bytesrepr.WriteU8(sink, t.KeyManagement), nil
}

// SerializedLength implements bytesrepr.Serializable.
func (t ActionThresholds) SerializedLength() int {
	return 2 * bytesrepr.U8SerializedLength
}

// FromBytes implements bytesrepr.Deserializable.
func (t *ActionThresholds) FromBytes(data []byte) ([]byte, error) {
	var err error
	if t.Deployment, data, err = bytesrepr.ReadU8(data); err != nil {
		return nil, err
	}
	if t.KeyManagement, data, err = bytesrepr.ReadU8(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Account is the on-chain record of an account: its address, the named
// keys it holds, the purse its balance lives in and its action thresholds.
type Account struct {
	Hash       AccountHash
	NamedKeys  NamedKeys
	MainPurse  URef
	Thresholds ActionThresholds
}

// NewAccount returns an Account with the given address and main purse and
// no named keys.
func NewAccount(h AccountHash, mainPurse URef) *Account {
	return &Account{
		Hash:       h,
		NamedKeys:  NamedKeys{},
		MainPurse:  mainPurse,
		Thresholds: ActionThresholds{Deployment: 1, KeyManagement: 1},
	}
}

// WriteBytes implements bytesrepr.Serializable.
func (a Account) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteArray(sink, a.Hash[:])
	sink, err := a.NamedKeys.WriteBytes(sink)
	if err != nil {
		return nil, err
	}
	if sink, err = a.MainPurse.WriteBytes(sink); err != nil {
		return nil, err
	}
	return a.Thresholds.WriteBytes(sink)
}

// SerializedLength implements bytesrepr.Serializable.
func (a Account) SerializedLength() int {
	return AccountHashSize + a.NamedKeys.SerializedLength() +
		a.MainPurse.SerializedLength() + a.Thresholds.SerializedLength()
}

// FromBytes implements bytesrepr.Deserializable.
func (a *Account) FromBytes(data []byte) ([]byte, error) {
	rem, err := bytesrepr.ReadArray(data, a.Hash[:])
	if err != nil {
		return nil, err
	}
	if rem, err = a.NamedKeys.FromBytes(rem); err != nil {
		return nil, err
	}
	if rem, err = a.MainPurse.FromBytes(rem); err != nil {
		return nil, err
	}
	return a.Thresholds.FromBytes(rem)
}

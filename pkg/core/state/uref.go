package state

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

// AccessRights is a bitmask of operations permitted through an URef.
type AccessRights byte

// Access right bits.
const (
	AccessNone  AccessRights = 0
	AccessRead  AccessRights = 1
	AccessWrite AccessRights = 2
	AccessAdd   AccessRights = 4

	AccessReadAddWrite = AccessRead | AccessAdd | AccessWrite
)

// IsValid reports whether a contains only known bits.
func (a AccessRights) IsValid() bool {
	return a <= AccessReadAddWrite
}

// URefAddrSize is the size of an URef address in bytes.
const URefAddrSize = 32

// URefSerializedLength is the wire size of an URef: raw address plus one
// access-rights byte.
const URefSerializedLength = URefAddrSize + 1

// URef is an unforgeable reference: a 32-byte address in global state
// paired with the access rights its holder has over the referenced value.
type URef struct {
	Addr   [URefAddrSize]byte
	Access AccessRights
}

// WriteBytes implements bytesrepr.Serializable.
func (u URef) WriteBytes(sink []byte) ([]byte, error) {
	if !u.Access.IsValid() {
		return nil, bytesrepr.ErrFormatting
	}
	sink = bytesrepr.WriteArray(sink, u.Addr[:])
	return bytesrepr.WriteU8(sink, byte(u.Access)), nil
}

// SerializedLength implements bytesrepr.Serializable.
func (u URef) SerializedLength() int {
	return URefSerializedLength
}

// FromBytes implements bytesrepr.Deserializable.
func (u *URef) FromBytes(data []byte) ([]byte, error) {
	rem, err := bytesrepr.ReadArray(data, u.Addr[:])
	if err != nil {
		return nil, err
	}
	access, rem, err := bytesrepr.ReadU8(rem)
	if err != nil {
		return nil, err
	}
	u.Access = AccessRights(access)
	if !u.Access.IsValid() {
		return nil, bytesrepr.ErrFormatting
	}
	return rem, nil
}

// String returns the formatted form, e.g. "uref-<addr hex>-007".
func (u URef) String() string {
	return fmt.Sprintf("uref-%s-%03d", hex.EncodeToString(u.Addr[:]), u.Access)
}

// ParseURef parses the formatted form produced by String.
func ParseURef(s string) (URef, error) {
	var u URef
	if !strings.HasPrefix(s, "uref-") {
		return u, fmt.Errorf("invalid uref %q: missing prefix", s)
	}
	rest := strings.TrimPrefix(s, "uref-")
	addrHex, accessStr, found := strings.Cut(rest, "-")
	if !found {
		return u, fmt.Errorf("invalid uref %q: missing access rights", s)
	}
	addr, err := hex.DecodeString(addrHex)
	if err != nil || len(addr) != URefAddrSize {
		return u, fmt.Errorf("invalid uref %q: bad address", s)
	}
	access, err := strconv.ParseUint(accessStr, 10, 8)
	if err != nil || !AccessRights(access).IsValid() {
		return u, fmt.Errorf("invalid uref %q: bad access rights", s)
	}
	copy(u.Addr[:], addr)
	u.Access = AccessRights(access)
	return u, nil
}

package state

import (
	"fmt"
	"sort"

	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

// ProtocolVersion is a semver-style protocol version triple.
type ProtocolVersion struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// String implements the stringer interface.
func (p ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", p.Major, p.Minor, p.Patch)
}

// WriteBytes implements bytesrepr.Serializable.
func (p ProtocolVersion) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteU32(sink, p.Major)
	sink = bytesrepr.WriteU32(sink, p.Minor)
	return bytesrepr.WriteU32(sink, p.Patch), nil
}

// SerializedLength implements bytesrepr.Serializable.
func (p ProtocolVersion) SerializedLength() int {
	return 3 * bytesrepr.U32SerializedLength
}

// FromBytes implements bytesrepr.Deserializable.
func (p *ProtocolVersion) FromBytes(data []byte) ([]byte, error) {
	var err error
	if p.Major, data, err = bytesrepr.ReadU32(data); err != nil {
		return nil, err
	}
	if p.Minor, data, err = bytesrepr.ReadU32(data); err != nil {
		return nil, err
	}
	if p.Patch, data, err = bytesrepr.ReadU32(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Contract is a stored contract: the package it belongs to, the hash of
// its wasm module, its named keys and the protocol version it was built
// against.
type Contract struct {
	PackageHash [HashAddrSize]byte
	WasmHash    [HashAddrSize]byte
	NamedKeys   NamedKeys
	Protocol    ProtocolVersion
}

// WriteBytes implements bytesrepr.Serializable.
func (c Contract) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteArray(sink, c.PackageHash[:])
	sink = bytesrepr.WriteArray(sink, c.WasmHash[:])
	sink, err := c.NamedKeys.WriteBytes(sink)
	if err != nil {
		return nil, err
	}
	return c.Protocol.WriteBytes(sink)
}

// SerializedLength implements bytesrepr.Serializable.
func (c Contract) SerializedLength() int {
	return 2*HashAddrSize + c.NamedKeys.SerializedLength() + c.Protocol.SerializedLength()
}

// FromBytes implements bytesrepr.Deserializable.
func (c *Contract) FromBytes(data []byte) ([]byte, error) {
	rem, err := bytesrepr.ReadArray(data, c.PackageHash[:])
	if err != nil {
		return nil, err
	}
	if rem, err = bytesrepr.ReadArray(rem, c.WasmHash[:]); err != nil {
		return nil, err
	}
	if rem, err = c.NamedKeys.FromBytes(rem); err != nil {
		return nil, err
	}
	return c.Protocol.FromBytes(rem)
}

// ContractVersionKey identifies a contract version within a package: the
// protocol major version it targets and its ordinal inside that major
// version.
type ContractVersionKey struct {
	ProtocolMajor uint32
	Version       uint32
}

// WriteBytes implements bytesrepr.Serializable.
func (k ContractVersionKey) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteU32(sink, k.ProtocolMajor)
	return bytesrepr.WriteU32(sink, k.Version), nil
}

// SerializedLength implements bytesrepr.Serializable.
func (k ContractVersionKey) SerializedLength() int {
	return 2 * bytesrepr.U32SerializedLength
}

// FromBytes implements bytesrepr.Deserializable.
func (k *ContractVersionKey) FromBytes(data []byte) ([]byte, error) {
	var err error
	if k.ProtocolMajor, data, err = bytesrepr.ReadU32(data); err != nil {
		return nil, err
	}
	if k.Version, data, err = bytesrepr.ReadU32(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (k ContractVersionKey) less(other ContractVersionKey) bool {
	if k.ProtocolMajor != other.ProtocolMajor {
		return k.ProtocolMajor < other.ProtocolMajor
	}
	return k.Version < other.Version
}

// ContractPackage groups the versions of a contract under a single access
// uref. Versions map version keys to the hash keys of the corresponding
// Contract records; serialization orders entries ascending by version key
// so the byte form is canonical.
type ContractPackage struct {
	AccessKey URef
	Versions  map[ContractVersionKey][HashAddrSize]byte
}

// NewContractPackage returns an empty package guarded by the given uref.
func NewContractPackage(accessKey URef) *ContractPackage {
	return &ContractPackage{
		AccessKey: accessKey,
		Versions:  map[ContractVersionKey][HashAddrSize]byte{},
	}
}

// Insert registers a contract hash under the given version key.
func (p *ContractPackage) Insert(k ContractVersionKey, contractHash [HashAddrSize]byte) {
	p.Versions[k] = contractHash
}

// WriteBytes implements bytesrepr.Serializable.
func (p ContractPackage) WriteBytes(sink []byte) ([]byte, error) {
	sink, err := p.AccessKey.WriteBytes(sink)
	if err != nil {
		return nil, err
	}
	keys := make([]ContractVersionKey, 0, len(p.Versions))
	for k := range p.Versions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	sink = bytesrepr.WriteU32(sink, uint32(len(keys)))
	for _, k := range keys {
		if sink, err = k.WriteBytes(sink); err != nil {
			return nil, err
		}
		h := p.Versions[k]
		sink = bytesrepr.WriteArray(sink, h[:])
	}
	return sink, nil
}

// SerializedLength implements bytesrepr.Serializable.
func (p ContractPackage) SerializedLength() int {
	entry := 2*bytesrepr.U32SerializedLength + HashAddrSize
	return p.AccessKey.SerializedLength() +
		bytesrepr.U32SerializedLength + len(p.Versions)*entry
}

// FromBytes implements bytesrepr.Deserializable.
func (p *ContractPackage) FromBytes(data []byte) ([]byte, error) {
	rem, err := p.AccessKey.FromBytes(data)
	if err != nil {
		return nil, err
	}
	count, rem, err := bytesrepr.ReadU32(rem)
	if err != nil {
		return nil, err
	}
	capHint := int(count)
	if capHint > 1024 {
		capHint = 1024
	}
	p.Versions = make(map[ContractVersionKey][HashAddrSize]byte, capHint)
	for i := uint32(0); i < count; i++ {
		var k ContractVersionKey
		if rem, err = k.FromBytes(rem); err != nil {
			return nil, err
		}
		var h [HashAddrSize]byte
		if rem, err = bytesrepr.ReadArray(rem, h[:]); err != nil {
			return nil, err
		}
		p.Versions[k] = h
	}
	return rem, nil
}

// Package state defines the typed keys and values held in global state.
//
// Key and StoredValue are tagged unions; their canonical byte forms are
// produced by the bytesrepr codec and double as trie paths and hashed
// content respectively, so the tag numbering here is part of the wire
// format and must never change.
package state

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/quanta-labs/quanta-go/pkg/crypto/hash"
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
)

// KeyType represents the variant of a Key.
type KeyType byte

// Key type tags. Wire format, do not reorder.
const (
	AccountKeyT KeyType = 0x00
	HashKeyT    KeyType = 0x01
	URefKeyT    KeyType = 0x02
	LocalKeyT   KeyType = 0x03
)

// HashAddrSize is the size of a hash-addressed key payload in bytes.
const HashAddrSize = 32

// Key identifies an addressable location in global state. Its canonical
// bytes (tag byte followed by the variant payload) form the path used to
// descend the trie, which gives keys a total order: first by tag, then by
// payload bytes.
type Key struct {
	Type      KeyType
	Account   AccountHash
	Hash      [HashAddrSize]byte
	URef      URef
	LocalSeed [HashAddrSize]byte
	LocalHash [HashAddrSize]byte
}

// NewAccountKey returns a Key addressing an account record.
func NewAccountKey(h AccountHash) Key {
	return Key{Type: AccountKeyT, Account: h}
}

// NewHashKey returns a Key addressing hash-addressed data such as a
// stored contract.
func NewHashKey(h [HashAddrSize]byte) Key {
	return Key{Type: HashKeyT, Hash: h}
}

// NewURefKey returns a Key addressing the value behind an unforgeable
// reference.
func NewURefKey(u URef) Key {
	return Key{Type: URefKeyT, URef: u}
}

// NewLocalKey returns a Key for contract-local storage: the address is the
// hash of the contract's seed concatenated with the caller-chosen bytes,
// so two contracts can never collide on local keys.
func NewLocalKey(seed [HashAddrSize]byte, keyBytes []byte) Key {
	k := Key{Type: LocalKeyT, LocalSeed: seed}
	k.LocalHash = [HashAddrSize]byte(hash.Blake2b256(append(seed[:], keyBytes...)))
	return k
}

// WriteBytes implements bytesrepr.Serializable.
func (k Key) WriteBytes(sink []byte) ([]byte, error) {
	sink = bytesrepr.WriteU8(sink, byte(k.Type))
	switch k.Type {
	case AccountKeyT:
		return bytesrepr.WriteArray(sink, k.Account[:]), nil
	case HashKeyT:
		return bytesrepr.WriteArray(sink, k.Hash[:]), nil
	case URefKeyT:
		return k.URef.WriteBytes(sink)
	case LocalKeyT:
		sink = bytesrepr.WriteArray(sink, k.LocalSeed[:])
		return bytesrepr.WriteArray(sink, k.LocalHash[:]), nil
	default:
		return nil, bytesrepr.ErrFormatting
	}
}

// SerializedLength implements bytesrepr.Serializable.
func (k Key) SerializedLength() int {
	switch k.Type {
	case URefKeyT:
		return bytesrepr.U8SerializedLength + URefSerializedLength
	case LocalKeyT:
		return bytesrepr.U8SerializedLength + 2*HashAddrSize
	default:
		return bytesrepr.U8SerializedLength + HashAddrSize
	}
}

// FromBytes implements bytesrepr.Deserializable.
func (k *Key) FromBytes(data []byte) ([]byte, error) {
	tag, rem, err := bytesrepr.ReadU8(data)
	if err != nil {
		return nil, err
	}
	*k = Key{Type: KeyType(tag)}
	switch k.Type {
	case AccountKeyT:
		return bytesrepr.ReadArray(rem, k.Account[:])
	case HashKeyT:
		return bytesrepr.ReadArray(rem, k.Hash[:])
	case URefKeyT:
		return k.URef.FromBytes(rem)
	case LocalKeyT:
		if rem, err = bytesrepr.ReadArray(rem, k.LocalSeed[:]); err != nil {
			return nil, err
		}
		return bytesrepr.ReadArray(rem, k.LocalHash[:])
	default:
		return nil, bytesrepr.ErrFormatting
	}
}

// Bytes returns the canonical byte form of k, which is also its trie path.
func (k Key) Bytes() []byte {
	b, err := bytesrepr.Marshal(k)
	if err != nil {
		panic(fmt.Sprintf("key with invalid type %d", k.Type))
	}
	return b
}

// Equals returns true if both keys identify the same location.
func (k Key) Equals(other Key) bool {
	return k == other
}

// Compare performs three-way comparison on canonical bytes.
func (k Key) Compare(other Key) int {
	return bytes.Compare(k.Bytes(), other.Bytes())
}

// String returns the formatted form of k, parseable by ParseKey.
func (k Key) String() string {
	switch k.Type {
	case AccountKeyT:
		return "account-hash-" + hex.EncodeToString(k.Account[:])
	case HashKeyT:
		return "hash-" + hex.EncodeToString(k.Hash[:])
	case URefKeyT:
		return k.URef.String()
	case LocalKeyT:
		return "local-" + hex.EncodeToString(k.LocalSeed[:]) + "-" + hex.EncodeToString(k.LocalHash[:])
	default:
		return fmt.Sprintf("invalid-key-%d", k.Type)
	}
}

// ParseKey parses the formatted form produced by Key.String.
func ParseKey(s string) (Key, error) {
	switch {
	case strings.HasPrefix(s, "account-hash-"):
		var k Key
		if err := decodeFixedHex(strings.TrimPrefix(s, "account-hash-"), k.Account[:]); err != nil {
			return k, fmt.Errorf("invalid account key %q: %w", s, err)
		}
		k.Type = AccountKeyT
		return k, nil
	case strings.HasPrefix(s, "hash-"):
		var k Key
		if err := decodeFixedHex(strings.TrimPrefix(s, "hash-"), k.Hash[:]); err != nil {
			return k, fmt.Errorf("invalid hash key %q: %w", s, err)
		}
		k.Type = HashKeyT
		return k, nil
	case strings.HasPrefix(s, "uref-"):
		u, err := ParseURef(s)
		if err != nil {
			return Key{}, err
		}
		return NewURefKey(u), nil
	case strings.HasPrefix(s, "local-"):
		var k Key
		seedHex, hashHex, found := strings.Cut(strings.TrimPrefix(s, "local-"), "-")
		if !found {
			return k, fmt.Errorf("invalid local key %q", s)
		}
		if err := decodeFixedHex(seedHex, k.LocalSeed[:]); err != nil {
			return k, fmt.Errorf("invalid local key %q: %w", s, err)
		}
		if err := decodeFixedHex(hashHex, k.LocalHash[:]); err != nil {
			return k, fmt.Errorf("invalid local key %q: %w", s, err)
		}
		k.Type = LocalKeyT
		return k, nil
	default:
		return Key{}, fmt.Errorf("unknown key format %q", s)
	}
}

func decodeFixedHex(s string, out []byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(out) {
		return fmt.Errorf("expected %d bytes, got %d", len(out), len(b))
	}
	copy(out, b)
	return nil
}

// NamedKeys maps human-readable names to the keys a contract or account
// has stored. Serialized in ascending name order.
type NamedKeys map[string]Key

// WriteBytes implements bytesrepr.Serializable.
func (n NamedKeys) WriteBytes(sink []byte) ([]byte, error) {
	return bytesrepr.WriteStringMap(sink, map[string]Key(n))
}

// SerializedLength implements bytesrepr.Serializable.
func (n NamedKeys) SerializedLength() int {
	return bytesrepr.StringMapSize(map[string]Key(n))
}

// FromBytes implements bytesrepr.Deserializable.
func (n *NamedKeys) FromBytes(data []byte) ([]byte, error) {
	m, rem, err := bytesrepr.ReadStringMap[Key](data)
	if err != nil {
		return nil, err
	}
	*n = m
	return rem, nil
}

// Package hash contains the content hashing used to address global state.
package hash

import (
	"golang.org/x/crypto/blake2b"

	"github.com/quanta-labs/quanta-go/pkg/util"
)

// Hashable represents an object which can be hashed. Usually, these objects
// are serialized first and the hash is taken over canonical bytes.
type Hashable interface {
	Hash() util.Digest
}

// Blake2b256 hashes the incoming byte slice using the blake2b algorithm
// with a 256-bit digest.
func Blake2b256(data []byte) util.Digest {
	var d util.Digest
	h := blake2b.Sum256(data)
	copy(d[:], h[:])
	return d
}

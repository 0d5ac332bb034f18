// Package random provides seeded randomness helpers for tests.
package random

import (
	"math/rand"
	"time"

	"github.com/quanta-labs/quanta-go/pkg/util"
)

// Bytes returns a random byte slice of the given length.
func Bytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// Uint32 returns a random number in [min, max).
func Uint32(min, max int) uint32 {
	return uint32(min + rand.Intn(max-min))
}

// Digest returns a random digest.
func Digest() util.Digest {
	var d util.Digest
	copy(d[:], Bytes(util.DigestSize))
	return d
}

func init() {
	rand.Seed(time.Now().UTC().UnixNano())
}

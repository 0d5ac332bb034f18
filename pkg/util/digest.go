package util

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// DigestSize is the size of Digest in bytes.
const DigestSize = 32

// Digest is a 32-byte content address produced by hashing a value's
// canonical serialized form. Two semantically equal values always share
// a digest.
type Digest [DigestSize]uint8

// DigestDecodeString attempts to decode the given hex string into a Digest.
func DigestDecodeString(s string) (d Digest, err error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != DigestSize*2 {
		return d, fmt.Errorf("expected string size of %d got %d", DigestSize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, err
	}
	return DigestDecodeBytes(b)
}

// DigestDecodeBytes attempts to decode the given bytes into a Digest.
func DigestDecodeBytes(b []byte) (d Digest, err error) {
	if len(b) != DigestSize {
		return d, fmt.Errorf("expected []byte of size %d got %d", DigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Bytes returns a byte slice representation of d.
func (d Digest) Bytes() []byte {
	b := make([]byte, DigestSize)
	copy(b, d[:])
	return b
}

// Equals returns true if both Digest values are the same.
func (d Digest) Equals(other Digest) bool {
	return d == other
}

// Compare performs three-way comparison of d and other. Returns a negative
// value if d < other, zero if equal and a positive value otherwise.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// String implements the stringer interface.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// UnmarshalJSON implements the json unmarshaller interface.
func (d *Digest) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*d, err = DigestDecodeString(js)
	return err
}

// MarshalJSON implements the json marshaller interface.
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalYAML implements the yaml unmarshaller interface.
func (d *Digest) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	var err error
	*d, err = DigestDecodeString(s)
	return err
}

// MarshalYAML implements the yaml marshaller interface.
func (d Digest) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

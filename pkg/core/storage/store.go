package storage

import (
	"errors"
	"fmt"

	"github.com/quanta-labs/quanta-go/pkg/core/storage/dbconfig"
)

// KeyPrefix constants.
const (
	// DataTrie is used for trie node entries identified by their digest.
	DataTrie KeyPrefix = 0x03
	// DataTrieAux is used to store additional trie data like named
	// state roots.
	DataTrieAux KeyPrefix = 0x04
)

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

type (
	// Store is the underlying KV backend for global state data. The trie
	// layer treats it as an opaque persistent map with single-call
	// atomicity; it performs no transactions across calls.
	Store interface {
		// Get returns the value stored under key or ErrKeyNotFound.
		Get(key []byte) ([]byte, error)
		// Put stores value under key, overwriting any previous value.
		Put(key, value []byte) error
		// Has reports whether key is present.
		Has(key []byte) (bool, error)
		Close() error
	}

	// KeyPrefix is a constant byte added as a prefix for each key
	// stored.
	KeyPrefix uint8
)

// Bytes returns the bytes representation of KeyPrefix.
func (k KeyPrefix) Bytes() []byte {
	return []byte{byte(k)}
}

// AppendPrefix prefixes the given key bytes with k.
func AppendPrefix(k KeyPrefix, key []byte) []byte {
	full := make([]byte, 0, 1+len(key))
	full = append(full, byte(k))
	return append(full, key...)
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.InMemoryDB:
		store = NewMemoryStore()
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}

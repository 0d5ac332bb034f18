package trie

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/quanta-labs/quanta-go/pkg/core/storage"
	"github.com/quanta-labs/quanta-go/pkg/crypto/hash"
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
	"github.com/quanta-labs/quanta-go/pkg/util"
)

// CorruptionError is returned when bytes fetched for a trie node fail to
// decode. It means the backing store lost integrity, not that the caller
// asked for something absent.
type CorruptionError struct {
	Digest util.Digest
	Err    error
}

// Error implements the error interface.
func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupted trie node %s: %v", e.Digest, e.Err)
}

// Unwrap supports errors.Is/As.
func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// DefaultCacheSize is the node cache capacity used when the configuration
// does not set one.
const DefaultCacheSize = 10000

// Store persists trie nodes in a storage.Store under their content
// digest, with an LRU cache of decoded nodes in front. Nodes are
// immutable, so cached entries never go stale.
type Store struct {
	db    storage.Store
	cache *lru.Cache
	log   *zap.Logger
}

// NewStore creates a trie node store on top of db. A non-positive
// cacheSize falls back to DefaultCacheSize.
func NewStore(db storage.Store, cacheSize int, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache, log: log}, nil
}

// Get fetches and decodes the node stored under d. It returns
// storage.ErrKeyNotFound if no node has that digest and a CorruptionError
// if the stored bytes do not decode.
func (s *Store) Get(d util.Digest) (Node, error) {
	if n, ok := s.cache.Get(d); ok {
		return n.(Node), nil
	}
	data, err := s.db.Get(storage.AppendPrefix(storage.DataTrie, d.Bytes()))
	if err != nil {
		return nil, err
	}
	n, err := DecodeNode(data)
	if err != nil {
		s.log.Error("trie node does not decode",
			zap.Stringer("digest", d),
			zap.Int("size", len(data)),
			zap.Error(err))
		return nil, &CorruptionError{Digest: d, Err: err}
	}
	s.cache.Add(d, n)
	return n, nil
}

// Put stores n under the digest of its serialized form and returns that
// digest. Writing the same node twice is a no-op, which keeps Put
// idempotent across repeated inserts of identical subtrees.
func (s *Store) Put(n Node) (util.Digest, error) {
	data, err := bytesrepr.Marshal(n)
	if err != nil {
		return util.Digest{}, err
	}
	d := hash.Blake2b256(data)
	if _, ok := s.cache.Get(d); ok {
		return d, nil
	}
	key := storage.AppendPrefix(storage.DataTrie, d.Bytes())
	ok, err := s.db.Has(key)
	if err != nil {
		return util.Digest{}, err
	}
	if !ok {
		if err := s.db.Put(key, data); err != nil {
			return util.Digest{}, err
		}
	}
	s.cache.Add(d, n)
	return d, nil
}

// putPointer stores n and returns a pointer of the matching type.
func (s *Store) putPointer(n Node) (Pointer, error) {
	d, err := s.Put(n)
	if err != nil {
		return Pointer{}, err
	}
	return pointerTo(n, d), nil
}

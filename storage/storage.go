/*
Package storage provides the persistent registry for passports and
attribution certificates.

# Storage Organization

The registry uses a key-value database with prefixed namespaces:

## Passports
  - pp/ : modelID → Passport (CBOR)

## Attribution Certificates
  - cf/ : certificateID → AttributionCertificate (JSON)
  - cm/ : modelID + certificateID → nil (model to certificates index)

modelID keys are the 32 raw bytes of the model identity hash and
certificateID keys are the 16 raw bytes of the certificate UUID, so every
namespace iterates in a stable order without extra bookkeeping.
*/
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vocdoni/modelpass/db"
	"github.com/vocdoni/modelpass/db/prefixeddb"
	"github.com/vocdoni/modelpass/log"
)

var (
	ErrKeyAlreadyExists = errors.New("key already exists")
	ErrNotFound         = errors.New("not found")

	// Prefixes
	passportPrefix       = []byte("pp/")
	certificatePrefix    = []byte("cf/")
	certModelIndexPrefix = []byte("cm/")
)

// Storage manages the registry records. Reads go through an LRU cache and
// a single storage-wide mutex serializes compound operations.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
	cache      *lru.Cache[string, any]
}

// New creates a new Storage instance over database.
func New(database db.Database) *Storage {
	cache, err := lru.New[string, any](1000)
	if err != nil {
		log.Fatalf("could not create lru cache: %v", err)
	}
	return &Storage{db: database, cache: cache}
}

// Close closes the underlying database.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("could not close storage", "err", err.Error())
	}
}

// Counts returns the number of stored passports and certificates.
func (s *Storage) Counts() (passports, certificates int, err error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	for _, count := range []struct {
		prefix []byte
		out    *int
	}{
		{passportPrefix, &passports},
		{certificatePrefix, &certificates},
	} {
		if err := prefixeddb.NewPrefixedReader(s.db, count.prefix).Iterate(nil, func(_, _ []byte) bool {
			*count.out++
			return true
		}); err != nil {
			return 0, 0, fmt.Errorf("could not count %s artifacts: %w", count.prefix, err)
		}
	}
	return passports, certificates, nil
}

// setArtifact encodes and stores an artifact under prefix and key. The
// default encoding is CBOR unless a specific one is given.
func (s *Storage) setArtifact(prefix, key []byte, artifact any, encoding ...ArtifactEncoding) error {
	data, err := EncodeArtifact(artifact, encoding...)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedDatabase(s.db, prefix).WriteTx()
	defer wTx.Discard()
	if err := wTx.Set(key, data); err != nil {
		return err
	}
	return wTx.Commit()
}

// getArtifact retrieves and decodes the artifact stored under prefix and
// key. It returns ErrNotFound when the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any, encoding ...ArtifactEncoding) error {
	data, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get(key)
	if err != nil {
		return ErrNotFound
	}
	if err := DecodeArtifact(data, out, encoding...); err != nil {
		return fmt.Errorf("could not decode artifact: %w", err)
	}
	return nil
}

// listArtifacts retrieves all the keys under a given prefix.
func (s *Storage) listArtifacts(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	if err := prefixeddb.NewPrefixedReader(s.db, prefix).Iterate(nil, func(k, _ []byte) bool {
		keys = append(keys, bytes.Clone(k))
		return true
	}); err != nil {
		return nil, err
	}
	return keys, nil
}

func cacheKey(prefix, key []byte) string {
	return string(prefix) + string(key)
}

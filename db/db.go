// Package db defines the key-value database abstraction behind the
// registry: a prefix-iterable Database with staged WriteTx transactions
// and pluggable backends.
package db

import "errors"

var (
	// ErrKeyNotFound is returned by Get when the key is not in the database.
	ErrKeyNotFound = errors.New("key not found")
	// ErrConflict is returned by Commit when the transaction lost a race
	// against a concurrent one. The caller may retry from scratch.
	ErrConflict = errors.New("transaction conflict")
)

// Available backend types, accepted by metadb.New.
const (
	TypePebble  = "pebble"
	TypeLevelDB = "leveldb"
	TypeInMem   = "inmem"
)

// Options configures a backend at open time.
type Options struct {
	Path string
}

// Reader is the read-only side of a database or transaction.
type Reader interface {
	// Get returns the value of key, or ErrKeyNotFound.
	Get(key []byte) ([]byte, error)
	// Iterate calls callback with every key-value pair whose key starts
	// with prefix, in lexicographic key order, until callback returns
	// false. The key passed to the callback does not include the prefix.
	// Callbacks must not retain the key or value slices.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
}

// WriteTx is a set of staged writes. The writes are visible to reads in
// the same transaction and become durable on Commit. Every WriteTx must
// end with Commit or Discard, after which it is unusable.
type WriteTx interface {
	Reader

	Set(key, value []byte) error
	Delete(key []byte) error
	// Apply copies the staged writes of other into this transaction.
	// Backends only accept transactions of their own type, possibly
	// wrapped by prefixeddb.
	Apply(other WriteTx) error
	Commit() error
	Discard()
}

// Database is a prefix-iterable key-value store.
type Database interface {
	Reader

	WriteTx() WriteTx
	Close() error
	// Compact triggers storage compaction on backends that support it.
	Compact() error
}

// UnwrapWriteTx peels any prefixing wrappers off tx, so backends can
// recognize their own transaction type in Apply.
func UnwrapWriteTx(tx WriteTx) WriteTx {
	for {
		unwrapper, ok := tx.(interface{ UnwrapWriteTx() WriteTx })
		if !ok {
			return tx
		}
		tx = unwrapper.UnwrapWriteTx()
	}
}

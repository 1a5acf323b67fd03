// Package inmemory implements an ephemeral db.Database used by tests and
// the inmem backend. Transactions are optimistic: Commit returns
// db.ErrConflict when a key the transaction observed changed underneath
// it.
package inmemory

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/vocdoni/modelpass/db"
)

// Database keeps values and a per-key version counter. Deleting a key
// removes its value but keeps bumping its version, so conflicts are still
// detected across deletes.
type Database struct {
	mu       sync.RWMutex
	values   map[string][]byte
	versions map[string]uint64
	clock    uint64
}

var _ db.Database = (*Database)(nil)

// New returns an empty in-memory database. Options are ignored.
func New(_ db.Options) (*Database, error) {
	return &Database{
		values:   make(map[string][]byte),
		versions: make(map[string]uint64),
	}, nil
}

func (d *Database) Close() error   { return nil }
func (d *Database) Compact() error { return nil }

func (d *Database) Get(key []byte) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	value, ok := d.values[string(key)]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return bytes.Clone(value), nil
}

func (d *Database) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	d.mu.RLock()
	entries := snapshotPrefix(d.values, prefix)
	d.mu.RUnlock()
	iterateSorted(entries, callback)
	return nil
}

func (d *Database) WriteTx() db.WriteTx {
	return &WriteTx{
		parent: d,
		writes: make(map[string]*[]byte),
		reads:  make(map[string]uint64),
	}
}

// bump applies one write under the parent lock.
func (d *Database) bump(key string, value []byte, deleted bool) {
	d.clock++
	d.versions[key] = d.clock
	if deleted {
		delete(d.values, key)
		return
	}
	d.values[key] = bytes.Clone(value)
}

// WriteTx stages writes and records the version of every key it observes.
// Commit validates the recorded versions against the parent before
// applying anything.
type WriteTx struct {
	parent *Database
	writes map[string]*[]byte // nil value marks a staged delete
	reads  map[string]uint64
	done   bool
}

var _ db.WriteTx = (*WriteTx)(nil)

// observe records the parent version of key the first time the
// transaction touches it.
func (tx *WriteTx) observe(key string) {
	if _, ok := tx.reads[key]; ok {
		return
	}
	tx.parent.mu.RLock()
	tx.reads[key] = tx.parent.versions[key]
	tx.parent.mu.RUnlock()
}

func (tx *WriteTx) Get(key []byte) ([]byte, error) {
	strKey := string(key)
	if pending, ok := tx.writes[strKey]; ok {
		if pending == nil {
			return nil, db.ErrKeyNotFound
		}
		return bytes.Clone(*pending), nil
	}
	tx.observe(strKey)
	return tx.parent.Get(key)
}

func (tx *WriteTx) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	tx.parent.mu.RLock()
	entries := snapshotPrefix(tx.parent.values, prefix)
	observed := make([]string, 0, len(entries))
	for suffix := range entries {
		observed = append(observed, string(prefix)+suffix)
	}
	tx.parent.mu.RUnlock()
	for _, key := range observed {
		tx.observe(key)
	}

	for key, pending := range tx.writes {
		if !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		suffix := key[len(prefix):]
		if pending == nil {
			delete(entries, suffix)
			continue
		}
		entries[suffix] = bytes.Clone(*pending)
	}
	iterateSorted(entries, callback)
	return nil
}

func (tx *WriteTx) Set(key, value []byte) error {
	if tx.done {
		return fmt.Errorf("write tx already committed or discarded")
	}
	strKey := string(key)
	tx.observe(strKey)
	valCopy := bytes.Clone(value)
	tx.writes[strKey] = &valCopy
	return nil
}

func (tx *WriteTx) Delete(key []byte) error {
	if tx.done {
		return fmt.Errorf("write tx already committed or discarded")
	}
	strKey := string(key)
	tx.observe(strKey)
	tx.writes[strKey] = nil
	return nil
}

func (tx *WriteTx) Apply(other db.WriteTx) error {
	otherTx, ok := db.UnwrapWriteTx(other).(*WriteTx)
	if !ok {
		return fmt.Errorf("apply: incompatible write tx type %T", other)
	}
	for key, pending := range otherTx.writes {
		tx.observe(key)
		if pending == nil {
			tx.writes[key] = nil
			continue
		}
		valCopy := bytes.Clone(*pending)
		tx.writes[key] = &valCopy
	}
	return nil
}

func (tx *WriteTx) Commit() error {
	if tx.done {
		return fmt.Errorf("write tx already committed or discarded")
	}
	tx.parent.mu.Lock()
	defer tx.parent.mu.Unlock()

	for key, version := range tx.reads {
		if tx.parent.versions[key] != version {
			return db.ErrConflict
		}
	}
	for key, pending := range tx.writes {
		if pending == nil {
			tx.parent.bump(key, nil, true)
			continue
		}
		tx.parent.bump(key, *pending, false)
	}
	tx.done = true
	return nil
}

func (tx *WriteTx) Discard() {
	tx.writes = map[string]*[]byte{}
	tx.reads = map[string]uint64{}
	tx.done = true
}

// snapshotPrefix copies every entry under prefix, keyed by the part of the
// key after the prefix. The caller holds the read lock.
func snapshotPrefix(values map[string][]byte, prefix []byte) map[string][]byte {
	entries := make(map[string][]byte)
	for key, value := range values {
		if !bytes.HasPrefix([]byte(key), prefix) {
			continue
		}
		entries[key[len(prefix):]] = bytes.Clone(value)
	}
	return entries
}

func iterateSorted(entries map[string][]byte, callback func(key, value []byte) bool) {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !callback([]byte(key), entries[key]) {
			break
		}
	}
}

// Package goleveldb implements db.Database on syndtr/goleveldb, a pure-Go
// backend for platforms where pebble is not wanted.
package goleveldb

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vocdoni/modelpass/db"
)

// GolevelDB wraps a leveldb database.
type GolevelDB struct {
	db *leveldb.DB
}

var _ db.Database = (*GolevelDB)(nil)

// New opens or creates a leveldb database at opts.Path, recovering the
// store when it was left corrupted.
func New(opts db.Options) (*GolevelDB, error) {
	database, err := leveldb.OpenFile(opts.Path, nil)
	if ldberrors.IsCorrupted(err) {
		database, err = leveldb.RecoverFile(opts.Path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open leveldb: %w", err)
	}
	return &GolevelDB{db: database}, nil
}

func (d *GolevelDB) Close() error {
	return d.db.Close()
}

func (d *GolevelDB) Compact() error {
	return d.db.CompactRange(util.Range{})
}

func (d *GolevelDB) Get(key []byte) ([]byte, error) {
	value, err := d.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (d *GolevelDB) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	iter := d.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		if !callback(iter.Key()[len(prefix):], iter.Value()) {
			break
		}
	}
	return iter.Error()
}

func (d *GolevelDB) WriteTx() db.WriteTx {
	return &WriteTx{ldb: d, writes: make(map[string]*[]byte)}
}

// WriteTx stages writes in memory and lands them in a single leveldb
// batch on Commit. Like the pebble backend it is a write batch without
// conflict detection, never returning db.ErrConflict.
type WriteTx struct {
	ldb    *GolevelDB
	writes map[string]*[]byte // nil value marks a staged delete
	done   bool
}

var _ db.WriteTx = (*WriteTx)(nil)

func (tx *WriteTx) Get(key []byte) ([]byte, error) {
	if pending, ok := tx.writes[string(key)]; ok {
		if pending == nil {
			return nil, db.ErrKeyNotFound
		}
		return bytes.Clone(*pending), nil
	}
	return tx.ldb.Get(key)
}

func (tx *WriteTx) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	entries := map[string][]byte{}
	if err := tx.ldb.Iterate(prefix, func(k, v []byte) bool {
		entries[string(k)] = bytes.Clone(v)
		return true
	}); err != nil {
		return err
	}
	for k, v := range tx.writes {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		suffix := k[len(prefix):]
		if v == nil {
			delete(entries, suffix)
			continue
		}
		entries[suffix] = bytes.Clone(*v)
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !callback([]byte(k), entries[k]) {
			break
		}
	}
	return nil
}

func (tx *WriteTx) Set(key, value []byte) error {
	if tx.done {
		return fmt.Errorf("write tx already committed or discarded")
	}
	valCopy := bytes.Clone(value)
	tx.writes[string(key)] = &valCopy
	return nil
}

func (tx *WriteTx) Delete(key []byte) error {
	if tx.done {
		return fmt.Errorf("write tx already committed or discarded")
	}
	tx.writes[string(key)] = nil
	return nil
}

func (tx *WriteTx) Apply(other db.WriteTx) error {
	otherTx, ok := db.UnwrapWriteTx(other).(*WriteTx)
	if !ok {
		return fmt.Errorf("apply: incompatible write tx type %T", other)
	}
	for k, v := range otherTx.writes {
		if v == nil {
			tx.writes[k] = nil
			continue
		}
		valCopy := bytes.Clone(*v)
		tx.writes[k] = &valCopy
	}
	return nil
}

func (tx *WriteTx) Commit() error {
	if tx.done {
		return fmt.Errorf("write tx already committed or discarded")
	}
	batch := new(leveldb.Batch)
	for k, v := range tx.writes {
		if v == nil {
			batch.Delete([]byte(k))
			continue
		}
		batch.Put([]byte(k), *v)
	}
	tx.done = true
	return tx.ldb.db.Write(batch, nil)
}

func (tx *WriteTx) Discard() {
	tx.writes = map[string]*[]byte{}
	tx.done = true
}

// Package prefixeddb namespaces a db.Database under a fixed key prefix,
// so independent stores can share one underlying database.
package prefixeddb

import (
	"slices"

	"github.com/vocdoni/modelpass/db"
)

// PrefixedDatabase exposes the keys of an underlying database that start
// with a prefix, with the prefix stripped. Closing or compacting it acts
// on the underlying database.
type PrefixedDatabase struct {
	db     db.Database
	prefix []byte
}

var _ db.Database = (*PrefixedDatabase)(nil)

func NewPrefixedDatabase(database db.Database, prefix []byte) *PrefixedDatabase {
	return &PrefixedDatabase{db: database, prefix: prefix}
}

func (d *PrefixedDatabase) Close() error   { return d.db.Close() }
func (d *PrefixedDatabase) Compact() error { return d.db.Compact() }

func (d *PrefixedDatabase) Get(key []byte) ([]byte, error) {
	return d.db.Get(slices.Concat(d.prefix, key))
}

func (d *PrefixedDatabase) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return d.db.Iterate(slices.Concat(d.prefix, prefix), callback)
}

func (d *PrefixedDatabase) WriteTx() db.WriteTx {
	return &PrefixedWriteTx{tx: d.db.WriteTx(), prefix: d.prefix}
}

// PrefixedReader is the read-only counterpart of PrefixedDatabase.
type PrefixedReader struct {
	reader db.Reader
	prefix []byte
}

var _ db.Reader = (*PrefixedReader)(nil)

func NewPrefixedReader(reader db.Reader, prefix []byte) *PrefixedReader {
	return &PrefixedReader{reader: reader, prefix: prefix}
}

func (r *PrefixedReader) Get(key []byte) ([]byte, error) {
	return r.reader.Get(slices.Concat(r.prefix, key))
}

func (r *PrefixedReader) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return r.reader.Iterate(slices.Concat(r.prefix, prefix), callback)
}

// PrefixedWriteTx stages prefixed writes in an underlying transaction.
// The staged keys carry the prefix, so applying it to an unprefixed
// transaction copies them verbatim.
type PrefixedWriteTx struct {
	tx     db.WriteTx
	prefix []byte
}

var _ db.WriteTx = (*PrefixedWriteTx)(nil)

// NewPrefixedWriteTx wraps an existing transaction under a prefix, so one
// commit can span several namespaces atomically.
func NewPrefixedWriteTx(tx db.WriteTx, prefix []byte) *PrefixedWriteTx {
	return &PrefixedWriteTx{tx: tx, prefix: prefix}
}

// UnwrapWriteTx returns the underlying transaction.
func (t *PrefixedWriteTx) UnwrapWriteTx() db.WriteTx { return t.tx }

func (t *PrefixedWriteTx) Get(key []byte) ([]byte, error) {
	return t.tx.Get(slices.Concat(t.prefix, key))
}

func (t *PrefixedWriteTx) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return t.tx.Iterate(slices.Concat(t.prefix, prefix), callback)
}

func (t *PrefixedWriteTx) Set(key, value []byte) error {
	return t.tx.Set(slices.Concat(t.prefix, key), value)
}

func (t *PrefixedWriteTx) Delete(key []byte) error {
	return t.tx.Delete(slices.Concat(t.prefix, key))
}

func (t *PrefixedWriteTx) Apply(other db.WriteTx) error {
	return t.tx.Apply(other)
}

func (t *PrefixedWriteTx) Commit() error { return t.tx.Commit() }
func (t *PrefixedWriteTx) Discard()      { t.tx.Discard() }

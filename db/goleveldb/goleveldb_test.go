package goleveldb

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/modelpass/db"
	"github.com/vocdoni/modelpass/db/internal/dbtest"
	"github.com/vocdoni/modelpass/db/prefixeddb"
)

func TestWriteTx(t *testing.T) {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)

	dbtest.TestWriteTx(t, database)
}

func TestIterate(t *testing.T) {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)

	dbtest.TestIterate(t, database)
}

func TestWriteTxApply(t *testing.T) {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)

	dbtest.TestWriteTxApply(t, database)
}

func TestWriteTxApplyPrefixed(t *testing.T) {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)

	prefixed := prefixeddb.NewPrefixedDatabase(database, []byte("one"))
	dbtest.TestWriteTxApplyPrefixed(t, database, prefixed)
}

func TestReopen(t *testing.T) {
	c := qt.New(t)
	path := t.TempDir()

	database, err := New(db.Options{Path: path})
	c.Assert(err, qt.IsNil)
	wTx := database.WriteTx()
	c.Assert(wTx.Set([]byte("persistent"), []byte("value")), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)
	wTx.Discard()
	c.Assert(database.Close(), qt.IsNil)

	database, err = New(db.Options{Path: path})
	c.Assert(err, qt.IsNil)
	defer func() { _ = database.Close() }()

	v, err := database.Get([]byte("persistent"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(v), qt.Equals, "value")
}

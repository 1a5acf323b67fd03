// Package dbtest holds the conformance suite shared by every db.Database
// backend.
package dbtest

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/modelpass/db"
)

// TestWriteTx exercises the basic lifecycle of a transaction: staged
// reads, commit visibility and deletes.
func TestWriteTx(t *testing.T, database db.Database) {
	wTx := database.WriteTx()
	defer wTx.Discard()

	_, err := wTx.Get([]byte("a"))
	qt.Assert(t, err, qt.Equals, db.ErrKeyNotFound)

	qt.Assert(t, wTx.Set([]byte("a"), []byte("b")), qt.IsNil)

	v, err := wTx.Get([]byte("a"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(v), qt.Equals, "b")

	// Not visible outside the tx until commit.
	_, err = database.Get([]byte("a"))
	qt.Assert(t, err, qt.Equals, db.ErrKeyNotFound)

	qt.Assert(t, wTx.Commit(), qt.IsNil)

	v, err = database.Get([]byte("a"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(v), qt.Equals, "b")

	wTx = database.WriteTx()
	defer wTx.Discard()

	qt.Assert(t, wTx.Delete([]byte("a")), qt.IsNil)
	_, err = wTx.Get([]byte("a"))
	qt.Assert(t, err, qt.Equals, db.ErrKeyNotFound)
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	_, err = database.Get([]byte("a"))
	qt.Assert(t, err, qt.Equals, db.ErrKeyNotFound)
}

// TestIterate pins the iteration order, the early stop and the
// prefix-stripping contract.
func TestIterate(t *testing.T, database db.Database) {
	wTx := database.WriteTx()
	defer wTx.Discard()
	for _, kv := range [][2]string{
		{"aa1", "v1"}, {"aa2", "v2"}, {"ab1", "v3"}, {"b1", "v4"},
	} {
		qt.Assert(t, wTx.Set([]byte(kv[0]), []byte(kv[1])), qt.IsNil)
	}
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	var keys, values []string
	err := database.Iterate([]byte("aa"), func(k, v []byte) bool {
		keys = append(keys, string(k))
		values = append(values, string(v))
		return true
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, keys, qt.DeepEquals, []string{"1", "2"})
	qt.Assert(t, values, qt.DeepEquals, []string{"v1", "v2"})

	keys = nil
	err = database.Iterate(nil, func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, keys, qt.DeepEquals, []string{"aa1", "aa2", "ab1", "b1"})

	visits := 0
	err = database.Iterate(nil, func(_, _ []byte) bool {
		visits++
		return false
	})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, visits, qt.Equals, 1)
}

// TestWriteTxApply checks that applying one transaction onto another
// carries its staged writes.
func TestWriteTxApply(t *testing.T, database db.Database) {
	wTx1 := database.WriteTx()
	defer wTx1.Discard()
	qt.Assert(t, wTx1.Set([]byte("key1"), []byte("value1")), qt.IsNil)

	wTx2 := database.WriteTx()
	defer wTx2.Discard()
	qt.Assert(t, wTx2.Set([]byte("key2"), []byte("value2")), qt.IsNil)

	qt.Assert(t, wTx1.Apply(wTx2), qt.IsNil)
	qt.Assert(t, wTx1.Commit(), qt.IsNil)

	v1, err := database.Get([]byte("key1"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(v1), qt.Equals, "value1")
	v2, err := database.Get([]byte("key2"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(v2), qt.Equals, "value2")
}

// TestWriteTxApplyPrefixed checks that a prefixed transaction applied to
// an unprefixed one keeps its keys under the prefix.
func TestWriteTxApplyPrefixed(t *testing.T, database, prefixedDB db.Database) {
	pTx := prefixedDB.WriteTx()
	defer pTx.Discard()
	qt.Assert(t, pTx.Set([]byte("key"), []byte("value")), qt.IsNil)

	wTx := database.WriteTx()
	defer wTx.Discard()
	qt.Assert(t, wTx.Apply(pTx), qt.IsNil)
	qt.Assert(t, wTx.Commit(), qt.IsNil)

	v, err := prefixedDB.Get([]byte("key"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(v), qt.Equals, "value")
}

// TestConcurrentWriteTx checks optimistic conflict detection. Only
// backends with real transactions pass it; write-batch backends skip it.
func TestConcurrentWriteTx(t *testing.T, database db.Database) {
	wTx1 := database.WriteTx()
	defer wTx1.Discard()
	wTx2 := database.WriteTx()
	defer wTx2.Discard()

	_, err := wTx1.Get([]byte("contested"))
	qt.Assert(t, err, qt.Equals, db.ErrKeyNotFound)
	qt.Assert(t, wTx1.Set([]byte("contested"), []byte("one")), qt.IsNil)

	_, err = wTx2.Get([]byte("contested"))
	qt.Assert(t, err, qt.Equals, db.ErrKeyNotFound)
	qt.Assert(t, wTx2.Set([]byte("contested"), []byte("two")), qt.IsNil)

	qt.Assert(t, wTx1.Commit(), qt.IsNil)
	qt.Assert(t, wTx2.Commit(), qt.Equals, db.ErrConflict)

	v, err := database.Get([]byte("contested"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(v), qt.Equals, "one")
}

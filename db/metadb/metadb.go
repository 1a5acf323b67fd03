// Package metadb opens a db.Database by backend type name.
package metadb

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/vocdoni/modelpass/db"
	"github.com/vocdoni/modelpass/db/goleveldb"
	"github.com/vocdoni/modelpass/db/inmemory"
	"github.com/vocdoni/modelpass/db/pebbledb"
)

// New opens a database of the given type under dir. Each backend gets its
// own subdirectory so switching types never mixes on-disk formats.
func New(typ, dir string) (db.Database, error) {
	switch typ {
	case db.TypePebble:
		return pebbledb.New(db.Options{Path: filepath.Join(dir, "pebble")})
	case db.TypeLevelDB:
		return goleveldb.New(db.Options{Path: filepath.Join(dir, "leveldb")})
	case db.TypeInMem:
		return inmemory.New(db.Options{})
	default:
		return nil, fmt.Errorf("invalid db type %q (available: %s, %s, %s)",
			typ, db.TypePebble, db.TypeLevelDB, db.TypeInMem)
	}
}

// NewTest returns a pebble database in a test temporary directory, closed
// on test cleanup.
func NewTest(tb testing.TB) db.Database {
	database, err := New(db.TypePebble, tb.TempDir())
	if err != nil {
		tb.Fatalf("could not create test db: %v", err)
	}
	tb.Cleanup(func() {
		if err := database.Close(); err != nil {
			tb.Errorf("could not close test db: %v", err)
		}
	})
	return database
}

// Package config provides the shared defaults for the modelpass daemon and
// CLI: the proving toolkit binary, the registry location and the API
// listener.
package config

import (
	"time"

	"github.com/vocdoni/modelpass/db"
)

const (
	// DefaultToolkitBin is the proving toolkit binary, resolved through
	// PATH unless overridden with an absolute path.
	DefaultToolkitBin = "ezkl"
	// MinToolkitVersion is the oldest toolkit release the pipeline is known
	// to work with. Older versions are warned about, never rejected, since
	// passports record the version they were built with.
	MinToolkitVersion = "v22.0.0"
	// DefaultToolkitTimeout bounds each toolkit capability invocation. Zero
	// keeps the reference behavior where a hung toolkit blocks the run.
	DefaultToolkitTimeout = time.Duration(0)

	// DefaultAPIHost is the API listener address.
	DefaultAPIHost = "0.0.0.0"
	// DefaultAPIPort is the API listener port.
	DefaultAPIPort = 9090

	// DefaultDatadir is the registry directory, prefixed with the user's
	// home directory.
	DefaultDatadir = ".modelpass"
	// DefaultDBType is the database backend for the registry.
	DefaultDBType = db.TypePebble
)

// AvailableDBTypes contains the database backends selectable at startup.
var AvailableDBTypes = []string{db.TypePebble, db.TypeLevelDB, db.TypeInMem}

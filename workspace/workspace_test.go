package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestWorkspaceLifecycle(t *testing.T) {
	c := qt.New(t)

	c.Run("create and close removes directory", func(c *qt.C) {
		ws, err := New()
		c.Assert(err, qt.IsNil)
		c.Assert(strings.Contains(ws.Root(), "modelpass-ws-"), qt.IsTrue)

		info, err := os.Stat(ws.Root())
		c.Assert(err, qt.IsNil)
		c.Assert(info.IsDir(), qt.IsTrue)

		c.Assert(os.WriteFile(ws.Settings(), []byte("{}"), 0o600), qt.IsNil)
		c.Assert(ws.Close(), qt.IsNil)

		_, err = os.Stat(ws.Root())
		c.Assert(os.IsNotExist(err), qt.IsTrue)
	})

	c.Run("preserve keeps directory across close", func(c *qt.C) {
		ws, err := New()
		c.Assert(err, qt.IsNil)

		ws.Preserve()
		c.Assert(ws.Close(), qt.IsNil)

		info, err := os.Stat(ws.Root())
		c.Assert(err, qt.IsNil)
		c.Assert(info.IsDir(), qt.IsTrue)
		c.Assert(os.RemoveAll(ws.Root()), qt.IsNil)
	})

	c.Run("unique roots per run", func(c *qt.C) {
		a, err := New()
		c.Assert(err, qt.IsNil)
		defer func() { _ = a.Close() }()

		b, err := New()
		c.Assert(err, qt.IsNil)
		defer func() { _ = b.Close() }()

		c.Assert(a.Root(), qt.Not(qt.Equals), b.Root())
	})
}

func TestWorkspacePaths(t *testing.T) {
	c := qt.New(t)

	ws, err := New()
	c.Assert(err, qt.IsNil)
	defer func() { _ = ws.Close() }()

	testCases := []struct {
		name string
		got  string
		file string
	}{
		{name: "settings", got: ws.Settings(), file: "settings.json"},
		{name: "srs", got: ws.SRS(), file: "kzg.srs"},
		{name: "compiled model", got: ws.CompiledModel(), file: "model.compiled"},
		{name: "proving key", got: ws.ProvingKey(), file: "pk.key"},
		{name: "verifying key", got: ws.VerifyingKey(), file: "vk.key"},
		{name: "witness", got: ws.Witness(), file: "witness.json"},
		{name: "proof", got: ws.Proof(), file: "proof.json"},
	}

	for _, tc := range testCases {
		tc := tc
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(tc.got, qt.Equals, filepath.Join(ws.Root(), tc.file))
		})
	}
}

func TestSweep(t *testing.T) {
	c := qt.New(t)

	// A stale workspace, backdated beyond the sweep age.
	stale, err := os.MkdirTemp("", dirPrefix)
	c.Assert(err, qt.IsNil)
	old := time.Now().Add(-2 * time.Hour)
	c.Assert(os.Chtimes(stale, old, old), qt.IsNil)

	// A fresh workspace that must survive.
	fresh, err := New()
	c.Assert(err, qt.IsNil)
	defer func() { _ = fresh.Close() }()

	removed, err := Sweep(time.Hour)
	c.Assert(err, qt.IsNil)
	c.Assert(removed >= 1, qt.IsTrue)

	_, err = os.Stat(stale)
	c.Assert(os.IsNotExist(err), qt.IsTrue)

	_, err = os.Stat(fresh.Root())
	c.Assert(err, qt.IsNil)
}

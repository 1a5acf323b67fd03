package log_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/modelpass/log"
)

func TestInitLevelAndErrorOutput(t *testing.T) {
	c := qt.New(t)

	logPath := filepath.Join(t.TempDir(), "out.log")
	errBuf := &bytes.Buffer{}
	log.Init(log.LogLevelInfo, logPath, errBuf)
	defer log.Init(log.LogLevelError, "stderr", nil)

	c.Assert(log.Level(), qt.Equals, log.LogLevelInfo)

	log.Debug("below the configured level")
	log.Info("passport registered")
	log.Warnw("toolkit is slow", "capability", "prove")

	data, err := os.ReadFile(logPath)
	c.Assert(err, qt.IsNil)
	out := string(data)
	c.Assert(strings.Contains(out, "passport registered"), qt.IsTrue)
	c.Assert(strings.Contains(out, "toolkit is slow"), qt.IsTrue)
	c.Assert(strings.Contains(out, "below the configured level"), qt.IsFalse)

	// Only warning-or-higher lines reach the error output.
	errOut := errBuf.String()
	c.Assert(strings.Contains(errOut, "toolkit is slow"), qt.IsTrue)
	c.Assert(strings.Contains(errOut, "passport registered"), qt.IsFalse)
}

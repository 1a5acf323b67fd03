// Package workspace manages the ephemeral directories holding the
// intermediate artifacts of a single pipeline run. Every run gets its own
// uniquely named directory, so concurrent runs never share files.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vocdoni/modelpass/log"
)

// dirPrefix marks workspace directories inside the system temp directory.
const dirPrefix = "modelpass-ws-"

// Artifact file names, one per pipeline stage. Callers never invent paths,
// they use the accessors below so every stage agrees on the layout.
const (
	SettingsFile      = "settings.json"
	SRSFile           = "kzg.srs"
	CompiledModelFile = "model.compiled"
	ProvingKeyFile    = "pk.key"
	VerifyingKeyFile  = "vk.key"
	WitnessFile       = "witness.json"
	ProofFile         = "proof.json"
)

// Workspace is the scoped directory for one pipeline run. Acquire it with
// New, release it with Close. A workspace marked with Preserve survives
// Close so a failed or canceled run can be inspected.
type Workspace struct {
	root      string
	preserved bool
}

// New creates a fresh workspace directory under the system temp directory.
func New() (*Workspace, error) {
	root, err := os.MkdirTemp("", dirPrefix)
	if err != nil {
		return nil, fmt.Errorf("could not create workspace: %w", err)
	}
	log.Debugw("workspace created", "path", root)
	return &Workspace{root: root}, nil
}

// Root returns the workspace directory path.
func (w *Workspace) Root() string {
	return w.root
}

// Path returns the path of an artifact file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.root, name)
}

// Settings returns the path of the circuit settings artifact.
func (w *Workspace) Settings() string { return w.Path(SettingsFile) }

// SRS returns the path of the structured reference string artifact.
func (w *Workspace) SRS() string { return w.Path(SRSFile) }

// CompiledModel returns the path of the compiled circuit artifact.
func (w *Workspace) CompiledModel() string { return w.Path(CompiledModelFile) }

// ProvingKey returns the path of the proving key artifact.
func (w *Workspace) ProvingKey() string { return w.Path(ProvingKeyFile) }

// VerifyingKey returns the path of the verification key artifact.
func (w *Workspace) VerifyingKey() string { return w.Path(VerifyingKeyFile) }

// Witness returns the path of the witness artifact.
func (w *Workspace) Witness() string { return w.Path(WitnessFile) }

// Proof returns the path of the proof artifact.
func (w *Workspace) Proof() string { return w.Path(ProofFile) }

// Preserve marks the workspace to survive Close. Canceled and failed runs
// use it to leave their artifacts on disk for inspection.
func (w *Workspace) Preserve() {
	w.preserved = true
}

// Close releases the workspace. Preserved workspaces are kept and their
// location logged; everything else is removed from disk.
func (w *Workspace) Close() error {
	if w.preserved {
		log.Warnw("workspace preserved for inspection", "path", w.root)
		return nil
	}
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("could not remove workspace %s: %w", w.root, err)
	}
	return nil
}

// Sweep removes leftover workspace directories older than maxAge from the
// system temp directory. Preserved workspaces accumulate across crashed or
// canceled runs; long-lived processes sweep them at startup. It returns the
// number of directories removed.
func Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		return 0, fmt.Errorf("could not read temp directory: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) < maxAge {
			continue
		}
		path := filepath.Join(os.TempDir(), entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Warnw("could not remove stale workspace", "path", path, "err", err.Error())
			continue
		}
		log.Debugw("stale workspace removed", "path", path)
		removed++
	}
	return removed, nil
}

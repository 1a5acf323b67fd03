// Package attribution implements the model identity pipeline: building
// passports, proving attribution certificates and verifying certificates
// against passports, all orchestrated around the external proving toolkit.
package attribution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/toolkit"
	"github.com/vocdoni/modelpass/types"
	"github.com/vocdoni/modelpass/workspace"
)

// ModelExtension is the only model file format the pipeline accepts.
const ModelExtension = ".onnx"

// Pipeline runs the identity and attribution operations. It is stateless
// apart from the toolkit handle, so a single Pipeline serves concurrent
// runs, each in its own workspace.
type Pipeline struct {
	toolkit           *toolkit.Toolkit
	minToolkitVersion string
}

// New returns a Pipeline around tk. minToolkitVersion, when not empty, is
// the lowest toolkit version the pipeline accepts without complaint; older
// versions only log a warning, they never fail a run.
func New(tk *toolkit.Toolkit, minToolkitVersion string) *Pipeline {
	return &Pipeline{toolkit: tk, minToolkitVersion: minToolkitVersion}
}

// Toolkit returns the toolkit handle the pipeline runs on.
func (p *Pipeline) Toolkit() *toolkit.Toolkit {
	return p.toolkit
}

// checkModel validates the model file before any toolkit work starts. It
// returns the model size in bytes.
func checkModel(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, modelReadError(path, err)
	}
	if info.IsDir() {
		return 0, modelReadError(path, fmt.Errorf("is a directory"))
	}
	if !strings.EqualFold(filepath.Ext(path), ModelExtension) {
		return 0, modelReadError(path, fmt.Errorf("not an %s model", ModelExtension))
	}
	return info.Size(), nil
}

// checkInput validates the input data file. It returns the input size in
// bytes.
func checkInput(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, inputReadError(path, err)
	}
	if info.IsDir() {
		return 0, inputReadError(path, fmt.Errorf("is a directory"))
	}
	return info.Size(), nil
}

// identityArtifacts runs toolkit stages 1 through 4, leaving settings,
// reference string and both keys inside ws. Each stage consumes the
// previous stage's output, the order is fixed.
func (p *Pipeline) identityArtifacts(ctx context.Context, model string, ws *workspace.Workspace) error {
	if err := p.toolkit.GenSettings(ctx, model, ws.Settings()); err != nil {
		return toolkitError(err)
	}
	if err := p.toolkit.GetSRS(ctx, ws.Settings(), ws.SRS()); err != nil {
		return toolkitError(err)
	}
	if err := p.toolkit.CompileCircuit(ctx, model, ws.Settings(), ws.CompiledModel()); err != nil {
		return toolkitError(err)
	}
	if err := p.toolkit.Setup(ctx, ws.CompiledModel(), ws.SRS(), ws.ProvingKey(), ws.VerifyingKey()); err != nil {
		return toolkitError(err)
	}
	return nil
}

// releaseWorkspace closes ws on the way out of a run. A canceled run keeps
// its workspace on disk so the partial artifacts stay inspectable.
func releaseWorkspace(ctx context.Context, ws *workspace.Workspace) {
	if ctx.Err() != nil {
		ws.Preserve()
	}
	if err := ws.Close(); err != nil {
		log.Warnw("could not release workspace", "path", ws.Root(), "err", err.Error())
	}
}

// toolkitVersion probes the binary, returning the empty string on failure.
// A version below the configured floor is only warned about.
func (p *Pipeline) toolkitVersion(ctx context.Context) string {
	version, err := p.toolkit.Version(ctx)
	if err != nil {
		log.Warnw("could not probe toolkit version", "err", err.Error())
		return ""
	}
	if p.minToolkitVersion != "" && semver.IsValid(version) &&
		semver.Compare(version, p.minToolkitVersion) < 0 {
		log.Warnw("toolkit version below supported floor",
			"version", version, "min", p.minToolkitVersion)
	}
	return version
}

// warnVersionSkew logs when the current toolkit differs from the one the
// passport was built with. Skew is the usual explanation for drift and
// proof rejections on otherwise untouched models.
func (p *Pipeline) warnVersionSkew(ctx context.Context, passport *types.Passport) {
	if passport.ToolkitVersion == "" {
		return
	}
	current, err := p.toolkit.Version(ctx)
	if err != nil || current == passport.ToolkitVersion {
		return
	}
	log.Warnw("toolkit version differs from passport",
		"current", current, "passport", passport.ToolkitVersion)
}

// modelStem returns the model file name without its extension, the default
// model name.
func modelStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

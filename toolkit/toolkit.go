// Package toolkit wraps the external zero-knowledge proving toolkit binary
// behind seven named capabilities with file-path contracts. The package
// never interprets circuit or proof semantics, it only sequences process
// invocations, captures their diagnostics and checks that every capability
// left its expected output files behind.
package toolkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vocdoni/modelpass/log"
)

// DefaultBin is the toolkit binary resolved through PATH when no explicit
// location is configured.
const DefaultBin = "ezkl"

// Capability names one toolkit operation. The value doubles as the binary
// subcommand and as the stage name reported on failure.
type Capability string

const (
	CapabilityGenSettings    Capability = "gen-settings"
	CapabilityGetSRS         Capability = "get-srs"
	CapabilityCompileCircuit Capability = "compile-circuit"
	CapabilitySetup          Capability = "setup"
	CapabilityGenWitness     Capability = "gen-witness"
	CapabilityProve          Capability = "prove"
	CapabilityVerify         Capability = "verify"
)

// Error is a failed toolkit invocation. It carries the failing capability
// and the toolkit's combined stdout/stderr so callers can surface the
// toolkit's own diagnostic.
type Error struct {
	Capability Capability
	Output     string
	Err        error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("toolkit %s failed: %v: %s", e.Capability, e.Err, e.Output)
	}
	return fmt.Sprintf("toolkit %s failed: %v", e.Capability, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures a Toolkit.
type Options struct {
	// Bin is the toolkit binary name or path, resolved through PATH.
	// Defaults to DefaultBin.
	Bin string
	// StageTimeout bounds each capability invocation. Zero means no bound,
	// matching the reference behavior where a hung toolkit blocks the
	// pipeline.
	StageTimeout time.Duration
}

// Toolkit invokes the proving toolkit binary. It is safe for concurrent
// use, every invocation is an independent process.
type Toolkit struct {
	bin          string
	stageTimeout time.Duration
}

// New resolves the toolkit binary and returns an adapter around it.
func New(opts Options) (*Toolkit, error) {
	bin := opts.Bin
	if bin == "" {
		bin = DefaultBin
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("toolkit binary %q not found: %w", bin, err)
	}
	return &Toolkit{bin: path, stageTimeout: opts.StageTimeout}, nil
}

// Bin returns the resolved toolkit binary path.
func (t *Toolkit) Bin() string {
	return t.bin
}

// run executes one capability and enforces the output-file post-condition.
func (t *Toolkit) run(ctx context.Context, capability Capability, outputs []string, args ...string) error {
	if t.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.stageTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, t.bin, append([]string{string(capability)}, args...)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	log.Debugw("toolkit invocation", "capability", string(capability), "args", strings.Join(args, " "))
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &Error{Capability: capability, Output: strings.TrimSpace(out.String()), Err: err}
	}
	for _, output := range outputs {
		info, err := os.Stat(output)
		if err != nil {
			return &Error{
				Capability: capability,
				Output:     strings.TrimSpace(out.String()),
				Err:        fmt.Errorf("expected output file %s is missing", output),
			}
		}
		if info.Size() == 0 {
			return &Error{
				Capability: capability,
				Output:     strings.TrimSpace(out.String()),
				Err:        fmt.Errorf("expected output file %s is empty", output),
			}
		}
	}
	log.Debugw("toolkit invocation done", "capability", string(capability), "took", time.Since(start).String())
	return nil
}

// GenSettings derives the circuit settings for a model. Inputs and outputs
// are public, model parameters are committed through a public hash.
func (t *Toolkit) GenSettings(ctx context.Context, model, settings string) error {
	return t.run(ctx, CapabilityGenSettings, []string{settings},
		"--model", model,
		"--settings-path", settings,
		"--input-visibility", "public",
		"--output-visibility", "public",
		"--param-visibility", "hashed/public",
	)
}

// GetSRS fetches the structured reference string sized for the settings.
func (t *Toolkit) GetSRS(ctx context.Context, settings, srs string) error {
	return t.run(ctx, CapabilityGetSRS, []string{srs},
		"--settings-path", settings,
		"--srs-path", srs,
	)
}

// CompileCircuit compiles the model into the circuit representation.
func (t *Toolkit) CompileCircuit(ctx context.Context, model, settings, compiled string) error {
	return t.run(ctx, CapabilityCompileCircuit, []string{compiled},
		"--model", model,
		"--settings-path", settings,
		"--compiled-circuit", compiled,
	)
}

// Setup derives the proving and verification keys for a compiled circuit.
func (t *Toolkit) Setup(ctx context.Context, compiled, srs, pk, vk string) error {
	return t.run(ctx, CapabilitySetup, []string{pk, vk},
		"--compiled-circuit", compiled,
		"--srs-path", srs,
		"--pk-path", pk,
		"--vk-path", vk,
	)
}

// GenWitness evaluates the compiled circuit over the input data.
func (t *Toolkit) GenWitness(ctx context.Context, compiled, input, witness string) error {
	return t.run(ctx, CapabilityGenWitness, []string{witness},
		"--compiled-circuit", compiled,
		"--data", input,
		"--output", witness,
	)
}

// Prove produces the proof for a witness under the proving key.
func (t *Toolkit) Prove(ctx context.Context, compiled, pk, witness, srs, proof string) error {
	return t.run(ctx, CapabilityProve, []string{proof},
		"--compiled-circuit", compiled,
		"--witness", witness,
		"--pk-path", pk,
		"--proof-path", proof,
		"--srs-path", srs,
	)
}

// Verify checks a proof against settings, reference string and verification
// key. A nil return means the toolkit accepted the proof. A rejection
// surfaces as an *Error wrapping the process exit status; callers tell it
// apart from an invocation failure through errors.As on exec.ExitError.
func (t *Toolkit) Verify(ctx context.Context, proof, settings, srs, vk string) error {
	return t.run(ctx, CapabilityVerify, nil,
		"--proof-path", proof,
		"--settings-path", settings,
		"--vk-path", vk,
		"--srs-path", srs,
	)
}

// Rejected reports whether err is a toolkit verify failure where the
// toolkit ran to completion and rejected the proof, as opposed to not
// running at all.
func Rejected(err error) bool {
	var terr *Error
	if !errors.As(err, &terr) || terr.Capability != CapabilityVerify {
		return false
	}
	var exitErr *exec.ExitError
	return errors.As(terr.Err, &exitErr)
}

// Version probes the toolkit binary for its version. The returned string is
// normalized to a leading "v" so it can be compared as a semantic version.
func (t *Toolkit) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, t.bin, "--version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("could not probe toolkit version: %w", err)
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) == 0 {
		return "", fmt.Errorf("toolkit reported an empty version")
	}
	version := fields[len(fields)-1]
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version, nil
}

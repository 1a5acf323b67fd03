package attribution

import (
	"errors"
	"fmt"

	"github.com/vocdoni/modelpass/toolkit"
)

// Kind classifies every failure the attribution pipeline can produce.
// Wrong model, rejected proof and stale tooling are distinct kinds, never
// collapsed into a generic verification failure.
type Kind string

const (
	KindModelRead        Kind = "model-read"
	KindInputRead        Kind = "input-read"
	KindToolkitFailure   Kind = "toolkit-failure"
	KindProofInvalid     Kind = "proof-invalid"
	KindIdentityMismatch Kind = "identity-mismatch"
	KindToolkitDrift     Kind = "toolkit-drift"
)

// Error is a classified pipeline failure.
type Error struct {
	Kind  Kind
	Stage string // failing toolkit stage, set for toolkit related kinds
	Path  string // offending file, set for the read kinds
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Path != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify returns the Kind carried in err's chain, or the empty Kind when
// the error did not originate in the pipeline.
func Classify(err error) Kind {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Kind
	}
	return ""
}

func modelReadError(path string, err error) *Error {
	return &Error{Kind: KindModelRead, Path: path, Err: err}
}

func inputReadError(path string, err error) *Error {
	return &Error{Kind: KindInputRead, Path: path, Err: err}
}

// toolkitError tags a toolkit invocation failure with its stage name.
func toolkitError(err error) *Error {
	var terr *toolkit.Error
	if errors.As(err, &terr) {
		return &Error{Kind: KindToolkitFailure, Stage: string(terr.Capability), Err: err}
	}
	return &Error{Kind: KindToolkitFailure, Err: err}
}

func proofInvalidError(err error) *Error {
	return &Error{Kind: KindProofInvalid, Stage: string(toolkit.CapabilityVerify), Err: err}
}

func identityMismatchError(format string, args ...any) *Error {
	return &Error{Kind: KindIdentityMismatch, Err: fmt.Errorf(format, args...)}
}

func toolkitDriftError(format string, args ...any) *Error {
	return &Error{Kind: KindToolkitDrift, Err: fmt.Errorf(format, args...)}
}

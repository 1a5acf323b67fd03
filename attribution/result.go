package attribution

import "errors"

// Result is the transport rendering of one verification outcome, used by
// the HTTP API and the CLI summary. A failed verification is data here, not
// an error: callers that need to distinguish outcomes branch on Kind.
type Result struct {
	Verified bool   `json:"verified"`
	Kind     Kind   `json:"kind,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ResultFromError renders a verification error as a Result. A nil error is
// a verified result.
func ResultFromError(err error) Result {
	if err == nil {
		return Result{Verified: true}
	}
	result := Result{Message: err.Error()}
	var aerr *Error
	if errors.As(err, &aerr) {
		result.Kind = aerr.Kind
		result.Stage = aerr.Stage
	}
	return result
}

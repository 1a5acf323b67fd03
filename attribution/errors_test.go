package attribution

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/modelpass/toolkit"
)

func TestErrorRendering(t *testing.T) {
	c := qt.New(t)

	testCases := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "path and cause",
			err:  modelReadError("m.onnx", errors.New("no such file")),
			want: "model-read: m.onnx: no such file",
		},
		{
			name: "cause only",
			err:  identityMismatchError("got %s", "abc"),
			want: "identity-mismatch: got abc",
		},
		{
			name: "path only",
			err:  &Error{Kind: KindInputRead, Path: "input.json"},
			want: "input-read: input.json",
		},
		{
			name: "kind only",
			err:  &Error{Kind: KindProofInvalid},
			want: "proof-invalid",
		},
	}
	for _, tc := range testCases {
		tc := tc
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(tc.err.Error(), qt.Equals, tc.want)
		})
	}
}

func TestClassify(t *testing.T) {
	c := qt.New(t)

	c.Assert(Classify(nil), qt.Equals, Kind(""))
	c.Assert(Classify(errors.New("plain")), qt.Equals, Kind(""))
	c.Assert(Classify(modelReadError("m.onnx", errors.New("gone"))), qt.Equals, KindModelRead)
	c.Assert(Classify(fmt.Errorf("wrapped: %w", inputReadError("i.json", errors.New("gone")))),
		qt.Equals, KindInputRead)
	c.Assert(Classify(toolkitDriftError("vk hash changed")), qt.Equals, KindToolkitDrift)
}

func TestToolkitErrorStage(t *testing.T) {
	c := qt.New(t)

	terr := &toolkit.Error{Capability: toolkit.CapabilitySetup, Err: errors.New("boom")}
	aerr := toolkitError(terr)
	c.Assert(aerr.Kind, qt.Equals, KindToolkitFailure)
	c.Assert(aerr.Stage, qt.Equals, "setup")
	c.Assert(errors.Is(aerr, terr), qt.IsTrue)

	// A failure outside any stage still classifies, just without one.
	plain := toolkitError(errors.New("binary vanished"))
	c.Assert(plain.Kind, qt.Equals, KindToolkitFailure)
	c.Assert(plain.Stage, qt.Equals, "")
}

func TestResultFromError(t *testing.T) {
	c := qt.New(t)

	ok := ResultFromError(nil)
	c.Assert(ok.Verified, qt.IsTrue)
	c.Assert(ok.Kind, qt.Equals, Kind(""))

	raw, err := json.Marshal(ok)
	c.Assert(err, qt.IsNil)
	c.Assert(string(raw), qt.Equals, `{"verified":true}`)

	res := ResultFromError(proofInvalidError(errors.New("rejected")))
	c.Assert(res.Verified, qt.IsFalse)
	c.Assert(res.Kind, qt.Equals, KindProofInvalid)
	c.Assert(res.Stage, qt.Equals, "verify")
	c.Assert(strings.Contains(res.Message, "rejected"), qt.IsTrue)

	plain := ResultFromError(errors.New("boom"))
	c.Assert(plain.Verified, qt.IsFalse)
	c.Assert(plain.Kind, qt.Equals, Kind(""))
	c.Assert(plain.Message, qt.Equals, "boom")
}

package attribution

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/ipfs/go-cid"

	"github.com/vocdoni/modelpass/types"
)

func TestAttribute(t *testing.T) {
	c := qt.New(t)

	pipe := newTestPipeline(t)
	modelBytes := []byte("weights-v1-0123456789")
	model := writeModel(t, "resnet18.onnx", modelBytes)
	inputBytes := []byte(`{"input_data":[[0.1,0.9]]}`)
	input := writeInput(t, inputBytes)

	c.Run("assembles a complete certificate", func(c *qt.C) {
		cert, err := pipe.Attribute(context.Background(), model, input)
		c.Assert(err, qt.IsNil)
		c.Assert(cert.Validate(), qt.IsNil)

		_, err = uuid.Parse(cert.CertificateID)
		c.Assert(err, qt.IsNil)
		c.Assert(types.IsModelID(cert.ModelID), qt.IsTrue)
		c.Assert(json.Valid(cert.Proof), qt.IsTrue)
		c.Assert(json.Valid(cert.Settings), qt.IsTrue)
		c.Assert(len(cert.VK) > 0, qt.IsTrue)

		c.Assert(cert.Input, qt.IsNotNil)
		c.Assert(cert.Input.SizeBytes, qt.Equals, int64(len(inputBytes)))
		decoded, err := cid.Decode(cert.Input.CID)
		c.Assert(err, qt.IsNil)
		c.Assert(decoded.Version(), qt.Equals, uint64(1))

		_, err = types.ParseGenerationDate(cert.GenerationDate)
		c.Assert(err, qt.IsNil)
	})

	c.Run("model id matches the passport identity", func(c *qt.C) {
		passport, err := pipe.BuildPassport(context.Background(), model, types.ModelMetadata{})
		c.Assert(err, qt.IsNil)
		cert, err := pipe.Attribute(context.Background(), model, input)
		c.Assert(err, qt.IsNil)
		c.Assert(cert.ModelID, qt.Equals, passport.ModelIdentityHash)
	})

	c.Run("same input same model, distinct certificates", func(c *qt.C) {
		a, err := pipe.Attribute(context.Background(), model, input)
		c.Assert(err, qt.IsNil)
		b, err := pipe.Attribute(context.Background(), model, input)
		c.Assert(err, qt.IsNil)
		c.Assert(b.CertificateID, qt.Not(qt.Equals), a.CertificateID)
		c.Assert(b.ModelID, qt.Equals, a.ModelID)
		c.Assert(b.Input.CID, qt.Equals, a.Input.CID)
	})

	c.Run("missing input fails before the toolkit runs", func(c *qt.C) {
		logPath := filepath.Join(c.TempDir(), "invocations.log")
		c.Setenv("FAKE_TOOLKIT_LOG", logPath)

		_, err := pipe.Attribute(context.Background(), model,
			filepath.Join(c.TempDir(), "missing.json"))
		c.Assert(Classify(err), qt.Equals, KindInputRead)

		_, statErr := os.Stat(logPath)
		c.Assert(os.IsNotExist(statErr), qt.IsTrue)
	})

	c.Run("missing model reported ahead of missing input", func(c *qt.C) {
		_, err := pipe.Attribute(context.Background(),
			filepath.Join(c.TempDir(), "nope.onnx"),
			filepath.Join(c.TempDir(), "nope.json"))
		c.Assert(Classify(err), qt.Equals, KindModelRead)
	})

	c.Run("stage failure aborts the remaining stages", func(c *qt.C) {
		logPath := filepath.Join(c.TempDir(), "invocations.log")
		c.Setenv("FAKE_TOOLKIT_LOG", logPath)
		c.Setenv("FAKE_TOOLKIT_FAIL", "gen-witness")

		_, err := pipe.Attribute(context.Background(), model, input)
		c.Assert(Classify(err), qt.Equals, KindToolkitFailure)

		raw, err := os.ReadFile(logPath)
		c.Assert(err, qt.IsNil)
		stages := strings.Fields(string(raw))
		c.Assert(len(stages) > 0, qt.IsTrue)
		c.Assert(stages[len(stages)-1], qt.Equals, "gen-witness")
		c.Assert(strings.Contains(string(raw), "prove"), qt.IsFalse)
	})
}

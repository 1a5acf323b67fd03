package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"

	"github.com/vocdoni/modelpass/attribution"
	"github.com/vocdoni/modelpass/types"
)

func TestVerifyEndpoint(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(t)
	ctx := context.Background()

	// Build a genuine passport and certificate for a local model file.
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.onnx")
	c.Assert(os.WriteFile(modelPath, []byte("weights-v1-0123456789"), 0o600), qt.IsNil)
	inputPath := filepath.Join(dir, "input.json")
	c.Assert(os.WriteFile(inputPath, []byte(`{"input_data":[[1,2,3]]}`), 0o600), qt.IsNil)

	passport, err := a.pipeline.BuildPassport(ctx, modelPath, types.ModelMetadata{})
	c.Assert(err, qt.IsNil)
	cert, err := a.pipeline.Attribute(ctx, modelPath, inputPath)
	c.Assert(err, qt.IsNil)
	c.Assert(a.storage.SetPassport(passport), qt.IsNil)
	c.Assert(a.storage.SetCertificate(cert), qt.IsNil)

	c.Run("stored certificate verifies", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{ModelPath: modelPath, CertificateID: cert.CertificateID})
		c.Assert(rr.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rr.Body.String()))

		var result attribution.Result
		decodeResponse(t, rr, &result)
		c.Assert(result.Verified, qt.IsTrue, qt.Commentf("result: %+v", result))
	})

	c.Run("inline certificate verifies", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{ModelPath: modelPath, Certificate: cert})
		c.Assert(rr.Code, qt.Equals, http.StatusOK)

		var result attribution.Result
		decodeResponse(t, rr, &result)
		c.Assert(result.Verified, qt.IsTrue, qt.Commentf("result: %+v", result))
	})

	c.Run("embedded mode verifies", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{ModelPath: modelPath, CertificateID: cert.CertificateID, Embedded: true})
		c.Assert(rr.Code, qt.Equals, http.StatusOK)

		var result attribution.Result
		decodeResponse(t, rr, &result)
		c.Assert(result.Verified, qt.IsTrue, qt.Commentf("result: %+v", result))
	})

	c.Run("tampered model is a result, not an error", func(c *qt.C) {
		tamperedPath := filepath.Join(dir, "tampered.onnx")
		c.Assert(os.WriteFile(tamperedPath, []byte("Xeights-v1-0123456789"), 0o600), qt.IsNil)

		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{ModelPath: tamperedPath, CertificateID: cert.CertificateID})
		c.Assert(rr.Code, qt.Equals, http.StatusOK)

		var result attribution.Result
		decodeResponse(t, rr, &result)
		c.Assert(result.Verified, qt.IsFalse)
		c.Assert(result.Kind, qt.Equals, attribution.KindIdentityMismatch)
	})

	c.Run("unknown certificate", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{ModelPath: modelPath, CertificateID: uuid.NewString()})
		c.Assert(rr.Code, qt.Equals, http.StatusNotFound)
	})

	c.Run("passport not registered", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{ModelPath: modelPath, CertificateID: cert.CertificateID, ModelID: testHash(0xee)})
		c.Assert(rr.Code, qt.Equals, http.StatusNotFound)

		var apiErr apiError
		decodeResponse(t, rr, &apiErr)
		c.Assert(apiErr.Code, qt.Equals, ErrPassportNotFound.Code)
	})

	c.Run("missing model path", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{CertificateID: cert.CertificateID})
		c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)

		var apiErr apiError
		decodeResponse(t, rr, &apiErr)
		c.Assert(apiErr.Code, qt.Equals, ErrVerificationNotPossible.Code)
	})

	c.Run("model file not available", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{ModelPath: filepath.Join(dir, "missing.onnx"), CertificateID: cert.CertificateID})
		c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)

		var apiErr apiError
		decodeResponse(t, rr, &apiErr)
		c.Assert(apiErr.Code, qt.Equals, ErrModelFileNotAvailable.Code)
	})

	c.Run("no certificate reference", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, VerifyEndpoint,
			&VerifyRequest{ModelPath: modelPath})
		c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)

		var apiErr apiError
		decodeResponse(t, rr, &apiErr)
		c.Assert(apiErr.Code, qt.Equals, ErrVerificationNotPossible.Code)
	})
}

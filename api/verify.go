package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/vocdoni/modelpass/attribution"
	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/storage"
	"github.com/vocdoni/modelpass/types"
)

// verify checks an attribution certificate against a registered passport
// and a model file on the daemon host. A failed verification is still a
// 200 response carrying the result, only malformed or unresolvable
// requests produce an HTTP error.
// POST /verify
func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	req := &VerifyRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.ModelPath == "" {
		ErrVerificationNotPossible.With("modelPath is required").Write(w)
		return
	}
	if _, err := os.Stat(req.ModelPath); err != nil {
		ErrModelFileNotAvailable.Withf("could not stat %s: %v", req.ModelPath, err).Write(w)
		return
	}

	cert, ok := a.resolveCertificate(w, req)
	if !ok {
		return
	}

	// The passport defaults to the certificate's model unless the request
	// pins another one.
	modelID := req.ModelID
	if modelID == "" {
		modelID = cert.ModelID
	}
	if !types.IsModelID(modelID) {
		ErrMalformedModelID.Withf("not a model identity hash: %s", modelID).Write(w)
		return
	}
	passport, err := a.storage.Passport(modelID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrPassportNotFound.Withf("model %s", modelID).Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not retrieve passport: %v", err).Write(w)
		return
	}

	var verifyErr error
	if req.Embedded {
		verifyErr = a.pipeline.VerifyEmbedded(r.Context(), req.ModelPath, passport, cert)
	} else {
		verifyErr = a.pipeline.Verify(r.Context(), req.ModelPath, passport, cert)
	}
	result := attribution.ResultFromError(verifyErr)
	log.Infow("verification completed",
		"certificateId", cert.CertificateID,
		"modelId", modelID,
		"embedded", req.Embedded,
		"verified", result.Verified,
		"kind", string(result.Kind),
	)
	httpWriteJSON(w, result)
}

// resolveCertificate picks the certificate named by the request, either the
// inline document or a stored one. On failure it writes the error response
// and returns false.
func (a *API) resolveCertificate(w http.ResponseWriter, req *VerifyRequest) (*types.AttributionCertificate, bool) {
	if req.Certificate != nil {
		if err := req.Certificate.Validate(); err != nil {
			ErrInvalidCertificate.WithErr(err).Write(w)
			return nil, false
		}
		return req.Certificate, true
	}
	if req.CertificateID == "" {
		ErrVerificationNotPossible.With("certificate or certificateId is required").Write(w)
		return nil, false
	}
	if _, err := uuid.Parse(req.CertificateID); err != nil {
		ErrMalformedCertificateID.Withf("not a UUID: %s", req.CertificateID).Write(w)
		return nil, false
	}
	cert, err := a.storage.Certificate(req.CertificateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrCertificateNotFound.Withf("certificate %s", req.CertificateID).Write(w)
			return nil, false
		}
		ErrGenericInternalServerError.Withf("could not retrieve certificate: %v", err).Write(w)
		return nil, false
	}
	return cert, true
}

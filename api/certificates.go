package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/storage"
	"github.com/vocdoni/modelpass/types"
)

// importCertificate registers an attribution certificate in the registry
// POST /certificates
func (a *API) importCertificate(w http.ResponseWriter, r *http.Request) {
	cert := &types.AttributionCertificate{}
	if err := json.NewDecoder(r.Body).Decode(cert); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if err := cert.Validate(); err != nil {
		ErrInvalidCertificate.WithErr(err).Write(w)
		return
	}
	if err := a.storage.SetCertificate(cert); err != nil {
		if errors.Is(err, storage.ErrKeyAlreadyExists) {
			ErrCertificateAlreadyExists.Withf("certificate %s", cert.CertificateID).Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not store certificate: %v", err).Write(w)
		return
	}

	log.Infow("certificate imported",
		"certificateId", cert.CertificateID,
		"modelId", cert.ModelID,
	)
	httpWriteJSON(w, &ImportCertificateResponse{CertificateID: cert.CertificateID})
}

// certificateList lists the registered certificates
// GET /certificates
func (a *API) certificateList(w http.ResponseWriter, _ *http.Request) {
	certificates, err := a.storage.ListCertificates()
	if err != nil {
		ErrGenericInternalServerError.Withf("could not list certificates: %v", err).Write(w)
		return
	}
	list := &CertificateList{Certificates: []CertificateSummary{}}
	for _, cert := range certificates {
		list.Certificates = append(list.Certificates, CertificateSummary{
			CertificateID:  cert.CertificateID,
			ModelID:        cert.ModelID,
			GenerationDate: cert.GenerationDate,
		})
	}
	httpWriteJSON(w, list)
}

// certificate retrieves an attribution certificate document
// GET /certificates/{certificateId}
func (a *API) certificate(w http.ResponseWriter, r *http.Request) {
	certificateID := chi.URLParam(r, CertificateIDURLParam)
	if _, err := uuid.Parse(certificateID); err != nil {
		ErrMalformedCertificateID.Withf("not a UUID: %s", certificateID).Write(w)
		return
	}
	cert, err := a.storage.Certificate(certificateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrCertificateNotFound.Withf("certificate %s", certificateID).Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not retrieve certificate: %v", err).Write(w)
		return
	}
	httpWriteJSON(w, cert)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/storage"
	"github.com/vocdoni/modelpass/types"
)

// importPassport registers a passport document in the registry
// POST /passports
func (a *API) importPassport(w http.ResponseWriter, r *http.Request) {
	p := &types.Passport{}
	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if err := p.Validate(); err != nil {
		ErrInvalidPassport.WithErr(err).Write(w)
		return
	}
	if err := a.storage.SetPassport(p); err != nil {
		if errors.Is(err, storage.ErrKeyAlreadyExists) {
			ErrPassportAlreadyExists.Withf("model %s", p.ShortID()).Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not store passport: %v", err).Write(w)
		return
	}

	log.Infow("passport imported",
		"modelId", p.ModelIdentityHash,
		"name", p.ModelMetadata.Name,
		"toolkitVersion", p.ToolkitVersion,
	)
	httpWriteJSON(w, &ImportPassportResponse{ModelID: p.ModelIdentityHash})
}

// passportList lists the registered passports
// GET /passports
func (a *API) passportList(w http.ResponseWriter, _ *http.Request) {
	passports, err := a.storage.ListPassports()
	if err != nil {
		ErrGenericInternalServerError.Withf("could not list passports: %v", err).Write(w)
		return
	}
	list := &PassportList{Passports: []PassportSummary{}}
	for _, p := range passports {
		list.Passports = append(list.Passports, PassportSummary{
			ModelID:        p.ModelIdentityHash,
			Name:           p.ModelMetadata.Name,
			GenerationDate: p.GenerationDate,
			SizeBytes:      p.ModelMetadata.SizeBytes,
		})
	}
	httpWriteJSON(w, list)
}

// passport retrieves a passport document
// GET /passports/{modelId}
func (a *API) passport(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, ModelIDURLParam)
	p, err := a.storage.Passport(modelID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrPassportNotFound.Withf("model %s", modelID).Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not retrieve passport: %v", err).Write(w)
		return
	}
	httpWriteJSON(w, p)
}

// deletePassport removes a passport together with its certificates
// DELETE /passports/{modelId}
func (a *API) deletePassport(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, ModelIDURLParam)
	if err := a.storage.DeletePassport(modelID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrPassportNotFound.Withf("model %s", modelID).Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not delete passport: %v", err).Write(w)
		return
	}
	log.Infow("passport deleted", "modelId", modelID)
	httpWriteOK(w)
}

// passportCertificates lists the certificate ids registered for a model
// GET /passports/{modelId}/certificates
func (a *API) passportCertificates(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, ModelIDURLParam)
	ids, err := a.storage.CertificatesByModel(modelID)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not list certificates: %v", err).Write(w)
		return
	}
	httpWriteJSON(w, &ModelCertificatesResponse{ModelID: modelID, Certificates: ids})
}

package api

import (
	"net/http"

	"github.com/vocdoni/modelpass/internal"
	"github.com/vocdoni/modelpass/log"
)

// info returns the daemon build version, the proving toolkit in use and
// the registry counters.
// GET /info
func (a *API) info(w http.ResponseWriter, r *http.Request) {
	passports, certificates, err := a.storage.Counts()
	if err != nil {
		ErrGenericInternalServerError.Withf("could not count registry entries: %v", err).Write(w)
		return
	}

	response := &InfoResponse{
		Version:      internal.Version,
		Passports:    passports,
		Certificates: certificates,
	}
	if a.pipeline != nil {
		response.ToolkitBin = a.pipeline.Toolkit().Bin()
		version, err := a.pipeline.Toolkit().Version(r.Context())
		if err != nil {
			log.Warnw("could not probe toolkit version", "error", err.Error())
		} else {
			response.ToolkitVersion = version
		}
	}

	httpWriteJSON(w, response)
}

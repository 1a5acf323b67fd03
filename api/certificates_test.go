package api

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"

	"github.com/vocdoni/modelpass/types"
)

func TestCertificateEndpoints(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(t)

	cert := testCertificate(uuid.NewString(), testHash(0x40))

	c.Run("import", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, CertificatesEndpoint, cert)
		c.Assert(rr.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rr.Body.String()))

		var resp ImportCertificateResponse
		decodeResponse(t, rr, &resp)
		c.Assert(resp.CertificateID, qt.Equals, cert.CertificateID)
	})

	c.Run("import duplicate", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodPost, CertificatesEndpoint, cert)
		c.Assert(rr.Code, qt.Equals, http.StatusConflict)

		var apiErr apiError
		decodeResponse(t, rr, &apiErr)
		c.Assert(apiErr.Code, qt.Equals, ErrCertificateAlreadyExists.Code)
	})

	c.Run("import invalid certificate", func(c *qt.C) {
		bad := testCertificate(uuid.NewString(), testHash(0x40))
		bad.Proof = nil
		rr := doRequest(t, a, http.MethodPost, CertificatesEndpoint, bad)
		c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)

		var apiErr apiError
		decodeResponse(t, rr, &apiErr)
		c.Assert(apiErr.Code, qt.Equals, ErrInvalidCertificate.Code)
	})

	c.Run("fetch", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodGet,
			EndpointWithParam(CertificateEndpoint, CertificateIDURLParam, cert.CertificateID), nil)
		c.Assert(rr.Code, qt.Equals, http.StatusOK)

		var stored types.AttributionCertificate
		decodeResponse(t, rr, &stored)
		c.Assert(&stored, qt.DeepEquals, cert)
	})

	c.Run("fetch unknown", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodGet,
			EndpointWithParam(CertificateEndpoint, CertificateIDURLParam, uuid.NewString()), nil)
		c.Assert(rr.Code, qt.Equals, http.StatusNotFound)

		var apiErr apiError
		decodeResponse(t, rr, &apiErr)
		c.Assert(apiErr.Code, qt.Equals, ErrCertificateNotFound.Code)
	})

	c.Run("fetch malformed id", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodGet,
			EndpointWithParam(CertificateEndpoint, CertificateIDURLParam, "not-a-uuid"), nil)
		c.Assert(rr.Code, qt.Equals, http.StatusBadRequest)

		var apiErr apiError
		decodeResponse(t, rr, &apiErr)
		c.Assert(apiErr.Code, qt.Equals, ErrMalformedCertificateID.Code)
	})

	c.Run("list", func(c *qt.C) {
		rr := doRequest(t, a, http.MethodGet, CertificatesEndpoint, nil)
		c.Assert(rr.Code, qt.Equals, http.StatusOK)

		var list CertificateList
		decodeResponse(t, rr, &list)
		c.Assert(list.Certificates, qt.HasLen, 1)
		c.Assert(list.Certificates[0].CertificateID, qt.Equals, cert.CertificateID)
		c.Assert(list.Certificates[0].ModelID, qt.Equals, cert.ModelID)
	})
}

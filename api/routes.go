package api

import (
	"fmt"
	"net/url"
	"strings"
)

// Route constants for the API endpoints

const (
	// Health endpoints
	PingEndpoint = "/ping" // Health check endpoint

	// Info endpoint
	InfoEndpoint = "/info" // GET: Daemon build, toolkit and registry information

	// Passport endpoints
	ModelIDURLParam              = "modelId"                                        // URL parameter for model identity hash
	PassportsEndpoint            = "/passports"                                     // GET: List passports, POST: Import passport
	PassportEndpoint             = PassportsEndpoint + "/{" + ModelIDURLParam + "}" // GET: Fetch passport, DELETE: Remove passport
	PassportCertificatesEndpoint = PassportEndpoint + "/certificates"               // GET: List certificate ids for a model

	// Certificate endpoints
	CertificateIDURLParam = "certificateId"                                           // URL parameter for certificate UUID
	CertificatesEndpoint  = "/certificates"                                           // GET: List certificates, POST: Import certificate
	CertificateEndpoint   = CertificatesEndpoint + "/{" + CertificateIDURLParam + "}" // GET: Fetch certificate

	// Verification endpoint
	VerifyEndpoint = "/verify" // POST: Verify an attribution against a registered passport
)

// EndpointWithParam creates an endpoint URL by replacing the parameter
// placeholder with the actual value. Used to build fully qualified
// endpoint URLs.
func EndpointWithParam(path, key, param string) string {
	rawKey := fmt.Sprintf("{%s}", key)

	// Always try to replace the placeholder, even if it's after the '?'
	if strings.Contains(path, rawKey) {
		return strings.Replace(path, rawKey, url.PathEscape(param), 1)
	}

	// Fallback: add as query param
	escapedKey := url.QueryEscape(key)
	escapedVal := url.QueryEscape(param)

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return fmt.Sprintf("%s%s%s=%s", path, sep, escapedKey, escapedVal)
}

// LogExcludedPrefixes defines URL prefixes to exclude from request logging
var LogExcludedPrefixes = []string{
	PingEndpoint,
	InfoEndpoint,
}

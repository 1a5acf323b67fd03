package api

import (
	"github.com/vocdoni/modelpass/types"
)

// InfoResponse is the response returned by the info endpoint.
type InfoResponse struct {
	Version        string `json:"version"`
	ToolkitBin     string `json:"toolkitBin,omitempty"`
	ToolkitVersion string `json:"toolkitVersion,omitempty"`
	Passports      int    `json:"passports"`
	Certificates   int    `json:"certificates"`
}

// PassportSummary is one entry of the passport list endpoint.
type PassportSummary struct {
	ModelID        string `json:"modelId"`
	Name           string `json:"name,omitempty"`
	GenerationDate string `json:"generationDate,omitempty"`
	SizeBytes      int64  `json:"sizeBytes"`
}

// PassportList is the response returned by the passport list endpoint.
type PassportList struct {
	Passports []PassportSummary `json:"passports"`
}

// ImportPassportResponse is the response returned by the passport import
// endpoint.
type ImportPassportResponse struct {
	ModelID string `json:"modelId"`
}

// CertificateSummary is one entry of the certificate list endpoint.
type CertificateSummary struct {
	CertificateID  string `json:"certificateId"`
	ModelID        string `json:"modelId"`
	GenerationDate string `json:"generationDate,omitempty"`
}

// CertificateList is the response returned by the certificate list endpoint.
type CertificateList struct {
	Certificates []CertificateSummary `json:"certificates"`
}

// ImportCertificateResponse is the response returned by the certificate
// import endpoint.
type ImportCertificateResponse struct {
	CertificateID string `json:"certificateId"`
}

// ModelCertificatesResponse is the response returned by the per-model
// certificate list endpoint.
type ModelCertificatesResponse struct {
	ModelID      string   `json:"modelId"`
	Certificates []string `json:"certificates"`
}

// VerifyRequest is the body of the verification endpoint. The model path
// points to a file on the daemon host. The certificate comes either inline
// or as the id of a stored one; ModelID selects the passport and defaults
// to the certificate's model. Embedded switches to the self-contained
// check that trusts the certificate's own settings and verification key.
type VerifyRequest struct {
	ModelPath     string                        `json:"modelPath"`
	CertificateID string                        `json:"certificateId,omitempty"`
	Certificate   *types.AttributionCertificate `json:"certificate,omitempty"`
	ModelID       string                        `json:"modelId,omitempty"`
	Embedded      bool                          `json:"embedded,omitempty"`
}

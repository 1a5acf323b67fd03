package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// InputDescriptor identifies the content an attribution certificate was
// generated for, as a CIDv1 over the raw input bytes.
type InputDescriptor struct {
	CID       string `json:"cid"        cbor:"0,keyasint"`
	SizeBytes int64  `json:"size_bytes" cbor:"1,keyasint"`
}

// AttributionCertificate proves that a specific output was produced by the
// model identified by ModelID. Proof and Settings are kept byte-opaque as
// emitted by the proving toolkit, so the certificate can be fed back to it
// for verification.
type AttributionCertificate struct {
	CertificateID  string           `json:"certificate_id"  cbor:"0,keyasint"`
	ModelID        string           `json:"model_id"        cbor:"1,keyasint"`
	GenerationDate string           `json:"generation_date" cbor:"2,keyasint,omitempty"`
	Proof          json.RawMessage  `json:"proof"           cbor:"3,keyasint"`
	Settings       json.RawMessage  `json:"settings"        cbor:"4,keyasint"`
	VK             HexBytes         `json:"vk"              cbor:"5,keyasint"`
	Input          *InputDescriptor `json:"input,omitempty" cbor:"6,keyasint,omitempty"`
}

// ShortModelID returns the first 10 hex characters of the model identity
// hash, used to build output file names.
func (a *AttributionCertificate) ShortModelID() string {
	if len(a.ModelID) < 10 {
		return a.ModelID
	}
	return a.ModelID[:10]
}

// Validate checks that the certificate is well formed. It does not verify
// the proof.
func (a *AttributionCertificate) Validate() error {
	if _, err := uuid.Parse(a.CertificateID); err != nil {
		return fmt.Errorf("invalid certificate id %q: %w", a.CertificateID, err)
	}
	if !IsModelID(a.ModelID) {
		return fmt.Errorf("invalid model id %q", a.ModelID)
	}
	if len(a.Proof) == 0 || !json.Valid(a.Proof) {
		return fmt.Errorf("certificate proof is not valid JSON")
	}
	if len(a.Settings) == 0 || !json.Valid(a.Settings) {
		return fmt.Errorf("certificate settings are not valid JSON")
	}
	if len(a.VK) == 0 {
		return fmt.Errorf("certificate verification key is empty")
	}
	if a.GenerationDate != "" {
		if _, err := ParseGenerationDate(a.GenerationDate); err != nil {
			return fmt.Errorf("invalid generation date %q: %w", a.GenerationDate, err)
		}
	}
	if a.Input != nil && a.Input.SizeBytes < 0 {
		return fmt.Errorf("invalid input size %d", a.Input.SizeBytes)
	}
	return nil
}

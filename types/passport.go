package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// GenerationDateFormat is the time layout used for the generation_date field
// of passports and attribution certificates.
const GenerationDateFormat = "2006-01-02 15:04:05"

// ModelIDLength is the length of a model identity hash in hex characters.
const ModelIDLength = 64

// FormatGenerationDate renders t in the passport wire layout, in UTC.
func FormatGenerationDate(t time.Time) string {
	return t.UTC().Format(GenerationDateFormat)
}

// ParseGenerationDate parses a generation_date wire value.
func ParseGenerationDate(s string) (time.Time, error) {
	return time.Parse(GenerationDateFormat, s)
}

// IsModelID reports whether s is a well formed model identity hash, a
// 64-character lowercase hex string.
func IsModelID(s string) bool {
	if len(s) != ModelIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ModelMetadata describes the model file a passport was generated from. All
// fields except SizeBytes are optional.
type ModelMetadata struct {
	Name        string `json:"name,omitempty"        cbor:"0,keyasint,omitempty"`
	Description string `json:"description,omitempty" cbor:"1,keyasint,omitempty"`
	Author      string `json:"author,omitempty"      cbor:"2,keyasint,omitempty"`
	SizeBytes   int64  `json:"size_bytes"            cbor:"3,keyasint"`
	SourceURL   string `json:"source_url,omitempty"  cbor:"4,keyasint,omitempty"`
}

// IdentityDetails carries the three hashes the model identity is derived
// from.
type IdentityDetails struct {
	VKHash       string `json:"vk_hash"       cbor:"0,keyasint"`
	SettingsHash string `json:"settings_hash" cbor:"1,keyasint"`
	WeightHash   string `json:"weight_hash"   cbor:"2,keyasint"`
}

// Passport binds a model to its verifiable identity. It is the portable
// record produced by the passport builder and checked by the attribution
// verifier.
type Passport struct {
	ModelIdentityHash string          `json:"model_identity_hash"       cbor:"0,keyasint"`
	GenerationDate    string          `json:"generation_date"           cbor:"1,keyasint,omitempty"`
	ToolkitVersion    string          `json:"toolkit_version,omitempty" cbor:"2,keyasint,omitempty"`
	ModelMetadata     ModelMetadata   `json:"model_metadata"            cbor:"3,keyasint,omitempty"`
	IdentityDetails   IdentityDetails `json:"identity_details"          cbor:"4,keyasint,omitempty"`
}

// ShortID returns the first 10 hex characters of the model identity hash,
// used to build output file names.
func (p *Passport) ShortID() string {
	if len(p.ModelIdentityHash) < 10 {
		return p.ModelIdentityHash
	}
	return p.ModelIdentityHash[:10]
}

// Validate checks that the passport is well formed. It does not recompute
// any hash.
func (p *Passport) Validate() error {
	if !IsModelID(p.ModelIdentityHash) {
		return fmt.Errorf("invalid model identity hash %q", p.ModelIdentityHash)
	}
	if !IsModelID(p.IdentityDetails.VKHash) {
		return fmt.Errorf("invalid vk hash %q", p.IdentityDetails.VKHash)
	}
	if !IsModelID(p.IdentityDetails.SettingsHash) {
		return fmt.Errorf("invalid settings hash %q", p.IdentityDetails.SettingsHash)
	}
	if !IsModelID(p.IdentityDetails.WeightHash) {
		return fmt.Errorf("invalid weight hash %q", p.IdentityDetails.WeightHash)
	}
	if p.GenerationDate != "" {
		if _, err := ParseGenerationDate(p.GenerationDate); err != nil {
			return fmt.Errorf("invalid generation date %q: %w", p.GenerationDate, err)
		}
	}
	if p.ModelMetadata.SizeBytes < 0 {
		return fmt.Errorf("invalid model size %d", p.ModelMetadata.SizeBytes)
	}
	return nil
}

func (p *Passport) String() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

package storage

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/vocdoni/modelpass/log"
)

// ArtifactEncoding selects the on-disk encoding of a registry artifact.
type ArtifactEncoding int

const (
	// ArtifactEncodingCBOR is the deterministic CBOR encoding, the default.
	ArtifactEncodingCBOR ArtifactEncoding = iota
	// ArtifactEncodingJSON stores the artifact as plain JSON, used for
	// records that embed JSON documents already.
	ArtifactEncodingJSON
)

// EncodeArtifact encodes an artifact in the given encoding, or CBOR when
// none is given. A JSON encoding failure falls back to CBOR.
func EncodeArtifact(a any, encoding ...ArtifactEncoding) ([]byte, error) {
	if len(encoding) > 0 {
		switch encoding[0] {
		case ArtifactEncodingCBOR:
			return EncodeArtifactCBOR(a)
		case ArtifactEncodingJSON:
			data, err := EncodeArtifactJSON(a)
			if err != nil {
				log.Warnw("falling back to CBOR encoding after JSON failure", "error", err)
				return EncodeArtifactCBOR(a)
			}
			return data, nil
		default:
			return nil, fmt.Errorf("unknown artifact encoding: %d", encoding[0])
		}
	}
	return EncodeArtifactCBOR(a)
}

// DecodeArtifact decodes an artifact from the given encoding, or CBOR
// when none is given. A JSON decoding failure falls back to CBOR.
func DecodeArtifact(data []byte, out any, encoding ...ArtifactEncoding) error {
	if len(encoding) > 0 {
		switch encoding[0] {
		case ArtifactEncodingCBOR:
			return DecodeArtifactCBOR(data, out)
		case ArtifactEncodingJSON:
			if err := DecodeArtifactJSON(data, out); err != nil {
				log.Warnw("falling back to CBOR decoding after JSON failure", "error", err)
				return DecodeArtifactCBOR(data, out)
			}
			return nil
		default:
			return fmt.Errorf("unknown artifact encoding: %d", encoding[0])
		}
	}
	return DecodeArtifactCBOR(data, out)
}

// EncodeArtifactCBOR encodes an artifact with deterministic CBOR, so the
// same record always produces the same bytes.
func EncodeArtifactCBOR(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

// DecodeArtifactCBOR decodes a CBOR-encoded artifact into out.
func DecodeArtifactCBOR(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// EncodeArtifactJSON encodes an artifact as JSON.
func EncodeArtifactJSON(a any) ([]byte, error) {
	return json.Marshal(a)
}

// DecodeArtifactJSON decodes a JSON-encoded artifact into out.
func DecodeArtifactJSON(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

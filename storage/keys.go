package storage

import (
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/vocdoni/modelpass/types"
)

// passportKey maps a model identity hash to its 32 byte key form.
func passportKey(modelID string) ([]byte, error) {
	if !types.IsModelID(modelID) {
		return nil, fmt.Errorf("malformed model id %q", modelID)
	}
	return hex.DecodeString(modelID)
}

// certificateKey maps a certificate UUID to its 16 byte key form.
func certificateKey(certificateID string) ([]byte, error) {
	id, err := uuid.Parse(certificateID)
	if err != nil {
		return nil, fmt.Errorf("malformed certificate id %q: %w", certificateID, err)
	}
	return id[:], nil
}

// indexKey is the cm/ entry linking a model to one of its certificates.
func indexKey(modelKey, certKey []byte) []byte {
	return slices.Concat(modelKey, certKey)
}

// certificateIDFromKey recovers the UUID string from a 16 byte key.
func certificateIDFromKey(key []byte) (string, error) {
	id, err := uuid.FromBytes(key)
	if err != nil {
		return "", fmt.Errorf("malformed certificate key %x: %w", key, err)
	}
	return id.String(), nil
}

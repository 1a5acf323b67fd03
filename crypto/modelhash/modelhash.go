// Package modelhash provides the hash functions that derive a model's
// verifiable identity. All digests are SHA3-256 rendered as lowercase hex.
package modelhash

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

// HashBytes returns the SHA3-256 digest of data as a 64-character lowercase
// hex string.
func HashBytes(data []byte) string {
	digest := sha3.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// HashFile returns the SHA3-256 digest of the file contents at path. The
// file is streamed, so arbitrarily large model files can be hashed without
// loading them in memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("could not hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CanonicalSettings re-encodes a toolkit settings document into its
// canonical form: the top-level "timestamp" member removed and the rest
// serialized compact with object keys sorted. Number literals are preserved
// as written. The toolkit refreshes the timestamp on every invocation, so
// hashing the raw bytes would never be reproducible.
func CanonicalSettings(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not parse settings: %w", err)
	}
	if obj, ok := doc.(map[string]any); ok {
		delete(obj, "timestamp")
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("could not serialize settings: %w", err)
	}
	return out, nil
}

// HashSettings returns the identity digest of a settings document,
// canonicalized first so that key order, indentation and the volatile
// timestamp do not affect the result.
func HashSettings(raw []byte) (string, error) {
	canonical, err := CanonicalSettings(raw)
	if err != nil {
		return "", err
	}
	return HashBytes(canonical), nil
}

// HashSettingsFile is HashSettings over the contents of the file at path.
func HashSettingsFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", path, err)
	}
	return HashSettings(raw)
}

// IdentityHash derives the model identity from its three component digests.
// The preimage is the concatenation of the hex strings in exactly this
// order: weights, verification key, settings. Reordering the inputs yields
// a different identity.
func IdentityHash(weightHash, vkHash, settingsHash string) string {
	return HashBytes([]byte(weightHash + vkHash + settingsHash))
}

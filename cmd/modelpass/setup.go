package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vocdoni/modelpass/attribution"
	"github.com/vocdoni/modelpass/config"
	"github.com/vocdoni/modelpass/db/metadb"
	"github.com/vocdoni/modelpass/storage"
	"github.com/vocdoni/modelpass/toolkit"
	"github.com/vocdoni/modelpass/types"
)

// newPipeline builds the toolkit adapter and the attribution pipeline from
// the configuration.
func newPipeline(cfg *Config) (*attribution.Pipeline, error) {
	tk, err := toolkit.New(toolkit.Options{
		Bin:          cfg.Toolkit.Bin,
		StageTimeout: cfg.Toolkit.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return attribution.New(tk, config.MinToolkitVersion), nil
}

// openRegistry opens the registry database under the configured datadir.
func openRegistry(cfg *Config) (*storage.Storage, error) {
	database, err := metadb.New(cfg.DB.Type, cfg.Datadir)
	if err != nil {
		return nil, fmt.Errorf("could not open registry: %w", err)
	}
	return storage.New(database), nil
}

// writeRecordFile renders record as indented JSON into dir/name and
// returns the resulting path.
func writeRecordFile(dir, name string, record any) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create output directory: %w", err)
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not encode record: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	return path, nil
}

// modelStem is the model file name without its extension, used in output
// file names.
func modelStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readPassportFile loads and validates a passport document.
func readPassportFile(path string) (*types.Passport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read passport file: %w", err)
	}
	passport := &types.Passport{}
	if err := json.Unmarshal(data, passport); err != nil {
		return nil, fmt.Errorf("could not parse passport file %s: %w", path, err)
	}
	if err := passport.Validate(); err != nil {
		return nil, fmt.Errorf("invalid passport file %s: %w", path, err)
	}
	return passport, nil
}

// readCertificateFile loads and validates an attribution certificate
// document.
func readCertificateFile(path string) (*types.AttributionCertificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read certificate file: %w", err)
	}
	cert := &types.AttributionCertificate{}
	if err := json.Unmarshal(data, cert); err != nil {
		return nil, fmt.Errorf("could not parse certificate file %s: %w", path, err)
	}
	if err := cert.Validate(); err != nil {
		return nil, fmt.Errorf("invalid certificate file %s: %w", path, err)
	}
	return cert, nil
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/vocdoni/modelpass/attribution"
	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/storage"
	"github.com/vocdoni/modelpass/types"
)

// runAttributeContent proves that the given input was processed by the
// given model and writes the resulting attribution certificate.
func runAttributeContent(args []string) int {
	fs := newFlagSet("attribute-content")
	fs.StringP("output", "o", ".", "directory for the generated certificate file")
	fs.Bool("no-store", false, "do not register the certificate in the local registry")

	cfg, err := loadConfig(fs, args)
	if err != nil {
		return fail(err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	if err := validateConfig(cfg); err != nil {
		return fail(err)
	}
	if fs.NArg() != 2 {
		return fail(fmt.Errorf("attribute-content needs a model file and an input file argument"))
	}
	modelPath, inputPath := fs.Arg(0), fs.Arg(1)

	pipeline, err := newPipeline(cfg)
	if err != nil {
		return fail(err)
	}
	cert, err := pipeline.Attribute(context.Background(), modelPath, inputPath)
	if err != nil {
		return fail(err)
	}
	path, err := writeRecordFile(cfg.Output, attribution.CertificateFilename(modelStem(modelPath), cert), cert)
	if err != nil {
		return fail(err)
	}
	log.Infow("attribution certificate generated",
		"certificateId", cert.CertificateID,
		"modelId", cert.ModelID,
		"file", path)
	if !cfg.NoStore {
		storeCertificate(cfg, cert)
	}
	fmt.Println(path)
	return exitOK
}

// storeCertificate registers the certificate in the local registry.
// Registry trouble never fails the command since the certificate file is
// already on disk.
func storeCertificate(cfg *Config, cert *types.AttributionCertificate) {
	store, err := openRegistry(cfg)
	if err != nil {
		log.Warnw("could not open registry, certificate not stored", "error", err.Error())
		return
	}
	defer store.Close()
	if err := store.SetCertificate(cert); err != nil {
		if errors.Is(err, storage.ErrKeyAlreadyExists) {
			log.Debugw("certificate already registered", "certificateId", cert.CertificateID)
			return
		}
		log.Warnw("could not store certificate", "error", err.Error())
		return
	}
	log.Infow("certificate registered", "certificateId", cert.CertificateID, "datadir", cfg.Datadir)
}

package main

import (
	"context"
	"fmt"

	"github.com/vocdoni/modelpass/log"
)

// runVerifyAttribution checks an attribution certificate against a
// passport and a model file. The exit code encodes the failure kind so
// callers can branch without parsing output.
func runVerifyAttribution(args []string) int {
	fs := newFlagSet("verify-attribution")
	fs.String("passport", "", "passport file (required)")
	fs.String("certificate", "", "attribution certificate file (required)")
	fs.String("model", "", "model file to verify against (required)")
	fs.Bool("embedded", false, "verify using only the artifacts embedded in the certificate")

	cfg, err := loadConfig(fs, args)
	if err != nil {
		return fail(err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	if err := validateConfig(cfg); err != nil {
		return fail(err)
	}
	if cfg.Passport == "" || cfg.Certificate == "" || cfg.Model == "" {
		return fail(fmt.Errorf("verify-attribution needs --passport, --certificate and --model"))
	}

	passport, err := readPassportFile(cfg.Passport)
	if err != nil {
		return fail(err)
	}
	cert, err := readCertificateFile(cfg.Certificate)
	if err != nil {
		return fail(err)
	}

	pipeline, err := newPipeline(cfg)
	if err != nil {
		return fail(err)
	}
	ctx := context.Background()
	if cfg.Embedded {
		err = pipeline.VerifyEmbedded(ctx, cfg.Model, passport, cert)
	} else {
		err = pipeline.Verify(ctx, cfg.Model, passport, cert)
	}
	if err != nil {
		return fail(err)
	}
	log.Infow("attribution verified",
		"modelId", passport.ModelIdentityHash,
		"certificateId", cert.CertificateID,
		"embedded", cfg.Embedded)
	fmt.Printf("attribution verified (model %s, certificate %s)\n", passport.ShortID(), cert.CertificateID)
	return exitOK
}

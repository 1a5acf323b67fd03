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

// runCreatePassport generates a model passport for the given model file,
// writes it next to the caller and registers it in the local registry
// unless --no-store is set.
func runCreatePassport(args []string) int {
	fs := newFlagSet("create-passport")
	fs.StringP("output", "o", ".", "directory for the generated passport file")
	fs.String("name", "", "model name (defaults to the model file name)")
	fs.String("description", "", "model description")
	fs.String("author", "", "model author")
	fs.String("source-url", "", "model source URL")
	fs.Bool("no-store", false, "do not register the passport in the local registry")

	cfg, err := loadConfig(fs, args)
	if err != nil {
		return fail(err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	if err := validateConfig(cfg); err != nil {
		return fail(err)
	}
	if fs.NArg() != 1 {
		return fail(fmt.Errorf("create-passport needs exactly one model file argument"))
	}
	modelPath := fs.Arg(0)

	pipeline, err := newPipeline(cfg)
	if err != nil {
		return fail(err)
	}
	passport, err := pipeline.BuildPassport(context.Background(), modelPath, types.ModelMetadata{
		Name:        cfg.Name,
		Description: cfg.Description,
		Author:      cfg.Author,
		SourceURL:   cfg.SourceURL,
	})
	if err != nil {
		return fail(err)
	}
	path, err := writeRecordFile(cfg.Output, attribution.PassportFilename(passport), passport)
	if err != nil {
		return fail(err)
	}
	log.Infow("passport generated",
		"modelId", passport.ModelIdentityHash,
		"toolkit", passport.ToolkitVersion,
		"file", path)
	if !cfg.NoStore {
		storePassport(cfg, passport)
	}
	fmt.Println(path)
	return exitOK
}

// storePassport registers the passport in the local registry. Registry
// trouble never fails the command since the passport file is already on
// disk.
func storePassport(cfg *Config, passport *types.Passport) {
	store, err := openRegistry(cfg)
	if err != nil {
		log.Warnw("could not open registry, passport not stored", "error", err.Error())
		return
	}
	defer store.Close()
	if err := store.SetPassport(passport); err != nil {
		if errors.Is(err, storage.ErrKeyAlreadyExists) {
			log.Debugw("passport already registered", "modelId", passport.ModelIdentityHash)
			return
		}
		log.Warnw("could not store passport", "error", err.Error())
		return
	}
	log.Infow("passport registered", "modelId", passport.ModelIdentityHash, "datadir", cfg.Datadir)
}

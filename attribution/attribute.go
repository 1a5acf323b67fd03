package attribution

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/modelpass/crypto/modelhash"
	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/types"
	"github.com/vocdoni/modelpass/workspace"
)

// Attribute runs the full proving pipeline for one (model, input) pair and
// assembles the attribution certificate. The certificate embeds the proof,
// the settings and the verification key exactly as the toolkit emitted
// them, so it can be verified later without regenerating anything. The
// first failing stage aborts the run.
func (p *Pipeline) Attribute(ctx context.Context, modelPath, inputPath string) (*types.AttributionCertificate, error) {
	if _, err := checkModel(modelPath); err != nil {
		return nil, err
	}
	inputSize, err := checkInput(inputPath)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.New()
	if err != nil {
		return nil, err
	}
	defer releaseWorkspace(ctx, ws)

	var weightHash string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if weightHash, err = modelhash.HashFile(modelPath); err != nil {
			return modelReadError(modelPath, err)
		}
		return nil
	})
	g.Go(func() error {
		return p.identityArtifacts(gctx, modelPath, ws)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := p.toolkit.GenWitness(ctx, ws.CompiledModel(), inputPath, ws.Witness()); err != nil {
		return nil, toolkitError(err)
	}
	if err := p.toolkit.Prove(ctx, ws.CompiledModel(), ws.ProvingKey(), ws.Witness(), ws.SRS(), ws.Proof()); err != nil {
		return nil, toolkitError(err)
	}

	settingsHash, err := modelhash.HashSettingsFile(ws.Settings())
	if err != nil {
		return nil, err
	}
	vkHash, err := modelhash.HashFile(ws.VerifyingKey())
	if err != nil {
		return nil, err
	}
	identity := modelhash.IdentityHash(weightHash, vkHash, settingsHash)

	proofRaw, err := os.ReadFile(ws.Proof())
	if err != nil {
		return nil, fmt.Errorf("could not read proof artifact: %w", err)
	}
	settingsRaw, err := os.ReadFile(ws.Settings())
	if err != nil {
		return nil, fmt.Errorf("could not read settings artifact: %w", err)
	}
	vkRaw, err := os.ReadFile(ws.VerifyingKey())
	if err != nil {
		return nil, fmt.Errorf("could not read verification key artifact: %w", err)
	}

	input, err := inputDescriptor(inputPath, inputSize)
	if err != nil {
		return nil, err
	}

	cert := &types.AttributionCertificate{
		CertificateID:  uuid.New().String(),
		ModelID:        identity,
		GenerationDate: types.FormatGenerationDate(time.Now()),
		Proof:          json.RawMessage(proofRaw),
		Settings:       json.RawMessage(settingsRaw),
		VK:             vkRaw,
		Input:          input,
	}
	log.Infow("attribution certificate built",
		"certificate", cert.CertificateID, "model_id", identity, "input", input.CID)
	return cert, nil
}

// inputDescriptor identifies the attributed input by a CIDv1 over its raw
// bytes.
func inputDescriptor(path string, size int64) (*types.InputDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, inputReadError(path, err)
	}
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return nil, fmt.Errorf("could not hash input data: %w", err)
	}
	return &types.InputDescriptor{
		CID:       cid.NewCidV1(cid.Raw, mh).String(),
		SizeBytes: size,
	}, nil
}

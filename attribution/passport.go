package attribution

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/modelpass/crypto/modelhash"
	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/types"
	"github.com/vocdoni/modelpass/workspace"
)

// BuildPassport derives the verifiable identity of the model at modelPath
// and assembles its passport. Metadata fields are passed through; the name
// defaults to the model file stem and the size is always taken from the
// file itself. The passport is returned, not persisted.
func (p *Pipeline) BuildPassport(ctx context.Context, modelPath string, meta types.ModelMetadata) (*types.Passport, error) {
	size, err := checkModel(modelPath)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.New()
	if err != nil {
		return nil, err
	}
	defer releaseWorkspace(ctx, ws)

	// The weight hash depends only on the model bytes, so it runs
	// alongside the toolkit stages.
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

	settingsHash, err := modelhash.HashSettingsFile(ws.Settings())
	if err != nil {
		return nil, err
	}
	vkHash, err := modelhash.HashFile(ws.VerifyingKey())
	if err != nil {
		return nil, err
	}
	identity := modelhash.IdentityHash(weightHash, vkHash, settingsHash)

	if meta.Name == "" {
		meta.Name = modelStem(modelPath)
	}
	meta.SizeBytes = size

	passport := &types.Passport{
		ModelIdentityHash: identity,
		GenerationDate:    types.FormatGenerationDate(time.Now()),
		ToolkitVersion:    p.toolkitVersion(ctx),
		ModelMetadata:     meta,
		IdentityDetails: types.IdentityDetails{
			VKHash:       vkHash,
			SettingsHash: settingsHash,
			WeightHash:   weightHash,
		},
	}
	log.Infow("passport built", "model", meta.Name, "identity", identity)
	return passport, nil
}

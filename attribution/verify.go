package attribution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/modelpass/crypto/modelhash"
	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/toolkit"
	"github.com/vocdoni/modelpass/types"
	"github.com/vocdoni/modelpass/workspace"
)

// Verify checks that cert genuinely derives from the model at modelPath
// and from the identity recorded in passport. It regenerates settings,
// reference string and keys from the model, verifies the certificate's
// proof against the regenerated artifacts, then cross-checks every hash.
// The checks run in a fixed order and stop at the first failure, returning
// an *Error whose Kind tells wrong model, tampered proof and stale tooling
// apart. A nil return means the certificate checks out.
func (p *Pipeline) Verify(ctx context.Context, modelPath string, passport *types.Passport, cert *types.AttributionCertificate) error {
	if _, err := checkModel(modelPath); err != nil {
		return err
	}

	ws, err := workspace.New()
	if err != nil {
		return err
	}
	defer releaseWorkspace(ctx, ws)

	p.warnVersionSkew(ctx, passport)

	if err := p.identityArtifacts(ctx, modelPath, ws); err != nil {
		return err
	}

	if err := os.WriteFile(ws.Proof(), cert.Proof, 0o600); err != nil {
		return fmt.Errorf("could not materialize certificate proof: %w", err)
	}
	if err := p.toolkit.Verify(ctx, ws.Proof(), ws.Settings(), ws.SRS(), ws.VerifyingKey()); err != nil {
		if toolkit.Rejected(err) {
			return proofInvalidError(err)
		}
		return toolkitError(err)
	}

	var weightHash, settingsHash, vkHash string
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if weightHash, err = modelhash.HashFile(modelPath); err != nil {
			return modelReadError(modelPath, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settingsHash, err = modelhash.HashSettingsFile(ws.Settings())
		return err
	})
	g.Go(func() error {
		var err error
		vkHash, err = modelhash.HashFile(ws.VerifyingKey())
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := crossCheck(modelhash.IdentityHash(weightHash, vkHash, settingsHash),
		settingsHash, vkHash, passport, cert); err != nil {
		return err
	}
	log.Infow("attribution verified", "certificate", cert.CertificateID, "model_id", cert.ModelID)
	return nil
}

// VerifyEmbedded checks cert against passport using the settings and
// verification key embedded in the certificate instead of regenerating
// them from the model. This mode stays sound when the toolkit cannot
// reproduce stage outputs across versions: proof, weight and
// cross-document tampering are still detected, only the regeneration
// guarantee is given up.
func (p *Pipeline) VerifyEmbedded(ctx context.Context, modelPath string, passport *types.Passport, cert *types.AttributionCertificate) error {
	if _, err := checkModel(modelPath); err != nil {
		return err
	}

	ws, err := workspace.New()
	if err != nil {
		return err
	}
	defer releaseWorkspace(ctx, ws)

	p.warnVersionSkew(ctx, passport)

	var compact bytes.Buffer
	if err := json.Compact(&compact, cert.Settings); err != nil {
		return fmt.Errorf("certificate settings are not valid JSON: %w", err)
	}
	if err := os.WriteFile(ws.Settings(), compact.Bytes(), 0o600); err != nil {
		return fmt.Errorf("could not materialize certificate settings: %w", err)
	}
	if err := os.WriteFile(ws.VerifyingKey(), cert.VK, 0o600); err != nil {
		return fmt.Errorf("could not materialize certificate verification key: %w", err)
	}
	if err := os.WriteFile(ws.Proof(), cert.Proof, 0o600); err != nil {
		return fmt.Errorf("could not materialize certificate proof: %w", err)
	}

	// The reference string is derived from the embedded settings, the one
	// artifact the toolkit can always refetch.
	if err := p.toolkit.GetSRS(ctx, ws.Settings(), ws.SRS()); err != nil {
		return toolkitError(err)
	}

	if err := p.toolkit.Verify(ctx, ws.Proof(), ws.Settings(), ws.SRS(), ws.VerifyingKey()); err != nil {
		if toolkit.Rejected(err) {
			return proofInvalidError(err)
		}
		return toolkitError(err)
	}

	weightHash, err := modelhash.HashFile(modelPath)
	if err != nil {
		return modelReadError(modelPath, err)
	}
	settingsHash, err := modelhash.HashSettings(cert.Settings)
	if err != nil {
		return err
	}
	vkHash := modelhash.HashBytes(cert.VK)

	if err := crossCheck(modelhash.IdentityHash(weightHash, vkHash, settingsHash),
		settingsHash, vkHash, passport, cert); err != nil {
		return err
	}
	log.Infow("attribution verified with embedded artifacts",
		"certificate", cert.CertificateID, "model_id", cert.ModelID)
	return nil
}

// crossCheck performs the identity and component-hash comparisons shared
// by both verification modes. The identity comparison runs first: an
// identity mismatch means wrong model, while a component mismatch under a
// matching identity means the passport's recorded details were tampered
// with or hashed inconsistently.
func crossCheck(identity, settingsHash, vkHash string, passport *types.Passport, cert *types.AttributionCertificate) error {
	if identity != cert.ModelID {
		return identityMismatchError(
			"recomputed identity %s does not match certificate model id %s", identity, cert.ModelID)
	}
	if identity != passport.ModelIdentityHash {
		return identityMismatchError(
			"recomputed identity %s does not match passport identity %s", identity, passport.ModelIdentityHash)
	}
	if settingsHash != passport.IdentityDetails.SettingsHash {
		return toolkitDriftError(
			"settings hash %s does not match passport settings hash %s", settingsHash, passport.IdentityDetails.SettingsHash)
	}
	if vkHash != passport.IdentityDetails.VKHash {
		return toolkitDriftError(
			"verification key hash %s does not match passport vk hash %s", vkHash, passport.IdentityDetails.VKHash)
	}
	return nil
}

package attribution

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/modelpass/types"
)

func TestFilenames(t *testing.T) {
	c := qt.New(t)

	passport := &types.Passport{
		ModelIdentityHash: strings.Repeat("ab", 32),
		ModelMetadata:     types.ModelMetadata{Name: "resnet18"},
	}
	c.Assert(PassportFilename(passport), qt.Equals, "model_resnet18_ababababab_passport.json")

	cert := &types.AttributionCertificate{ModelID: strings.Repeat("cd", 32)}
	c.Assert(CertificateFilename("resnet18", cert), qt.Equals,
		"model_resnet18_cdcdcdcdcd_attribution_certificate.json")

	c.Run("hostile names sanitized", func(c *qt.C) {
		passport := &types.Passport{
			ModelIdentityHash: strings.Repeat("ab", 32),
			ModelMetadata:     types.ModelMetadata{Name: "my model/v2"},
		}
		c.Assert(PassportFilename(passport), qt.Equals, "model_my_model_v2_ababababab_passport.json")
	})

	c.Run("empty name falls back", func(c *qt.C) {
		passport := &types.Passport{ModelIdentityHash: strings.Repeat("ab", 32)}
		c.Assert(PassportFilename(passport), qt.Equals, "model_unnamed_ababababab_passport.json")
	})
}

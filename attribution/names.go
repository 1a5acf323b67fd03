package attribution

import (
	"fmt"
	"strings"

	"github.com/vocdoni/modelpass/types"
)

// PassportFilename returns the conventional file name for a passport:
// model_<name>_<hash10>_passport.json. The embedded name and hash prefix
// let a human cross-reference files without parsing them.
func PassportFilename(p *types.Passport) string {
	return fmt.Sprintf("model_%s_%s_passport.json", sanitizeName(p.ModelMetadata.Name), p.ShortID())
}

// CertificateFilename returns the conventional file name for an
// attribution certificate: model_<name>_<hash10>_attribution_certificate.json.
// The model name is not part of the certificate record, so callers pass it.
func CertificateFilename(modelName string, cert *types.AttributionCertificate) string {
	return fmt.Sprintf("model_%s_%s_attribution_certificate.json", sanitizeName(modelName), cert.ShortModelID())
}

// sanitizeName keeps file names portable when model names carry path
// separators or other hostile characters.
func sanitizeName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}

package safety

import (
	"strings"

	"github.com/faultlinechaos/faultline-go/pkg/cerrors"
	"github.com/faultlinechaos/faultline-go/pkg/log"
)

// ProductionMarker is the environment name that the gate refuses to run
// chaos in, compared case-insensitively
const ProductionMarker = "prod"

// Gate blocks chaos against the production environment. It runs strictly
// before any network call, so a rejected operation is a no-op on the
// remote side.
type Gate struct {
	marker string
}

// New prepares the safety gate with the production marker
func New() *Gate {
	return &Gate{marker: ProductionMarker}
}

// Check fails with a SafetyViolation when the environment is production and
// no override was granted. The name is trimmed and lowered before comparison,
// so "PROD" and " Prod " are both caught.
func (g *Gate) Check(environmentName string, overrideAllowed bool) error {
	if strings.ToLower(strings.TrimSpace(environmentName)) != g.marker {
		return nil
	}
	if overrideAllowed {
		log.Warnf("[Safety]: Production override is enabled, allowing chaos in the %v environment", environmentName)
		return nil
	}
	return cerrors.SafetyViolation{
		Environment: environmentName,
		Reason:      "chaos in production requires an explicit override",
	}
}

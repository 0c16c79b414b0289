package registry

import (
	"strings"

	"github.com/netra/deployops/internal/logging"
)

// Fragment builds the --set-secrets value for one service + environment:
// a comma-separated list of NAME=gsm-id:latest tokens with no embedded
// whitespace, recomputed on every invocation and never persisted.
//
// Names are deduplicated first-seen while preserving catalog order, so a
// secret requested by two categories appears once. A name with no GSM
// mapping is skipped with a warning rather than failing the build; the
// critical-secret check is the fail-closed side of that asymmetry.
// Services without secrets (frontend) yield "".
func (r *Registry) Fragment(service, environment string, logger *logging.Logger) (string, error) {
	if logger == nil {
		logger = logging.New(false, false)
	}
	if !r.HasEnvironment(environment) {
		return "", UnknownEnvironmentError{Environment: environment, Known: r.Environments()}
	}

	seen := make(map[string]bool)
	var tokens []string
	for _, name := range r.AllServiceSecrets(service) {
		if seen[name] {
			continue
		}
		seen[name] = true

		gsmID, ok := r.Mapping(environment, name)
		if !ok {
			logger.Warn("No GSM mapping for %s (%s); omitting from --set-secrets", name, environment)
			continue
		}
		tokens = append(tokens, name+"="+gsmID+":latest")
	}

	return strings.Join(tokens, ","), nil
}

package registry

import (
	"fmt"
	"strings"
)

// minJWTLength is the minimum byte length for JWT signing keys. Shorter
// keys are rejected before deployment rather than weakening HS256 in
// production.
const minJWTLength = 32

// placeholderMarkers are case-insensitive substrings indicating a secret
// was never configured with a real credential.
var placeholderMarkers = []string{"REPLACE", "PLACEHOLDER", "YOUR-", "TODO", "FIXME"}

// CheckQuality inspects a retrieved secret value and returns a
// human-readable rejection reason, or "" when the value is safe to
// deploy. Rules apply in precedence order: emptiness, placeholder
// markers, then the JWT length floor.
func CheckQuality(name, value string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("%s is empty or whitespace-only", name)
	}

	upper := strings.ToUpper(value)
	for _, marker := range placeholderMarkers {
		if strings.Contains(upper, marker) {
			return fmt.Sprintf("%s contains placeholder text (%s)", name, marker)
		}
	}

	if isJWTName(name) && len(value) < minJWTLength {
		return fmt.Sprintf("%s is too short: %d chars, JWT secrets need at least %d", name, len(value), minJWTLength)
	}

	return ""
}

// isJWTName reports whether a logical secret name belongs to the JWT
// family.
func isJWTName(name string) bool {
	return strings.Contains(strings.ToUpper(name), "JWT")
}

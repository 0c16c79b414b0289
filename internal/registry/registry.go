// Package registry holds the secret configuration for the netra Cloud Run
// services: which logical secrets each service needs, how each logical
// name maps to a Google Secret Manager resource, and which secrets are
// critical enough that their absence must block a deployment.
//
// A Registry is an immutable value constructed once and passed into the
// fragment generator and readiness checks. Default() builds the
// production tables; tests build their own with New().
package registry

import (
	"fmt"
	"sort"
)

// Service names for the deployable units.
const (
	ServiceBackend  = "backend"
	ServiceAuth     = "auth"
	ServiceFrontend = "frontend"
)

// Secret categories. Purely a human-readable grouping; validation does
// not branch on them.
const (
	CategoryDatabase       = "database"
	CategoryAuthentication = "authentication"
	CategoryOAuth          = "oauth"
	CategoryRedis          = "redis"
	CategoryAIServices     = "ai_services"
	CategoryAnalytics      = "analytics"
)

// CategoryBlock is one ordered group of logical secret names within a
// service's catalog. Blocks keep insertion order so generated fragments
// are byte-stable across runs.
type CategoryBlock struct {
	Category string
	Names    []string
}

// Registry is the aggregate secret configuration.
type Registry struct {
	catalog  map[string][]CategoryBlock
	mappings map[string]map[string]string // environment -> logical name -> GSM id
	critical map[string][]string
}

// New constructs a Registry from explicit tables. All inputs are copied;
// the caller's maps and slices stay untouched afterwards.
func New(catalog map[string][]CategoryBlock, mappings map[string]map[string]string, critical map[string][]string) *Registry {
	r := &Registry{
		catalog:  make(map[string][]CategoryBlock, len(catalog)),
		mappings: make(map[string]map[string]string, len(mappings)),
		critical: make(map[string][]string, len(critical)),
	}
	for service, blocks := range catalog {
		copied := make([]CategoryBlock, len(blocks))
		for i, block := range blocks {
			copied[i] = CategoryBlock{
				Category: block.Category,
				Names:    append([]string(nil), block.Names...),
			}
		}
		r.catalog[service] = copied
	}
	for env, table := range mappings {
		copied := make(map[string]string, len(table))
		for name, id := range table {
			copied[name] = id
		}
		r.mappings[env] = copied
	}
	for service, names := range critical {
		r.critical[service] = append([]string(nil), names...)
	}
	return r
}

// Default returns the production registry. Only the staging environment
// carries a mapping table; other environments fail closed until their
// tables are added here.
func Default() *Registry {
	return New(
		map[string][]CategoryBlock{
			ServiceBackend: {
				{Category: CategoryDatabase, Names: []string{
					"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_HOST",
				}},
				{Category: CategoryAuthentication, Names: []string{
					"SECRET_KEY", "JWT_SECRET", "JWT_SECRET_KEY", "SERVICE_SECRET", "SERVICE_ID",
				}},
				{Category: CategoryRedis, Names: []string{
					"REDIS_PASSWORD",
				}},
				{Category: CategoryAIServices, Names: []string{
					"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
				}},
				{Category: CategoryAnalytics, Names: []string{
					"POSTHOG_API_KEY",
				}},
			},
			ServiceAuth: {
				{Category: CategoryDatabase, Names: []string{
					"POSTGRES_PASSWORD",
				}},
				{Category: CategoryAuthentication, Names: []string{
					"JWT_SECRET_KEY", "JWT_SECRET_STAGING", "SERVICE_SECRET", "SERVICE_ID",
				}},
				{Category: CategoryOAuth, Names: []string{
					"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
				}},
			},
			// frontend is served static config only; it has no GSM-backed
			// secrets and deliberately has no catalog entry.
		},
		map[string]map[string]string{
			"staging": {
				"POSTGRES_USER":     "postgres-user-staging",
				"POSTGRES_PASSWORD": "postgres-password-staging",
				"POSTGRES_HOST":     "postgres-host-staging",
				"SECRET_KEY":        "secret-key-staging",
				// The whole JWT family resolves to one GSM secret: backend
				// and auth validate tokens signed with the same key, and
				// divergence breaks WebSocket/API auth with no other
				// symptom.
				"JWT_SECRET":         "jwt-secret-staging",
				"JWT_SECRET_KEY":     "jwt-secret-staging",
				"JWT_SECRET_STAGING": "jwt-secret-staging",

				"SERVICE_SECRET":       "service-secret-staging",
				"SERVICE_ID":           "service-id-staging",
				"REDIS_PASSWORD":       "redis-password-staging",
				"OPENAI_API_KEY":       "openai-api-key-staging",
				"ANTHROPIC_API_KEY":    "anthropic-api-key-staging",
				"GEMINI_API_KEY":       "gemini-api-key-staging",
				"POSTHOG_API_KEY":      "posthog-api-key-staging",
				"GOOGLE_CLIENT_ID":     "google-client-id-staging",
				"GOOGLE_CLIENT_SECRET": "google-client-secret-staging",
			},
		},
		map[string][]string{
			ServiceBackend: {
				"SECRET_KEY", "JWT_SECRET", "SERVICE_SECRET", "SERVICE_ID", "POSTGRES_PASSWORD",
			},
			ServiceAuth: {
				"JWT_SECRET_KEY", "SERVICE_SECRET", "SERVICE_ID", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
			},
		},
	)
}

// Services returns the service names that have catalog entries, sorted.
func (r *Registry) Services() []string {
	names := make([]string, 0, len(r.catalog))
	for name := range r.catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Environments returns the environments that have mapping tables, sorted.
func (r *Registry) Environments() []string {
	names := make([]string, 0, len(r.mappings))
	for name := range r.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServiceSecrets returns the catalog for a service grouped by category.
// Unknown services return an empty map rather than an error: frontend
// legitimately has no secrets, and callers treat the two cases alike.
func (r *Registry) ServiceSecrets(service string) map[string][]string {
	out := make(map[string][]string)
	for _, block := range r.catalog[service] {
		out[block.Category] = append(out[block.Category], block.Names...)
	}
	return out
}

// AllServiceSecrets flattens a service's catalog into one ordered list.
// Names appearing in multiple categories appear multiple times; callers
// that need uniqueness deduplicate downstream.
func (r *Registry) AllServiceSecrets(service string) []string {
	var out []string
	for _, block := range r.catalog[service] {
		out = append(out, block.Names...)
	}
	return out
}

// Mapping resolves a logical secret name to its GSM resource id for an
// environment. Absence is signaled by ok=false, never by an error: a
// missing mapping is a configuration gap the caller decides how to treat.
func (r *Registry) Mapping(environment, name string) (string, bool) {
	table, ok := r.mappings[environment]
	if !ok {
		return "", false
	}
	id, ok := table[name]
	return id, ok
}

// HasEnvironment reports whether a mapping table exists for environment.
func (r *Registry) HasEnvironment(environment string) bool {
	_, ok := r.mappings[environment]
	return ok
}

// CriticalSecrets returns the secrets whose absence must abort a
// deployment of service.
func (r *Registry) CriticalSecrets(service string) []string {
	return append([]string(nil), r.critical[service]...)
}

// MissingCritical computes which of a service's critical secrets are not
// in the caller-supplied set of available names. Pure set difference;
// an empty result means the service is clear to deploy.
func (r *Registry) MissingCritical(service string, available map[string]bool) []string {
	var missing []string
	for _, name := range r.critical[service] {
		if !available[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// JWTFamily returns the distinct logical names containing "JWT" across
// every service catalog, sorted. Used by the cross-service consistency
// check.
func (r *Registry) JWTFamily() []string {
	seen := make(map[string]bool)
	for _, blocks := range r.catalog {
		for _, block := range blocks {
			for _, name := range block.Names {
				if isJWTName(name) {
					seen[name] = true
				}
			}
		}
	}
	family := make([]string, 0, len(seen))
	for name := range seen {
		family = append(family, name)
	}
	sort.Strings(family)
	return family
}

// UnknownEnvironmentError is returned when a deployment targets an
// environment with no mapping table.
type UnknownEnvironmentError struct {
	Environment string
	Known       []string
}

func (e UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("no secret mappings defined for environment %q (known: %v)", e.Environment, e.Known)
}

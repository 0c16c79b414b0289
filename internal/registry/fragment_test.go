package registry_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netra/deployops/internal/logging"
	"github.com/netra/deployops/internal/registry"
)

var tokenPattern = regexp.MustCompile(`^[A-Z0-9_]+=[a-z0-9-]+:latest$`)

func TestFragmentFormat(t *testing.T) {
	t.Parallel()

	reg := registry.Default()
	for _, service := range []string{registry.ServiceBackend, registry.ServiceAuth} {
		fragment, err := reg.Fragment(service, "staging", nil)
		require.NoError(t, err)
		require.NotEmpty(t, fragment)
		assert.NotContains(t, fragment, " ")

		for _, token := range strings.Split(fragment, ",") {
			assert.Regexp(t, tokenPattern, token, "service %s", service)
		}
	}
}

func TestFragmentIdempotent(t *testing.T) {
	t.Parallel()

	reg := registry.Default()
	first, err := reg.Fragment(registry.ServiceBackend, "staging", nil)
	require.NoError(t, err)
	second, err := reg.Fragment(registry.ServiceBackend, "staging", nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFragmentFrontendEmpty(t *testing.T) {
	t.Parallel()

	fragment, err := registry.Default().Fragment(registry.ServiceFrontend, "staging", nil)
	require.NoError(t, err)
	assert.Equal(t, "", fragment)
}

func TestFragmentDeduplicatesFirstSeen(t *testing.T) {
	t.Parallel()

	reg := registry.New(
		map[string][]registry.CategoryBlock{
			"backend": {
				{Category: "database", Names: []string{"SHARED_SECRET", "DB_PASSWORD"}},
				{Category: "redis", Names: []string{"SHARED_SECRET"}},
			},
		},
		map[string]map[string]string{"staging": {
			"SHARED_SECRET": "shared-secret-staging",
			"DB_PASSWORD":   "db-password-staging",
		}},
		nil,
	)

	fragment, err := reg.Fragment("backend", "staging", nil)
	require.NoError(t, err)
	assert.Equal(t, "SHARED_SECRET=shared-secret-staging:latest,DB_PASSWORD=db-password-staging:latest", fragment)
	assert.Equal(t, 1, strings.Count(fragment, "SHARED_SECRET="))
}

func TestFragmentSkipsUnmappedNames(t *testing.T) {
	t.Parallel()

	// A configuration gap is fail-open: the secret is omitted with a
	// warning instead of blocking the deploy.
	reg := registry.New(
		map[string][]registry.CategoryBlock{
			"backend": {{Category: "database", Names: []string{"MAPPED", "UNMAPPED"}}},
		},
		map[string]map[string]string{"staging": {"MAPPED": "mapped-staging"}},
		nil,
	)

	fragment, err := reg.Fragment("backend", "staging", logging.New(false, true))
	require.NoError(t, err)
	assert.Equal(t, "MAPPED=mapped-staging:latest", fragment)
}

func TestFragmentUnknownEnvironment(t *testing.T) {
	t.Parallel()

	_, err := registry.Default().Fragment(registry.ServiceBackend, "production", nil)
	require.Error(t, err)

	var unknownEnv registry.UnknownEnvironmentError
	require.ErrorAs(t, err, &unknownEnv)
	assert.Equal(t, "production", unknownEnv.Environment)
	assert.Contains(t, unknownEnv.Known, "staging")
}

func TestFragmentContainsJWTMapping(t *testing.T) {
	t.Parallel()

	fragment, err := registry.Default().Fragment(registry.ServiceBackend, "staging", nil)
	require.NoError(t, err)
	assert.Contains(t, fragment, "JWT_SECRET=jwt-secret-staging:latest")
	assert.Contains(t, fragment, "JWT_SECRET_KEY=jwt-secret-staging:latest")
}

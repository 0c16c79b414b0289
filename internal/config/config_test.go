package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netra/deployops/internal/config"
	dserrors "github.com/netra/deployops/internal/errors"
)

const validYAML = `version: 1
project: netra-staging
region: europe-west1
environment: staging
serviceAccount: deployer@netra-staging.iam.gserviceaccount.com
imageRepo: europe-west1-docker.pkg.dev/netra-staging/netra
services:
  backend:
    port: 8080
    memory: 512Mi
    source: ./backend
  auth:
    port: 8081
    memory: 256Mi
    source: ./auth
  frontend:
    port: 3000
    allowUnauthenticated: true
    source: ./frontend
`

func writeConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return &config.Config{Path: path}
}

func TestLoadValidConfig(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, validYAML)
	require.NoError(t, cfg.Load())

	assert.Equal(t, "netra-staging", cfg.Definition.Project)
	assert.Equal(t, "staging", cfg.Definition.Environment)
	assert.Len(t, cfg.Definition.Services, 3)

	backend, err := cfg.Service("backend")
	require.NoError(t, err)
	assert.Equal(t, 8080, backend.Port)
	assert.Equal(t, "512Mi", backend.Memory)
	assert.False(t, backend.AllowUnauthenticated)

	frontend, err := cfg.Service("frontend")
	require.NoError(t, err)
	assert.True(t, frontend.AllowUnauthenticated)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Path: filepath.Join(t.TempDir(), "nope.yaml")}
	err := cfg.Load()

	var cfgErr dserrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Suggestion, "--config")
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "version: 1\n\tproject: broken")
	err := cfg.Load()

	var cfgErr dserrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "YAML")
}

func TestLoadSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing environment",
			content: "version: 1\nproject: p\nregion: europe-west1\nservices: {}\n",
		},
		{
			name:    "wrong version",
			content: "version: 2\nproject: p\nregion: r\nenvironment: staging\nservices: {}\n",
		},
		{
			name:    "invalid port",
			content: "version: 1\nproject: p\nregion: r\nenvironment: staging\nservices:\n  backend:\n    port: 0\n",
		},
		{
			name:    "unknown service field",
			content: "version: 1\nproject: p\nregion: r\nenvironment: staging\nservices:\n  backend:\n    replicas: 3\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := writeConfig(t, tt.content)
			err := cfg.Load()

			var cfgErr dserrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestServiceUnknown(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, validYAML)
	require.NoError(t, cfg.Load())

	_, err := cfg.Service("worker")
	var cfgErr dserrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Suggestion, "backend")
}

func TestServiceNamesSorted(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, validYAML)
	require.NoError(t, cfg.Load())

	assert.Equal(t, []string{"auth", "backend", "frontend"}, cfg.ServiceNames())
}

func TestImageTag(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, validYAML)
	require.NoError(t, cfg.Load())

	assert.Equal(t, "europe-west1-docker.pkg.dev/netra-staging/netra/backend:latest", cfg.ImageTag("backend"))
}

func TestImageTagDefaultsToGCR(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "version: 1\nproject: netra-staging\nregion: r\nenvironment: staging\nservices: {}\n")
	require.NoError(t, cfg.Load())

	assert.Equal(t, "gcr.io/netra-staging/backend:latest", cfg.ImageTag("backend"))
}

package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dserrors "github.com/netra/deployops/internal/errors"
)

func TestUserErrorFormat(t *testing.T) {
	t.Parallel()

	err := dserrors.UserError{
		Message:    "Secrets validation failed",
		Details:    "2 critical secrets missing",
		Suggestion: "Create them first",
	}

	msg := err.Error()
	assert.Contains(t, msg, "Secrets validation failed")
	assert.Contains(t, msg, "Details: 2 critical secrets missing")
	assert.Contains(t, msg, "Try: Create them first")
}

func TestConfigErrorFormat(t *testing.T) {
	t.Parallel()

	err := dserrors.ConfigError{
		Field:      "services",
		Value:      "worker",
		Message:    "service is not defined",
		Suggestion: "Known services: backend",
	}

	msg := err.Error()
	assert.Contains(t, msg, "field 'services'")
	assert.Contains(t, msg, "worker")
	assert.Contains(t, msg, "Known services: backend")
}

func TestGcloudSuggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"permission denied", "ERROR: PERMISSION_DENIED: access denied", "IAM permissions"},
		{"not found", "ERROR: NOT_FOUND: secret missing", "gcloud secrets list"},
		{"unauthenticated", "ERROR: UNAUTHENTICATED", "gcloud auth login"},
		{"api disabled", "Secret Manager API has not been used in project", "services enable"},
		{"throttled", "ERROR: RESOURCE_EXHAUSTED", "throttled"},
		{"timeout", "deadline exceeded: timeout waiting for response", "timed out"},
		{"unknown", "something unexpected", "authentication"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, dserrors.GcloudSuggestion(tt.stderr), tt.want)
		})
	}
}

func TestWrapCommandNotFound(t *testing.T) {
	t.Parallel()

	err := dserrors.WrapCommandNotFound("gcloud", nil)
	assert.Contains(t, err.Error(), "cloud.google.com/sdk")

	err = dserrors.WrapCommandNotFound("kubectl", nil)
	assert.Contains(t, err.Error(), "PATH")
}

package gsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netra/deployops/internal/gsm"
)

func TestSecretName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		project  string
		secretID string
		want     string
	}{
		{"plain id", "netra-staging", "jwt-secret-staging", "projects/netra-staging/secrets/jwt-secret-staging"},
		{"already full name", "netra-staging", "projects/other/secrets/x", "projects/other/secrets/x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, gsm.SecretName(tt.project, tt.secretID))
		})
	}
}

func TestVersionName(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"projects/netra-staging/secrets/jwt-secret-staging/versions/latest",
		gsm.VersionName("netra-staging", "jwt-secret-staging", "latest"))

	// A reference that already carries a version is used as-is.
	assert.Equal(t,
		"projects/p/secrets/s/versions/3",
		gsm.VersionName("netra-staging", "projects/p/secrets/s/versions/3", "latest"))
}

package logging_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netra/deployops/internal/logging"
)

func TestSecretNeverPrints(t *testing.T) {
	t.Parallel()

	s := logging.Secret("super-secret-value")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
}

func TestRedact(t *testing.T) {
	t.Parallel()

	out := logging.Redact("token=abcd1234 other=ok", []string{"abcd1234"})
	assert.Equal(t, "token=[REDACTED] other=ok", out)

	// Trivial values are left alone so redaction cannot shred normal text.
	out = logging.Redact("a=1 b=ok", []string{"1", "ok", ""})
	assert.Equal(t, "a=1 b=ok", out)
}

func TestMask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  string
	}{
		{"", "(empty)"},
		{"short", "***"},
		{"12345678", "***"},
		{"abcdefghijkl", "abc***jkl"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, logging.Mask(tt.value), "value %q", tt.value)
	}
}

// Package osenv provides an isolated accessor over environment variables.
// Code that needs the environment takes an *Env snapshot instead of calling
// os.Getenv directly, so tests inject their own maps and never leak state
// into each other through the ambient process environment.
package osenv

import (
	"os"
	"strings"
)

// Env is an immutable snapshot of environment variables.
type Env struct {
	vars map[string]string
}

// Capture snapshots the current process environment.
func Capture() *Env {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			vars[parts[0]] = parts[1]
		}
	}
	return &Env{vars: vars}
}

// FromMap builds an Env from an explicit map. The map is copied.
func FromMap(m map[string]string) *Env {
	vars := make(map[string]string, len(m))
	for k, v := range m {
		vars[k] = v
	}
	return &Env{vars: vars}
}

// Get returns the value for key, or "" when unset.
func (e *Env) Get(key string) string {
	return e.vars[key]
}

// Lookup returns the value for key and whether it is set.
func (e *Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// GCPProject resolves the project ID from the usual environment variables.
func (e *Env) GCPProject() string {
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT"} {
		if v := e.Get(key); v != "" {
			return v
		}
	}
	return ""
}

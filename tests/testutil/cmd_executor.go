// Package testutil provides testing utilities for deployops.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockCommandExecutor provides a configurable mock for the CLI commands
// deployops drives (gcloud, docker). It satisfies pkg/exec.CommandExecutor.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Responses maps command patterns to their mock responses.
	// Key format: "command arg1 arg2" (space-separated command and args)
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching pattern is found.
	DefaultResponse *MockResponse

	// RecordedCalls stores all calls made to Execute for verification.
	RecordedCalls []RecordedCall

	// StrictMode causes Execute to fail if no matching response is found.
	StrictMode bool
}

// MockResponse defines the expected output for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
}

// NewMockCommandExecutor creates a new mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:     make(map[string]MockResponse),
		RecordedCalls: make([]RecordedCall, 0),
	}
}

// Execute returns the mocked response for the given command.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecordedCalls = append(m.RecordedCalls, RecordedCall{
		Command: name,
		Args:    args,
	})

	key := m.buildKey(name, args)

	if resp, ok := m.Responses[key]; ok {
		return resp.Stdout, resp.Stderr, resp.Err
	}

	// Prefix matching lets tests register just the interesting leading
	// arguments.
	for pattern, resp := range m.Responses {
		if strings.HasPrefix(key, pattern) {
			return resp.Stdout, resp.Stderr, resp.Err
		}
	}

	if m.DefaultResponse != nil {
		return m.DefaultResponse.Stdout, m.DefaultResponse.Stderr, m.DefaultResponse.Err
	}

	if m.StrictMode {
		return nil, nil, fmt.Errorf("mock: no response configured for command: %s", key)
	}

	return []byte{}, []byte{}, nil
}

func (m *MockCommandExecutor) buildKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// AddResponse registers a mock response for a specific command pattern.
func (m *MockCommandExecutor) AddResponse(commandPattern string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[commandPattern] = response
}

// AddStdoutResponse is a convenience method to add a successful response.
func (m *MockCommandExecutor) AddStdoutResponse(commandPattern, stdout string) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout: []byte(stdout),
		Stderr: []byte{},
	})
}

// AddErrorResponse adds an error response for a command pattern.
func (m *MockCommandExecutor) AddErrorResponse(commandPattern, stderr string, exitCode int) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout: []byte{},
		Stderr: []byte(stderr),
		Err:    fmt.Errorf("exit status %d", exitCode),
	})
}

// GetCalls returns all recorded calls matching the given command name.
func (m *MockCommandExecutor) GetCalls(commandName string) []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []RecordedCall
	for _, call := range m.RecordedCalls {
		if call.Command == commandName {
			matches = append(matches, call)
		}
	}
	return matches
}

// CallCount returns the number of times Execute was called.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordedCalls)
}

// GcloudMockResponses provides pre-configured responses for the gcloud
// CLI surfaces deployops exercises.
type GcloudMockResponses struct{}

// SecretValue returns a mock versions-access response carrying value.
// gcloud prints the raw payload with a trailing newline.
func (GcloudMockResponses) SecretValue(value string) MockResponse {
	return MockResponse{
		Stdout: []byte(value + "\n"),
	}
}

// SecretNotFound returns the stderr gcloud emits for a missing secret.
func (GcloudMockResponses) SecretNotFound(secretID string) MockResponse {
	return MockResponse{
		Stderr: []byte(fmt.Sprintf(
			"ERROR: (gcloud.secrets.describe) NOT_FOUND: Secret [projects/p/secrets/%s] not found or has no versions.", secretID)),
		Err: fmt.Errorf("exit status 1"),
	}
}

// PermissionDenied returns the stderr gcloud emits on a 403.
func (GcloudMockResponses) PermissionDenied() MockResponse {
	return MockResponse{
		Stderr: []byte("ERROR: (gcloud.secrets.versions.access) PERMISSION_DENIED: Permission denied on resource"),
		Err:    fmt.Errorf("exit status 1"),
	}
}

// IAMPolicyWithAccessor returns a get-iam-policy response granting
// secretAccessor to the given service accounts.
func (GcloudMockResponses) IAMPolicyWithAccessor(serviceAccounts ...string) MockResponse {
	members := make([]string, len(serviceAccounts))
	for i, sa := range serviceAccounts {
		members[i] = fmt.Sprintf("%q", "serviceAccount:"+sa)
	}
	return MockResponse{
		Stdout: []byte(fmt.Sprintf(`{
			"bindings": [
				{
					"role": "roles/secretmanager.secretAccessor",
					"members": [%s]
				}
			],
			"etag": "BwXhqDSmKeY=",
			"version": 1
		}`, strings.Join(members, ", "))),
	}
}

// IAMPolicyEmpty returns a get-iam-policy response with no bindings.
func (GcloudMockResponses) IAMPolicyEmpty() MockResponse {
	return MockResponse{
		Stdout: []byte(`{"etag": "BwXhqDSmKeY=", "version": 1}`),
	}
}

// EnabledServices returns a services-list response naming the given APIs.
func (GcloudMockResponses) EnabledServices(apis ...string) MockResponse {
	return MockResponse{
		Stdout: []byte(strings.Join(apis, "\n") + "\n"),
	}
}

package errors

import (
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CommandError represents a command execution error.
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// GcloudSuggestion returns a helpful suggestion for a failed gcloud call
// based on its stderr output.
func GcloudSuggestion(stderr string) string {
	switch {
	case strings.Contains(stderr, "PERMISSION_DENIED"), strings.Contains(stderr, "PermissionDenied"):
		return "Check IAM permissions: secretmanager.secrets.get, secretmanager.versions.access"
	case strings.Contains(stderr, "NOT_FOUND"), strings.Contains(stderr, "NotFound"):
		return "Verify the secret name and project ID. List secrets with: gcloud secrets list"
	case strings.Contains(stderr, "UNAUTHENTICATED"), strings.Contains(stderr, "Unauthenticated"):
		return "Run 'gcloud auth login' or set GOOGLE_APPLICATION_CREDENTIALS"
	case strings.Contains(stderr, "Reauthentication"):
		return "Your gcloud session expired. Run 'gcloud auth login' again"
	case strings.Contains(stderr, "API has not been used") || strings.Contains(stderr, "it is disabled"):
		return "Enable the API: gcloud services enable secretmanager.googleapis.com"
	case strings.Contains(stderr, "RESOURCE_EXHAUSTED"):
		return "Request was throttled. Wait a moment and try again"
	case strings.Contains(strings.ToLower(stderr), "timeout"):
		return "The operation timed out. Check your network connection and try again"
	default:
		return "Check gcloud authentication, project ID, and IAM permissions"
	}
}

// WrapCommandNotFound wraps a command-not-found error with install hints
// for the tools deployops drives.
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"gcloud": "Install the Google Cloud SDK from https://cloud.google.com/sdk/docs/install",
		"docker": "Install Docker from https://docker.com/",
		"podman": "Install Podman from https://podman.io/",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: suggestion,
	}
}

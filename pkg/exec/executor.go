// Package exec provides abstractions for command execution.
// Every gcloud and docker invocation in deployops goes through the
// CommandExecutor interface so tests can substitute canned output for
// real subprocess calls.
package exec

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandExecutor defines an interface for executing shell commands.
// The argv-in, stdout/stderr/err-out contract is the only boundary
// between deployops and the CLIs it drives.
type CommandExecutor interface {
	// Execute runs a command with the given context and arguments.
	// Returns stdout, stderr, and any error that occurred.
	Execute(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandExecutor executes actual shell commands using os/exec.
// This is the production implementation.
type RealCommandExecutor struct{}

// Execute runs an actual shell command.
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultExecutor returns the standard production executor.
// This is used as the default when no executor is injected.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}

// LookPath reports whether a binary is available on PATH.
func LookPath(name string) error {
	_, err := exec.LookPath(name)
	return err
}

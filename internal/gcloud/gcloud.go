// Package gcloud bridges the static secret configuration to live GCP via
// the gcloud CLI. Every invocation goes through an injected
// exec.CommandExecutor so tests never spawn a real subprocess, and every
// call is attempted exactly once per validation pass with a bounded
// timeout. A timed-out call is indistinguishable from a non-zero exit.
package gcloud

import (
	"context"
	"strings"
	"time"

	dserrors "github.com/netra/deployops/internal/errors"
	"github.com/netra/deployops/internal/logging"
	pkgexec "github.com/netra/deployops/pkg/exec"
)

// DefaultTimeout bounds a single gcloud invocation.
const DefaultTimeout = 30 * time.Second

// Client drives the gcloud CLI for one project.
type Client struct {
	project  string
	executor pkgexec.CommandExecutor
	logger   *logging.Logger
	timeout  time.Duration
}

// NewClient creates a client using the real subprocess executor.
func NewClient(project string, logger *logging.Logger) *Client {
	return NewClientWithExecutor(project, logger, pkgexec.DefaultExecutor())
}

// NewClientWithExecutor creates a client with a custom executor.
// This is primarily for testing, allowing gcloud output to be mocked.
func NewClientWithExecutor(project string, logger *logging.Logger, executor pkgexec.CommandExecutor) *Client {
	if logger == nil {
		logger = logging.New(false, false)
	}
	return &Client{
		project:  project,
		executor: executor,
		logger:   logger,
		timeout:  DefaultTimeout,
	}
}

// Project returns the project ID this client targets.
func (c *Client) Project() string {
	return c.project
}

// SetTimeout overrides the per-invocation timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Installed checks that the gcloud binary is on PATH.
func Installed() error {
	if err := pkgexec.LookPath("gcloud"); err != nil {
		return dserrors.WrapCommandNotFound("gcloud", err)
	}
	return nil
}

// run executes one gcloud invocation under the client timeout.
func (c *Client) run(ctx context.Context, args ...string) (stdout, stderr []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Running: gcloud %s", strings.Join(args, " "))
	return c.executor.Execute(ctx, "gcloud", args...)
}

// Ping checks that Google Secret Manager is reachable for the project.
// Zero exit from a minimal listing means reachable; any failure means not
// reachable. No distinction is made between auth failure, network failure,
// or an empty project.
func (c *Client) Ping(ctx context.Context) error {
	_, stderr, err := c.run(ctx,
		"secrets", "list",
		"--project", c.project,
		"--limit", "1",
		"--format", "value(name)",
	)
	if err != nil {
		return dserrors.UserError{
			Message:    "Google Secret Manager is not reachable for project " + c.project,
			Details:    strings.TrimSpace(string(stderr)),
			Suggestion: dserrors.GcloudSuggestion(string(stderr)),
			Err:        err,
		}
	}
	return nil
}

// SecretExists reports whether a GSM secret exists in the project.
func (c *Client) SecretExists(ctx context.Context, secretID string) (bool, error) {
	_, stderr, err := c.run(ctx,
		"secrets", "describe", secretID,
		"--project", c.project,
		"--format", "json",
	)
	if err != nil {
		stderrStr := string(stderr)
		if strings.Contains(stderrStr, "NOT_FOUND") || strings.Contains(stderrStr, "was not found") {
			return false, nil
		}
		return false, dserrors.UserError{
			Message:    "Failed to describe secret " + secretID,
			Details:    strings.TrimSpace(stderrStr),
			Suggestion: dserrors.GcloudSuggestion(stderrStr),
			Err:        err,
		}
	}
	return true, nil
}

// AccessVersion retrieves the latest version of a secret, trimmed of
// trailing whitespace. Empty output is treated the same as a non-zero
// exit: the secret has no usable value.
func (c *Client) AccessVersion(ctx context.Context, secretID string) (string, error) {
	stdout, stderr, err := c.run(ctx,
		"secrets", "versions", "access", "latest",
		"--secret", secretID,
		"--project", c.project,
	)
	if err != nil {
		stderrStr := string(stderr)
		return "", dserrors.UserError{
			Message:    "Failed to access secret " + secretID,
			Details:    strings.TrimSpace(stderrStr),
			Suggestion: dserrors.GcloudSuggestion(stderrStr),
			Err:        err,
		}
	}

	value := strings.TrimRight(string(stdout), "\r\n \t")
	if value == "" {
		return "", dserrors.UserError{
			Message:    "Secret " + secretID + " has no data",
			Suggestion: "Add a version: gcloud secrets versions add " + secretID + " --data-file=-",
		}
	}

	c.logger.Debug("Retrieved secret %s: %s", secretID, logging.Secret(value))
	return value, nil
}

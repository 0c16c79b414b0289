package gcloud

import (
	"context"
	"strconv"
	"strings"

	dserrors "github.com/netra/deployops/internal/errors"
)

// RunDeployArgs describes one gcloud run deploy invocation.
type RunDeployArgs struct {
	Service              string
	Image                string
	Region               string
	ServiceAccount       string
	SecretsFragment      string // comma-joined NAME=gsm-id:latest tokens; empty means no --set-secrets flag
	Port                 int
	Memory               string
	NoTraffic            bool
	AllowUnauthenticated bool
}

// Argv builds the argv for gcloud run deploy. Kept separate from
// execution so tests can assert on the exact command line.
func (c *Client) RunDeployArgv(a RunDeployArgs) []string {
	argv := []string{
		"run", "deploy", a.Service,
		"--image", a.Image,
		"--project", c.project,
		"--region", a.Region,
		"--platform", "managed",
	}
	if a.ServiceAccount != "" {
		argv = append(argv, "--service-account", a.ServiceAccount)
	}
	if a.SecretsFragment != "" {
		argv = append(argv, "--set-secrets", a.SecretsFragment)
	}
	if a.Port > 0 {
		argv = append(argv, "--port", strconv.Itoa(a.Port))
	}
	if a.Memory != "" {
		argv = append(argv, "--memory", a.Memory)
	}
	if a.NoTraffic {
		argv = append(argv, "--no-traffic")
	}
	if a.AllowUnauthenticated {
		argv = append(argv, "--allow-unauthenticated")
	} else {
		argv = append(argv, "--no-allow-unauthenticated")
	}
	return append(argv, "--quiet")
}

// RunDeploy deploys one service revision to Cloud Run.
func (c *Client) RunDeploy(ctx context.Context, a RunDeployArgs) error {
	_, stderr, err := c.run(ctx, c.RunDeployArgv(a)...)
	if err != nil {
		stderrStr := string(stderr)
		return dserrors.UserError{
			Message:    "Cloud Run deployment of " + a.Service + " failed",
			Details:    strings.TrimSpace(stderrStr),
			Suggestion: dserrors.GcloudSuggestion(stderrStr),
			Err:        err,
		}
	}
	return nil
}

// SubmitBuild runs a Cloud Build for sourceDir, tagging the result.
func (c *Client) SubmitBuild(ctx context.Context, tag, sourceDir string) error {
	_, stderr, err := c.run(ctx,
		"builds", "submit", sourceDir,
		"--project", c.project,
		"--tag", tag,
		"--quiet",
	)
	if err != nil {
		stderrStr := string(stderr)
		return dserrors.UserError{
			Message:    "Cloud Build failed for " + tag,
			Details:    strings.TrimSpace(stderrStr),
			Suggestion: dserrors.GcloudSuggestion(stderrStr),
			Err:        err,
		}
	}
	return nil
}

// ListRevisions returns a service's revision names, newest first.
func (c *Client) ListRevisions(ctx context.Context, service, region string) ([]string, error) {
	stdout, stderr, err := c.run(ctx,
		"run", "revisions", "list",
		"--service", service,
		"--project", c.project,
		"--region", region,
		"--sort-by", "~metadata.creationTimestamp",
		"--format", "value(metadata.name)",
	)
	if err != nil {
		stderrStr := string(stderr)
		return nil, dserrors.UserError{
			Message:    "Failed to list revisions for " + service,
			Details:    strings.TrimSpace(stderrStr),
			Suggestion: dserrors.GcloudSuggestion(stderrStr),
			Err:        err,
		}
	}

	var revisions []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			revisions = append(revisions, line)
		}
	}
	return revisions, nil
}

// DeleteRevision removes one Cloud Run revision.
func (c *Client) DeleteRevision(ctx context.Context, revision, region string) error {
	_, stderr, err := c.run(ctx,
		"run", "revisions", "delete", revision,
		"--project", c.project,
		"--region", region,
		"--quiet",
	)
	if err != nil {
		stderrStr := string(stderr)
		return dserrors.UserError{
			Message:    "Failed to delete revision " + revision,
			Details:    strings.TrimSpace(stderrStr),
			Suggestion: dserrors.GcloudSuggestion(stderrStr),
			Err:        err,
		}
	}
	return nil
}

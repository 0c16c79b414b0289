package gcloud

import (
	"context"
	"strings"

	dserrors "github.com/netra/deployops/internal/errors"
)

// RequiredAPIs are the GCP services a Cloud Run deployment of the netra
// stack depends on.
var RequiredAPIs = []string{
	"run.googleapis.com",
	"secretmanager.googleapis.com",
	"cloudbuild.googleapis.com",
	"artifactregistry.googleapis.com",
}

// EnabledServices lists the APIs enabled on the project.
func (c *Client) EnabledServices(ctx context.Context) ([]string, error) {
	stdout, stderr, err := c.run(ctx,
		"services", "list",
		"--enabled",
		"--project", c.project,
		"--format", "value(config.name)",
	)
	if err != nil {
		stderrStr := string(stderr)
		return nil, dserrors.UserError{
			Message:    "Failed to list enabled APIs for project " + c.project,
			Details:    strings.TrimSpace(stderrStr),
			Suggestion: dserrors.GcloudSuggestion(stderrStr),
			Err:        err,
		}
	}

	var services []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			services = append(services, line)
		}
	}
	return services, nil
}

// MissingAPIs returns the required APIs not enabled on the project.
func (c *Client) MissingAPIs(ctx context.Context) ([]string, error) {
	enabled, err := c.EnabledServices(ctx)
	if err != nil {
		return nil, err
	}

	enabledSet := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		enabledSet[name] = true
	}

	var missing []string
	for _, name := range RequiredAPIs {
		if !enabledSet[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

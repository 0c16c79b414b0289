// Package gsm is the native Google Secret Manager transport. It
// implements the same operations as the gcloud CLI bridge, for
// environments where the client library is preferred (CI runners without
// the SDK image, or callers that want structured errors instead of
// stderr scraping).
package gsm

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	dserrors "github.com/netra/deployops/internal/errors"
	"github.com/netra/deployops/internal/logging"
	"github.com/netra/deployops/internal/osenv"
)

// Options configures the Secret Manager client.
type Options struct {
	Project         string
	CredentialsFile string // optional service account key path
}

// Client accesses Google Secret Manager through the official API client.
type Client struct {
	sm      *secretmanager.Client
	project string
	logger  *logging.Logger
}

// NewClient creates a Secret Manager client. When Options.Project is
// empty the project is resolved from the environment snapshot.
func NewClient(ctx context.Context, opts Options, env *osenv.Env, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.New(false, false)
	}

	project := opts.Project
	if project == "" && env != nil {
		project = env.GCPProject()
	}
	if project == "" {
		return nil, dserrors.ConfigError{
			Field:      "project",
			Message:    "a GCP project ID is required",
			Suggestion: "Pass --project or set GOOGLE_CLOUD_PROJECT",
		}
	}

	var clientOptions []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(opts.CredentialsFile))
	}

	sm, err := secretmanager.NewClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &Client{sm: sm, project: project, logger: logger}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.sm.Close()
}

// Project returns the project ID this client targets.
func (c *Client) Project() string {
	return c.project
}

// Ping checks reachability by listing at most one secret, the minimal
// permission surface.
func (c *Client) Ping(ctx context.Context) error {
	req := &secretmanagerpb.ListSecretsRequest{
		Parent:   "projects/" + c.project,
		PageSize: 1,
	}

	iter := c.sm.ListSecrets(ctx, req)
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return dserrors.UserError{
			Message:    "Google Secret Manager is not reachable for project " + c.project,
			Details:    err.Error(),
			Suggestion: suggestionFor(err),
			Err:        err,
		}
	}
	return nil
}

// SecretExists reports whether a secret exists in the project.
func (c *Client) SecretExists(ctx context.Context, secretID string) (bool, error) {
	req := &secretmanagerpb.GetSecretRequest{
		Name: SecretName(c.project, secretID),
	}

	if _, err := c.sm.GetSecret(ctx, req); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, dserrors.UserError{
			Message:    "Failed to describe secret " + secretID,
			Details:    err.Error(),
			Suggestion: suggestionFor(err),
			Err:        err,
		}
	}
	return true, nil
}

// AccessVersion retrieves the latest version of a secret, trimmed of
// trailing whitespace.
func (c *Client) AccessVersion(ctx context.Context, secretID string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: VersionName(c.project, secretID, "latest"),
	}

	result, err := c.sm.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", dserrors.UserError{
			Message:    "Failed to access secret " + secretID,
			Details:    err.Error(),
			Suggestion: suggestionFor(err),
			Err:        err,
		}
	}

	if result.Payload == nil || len(result.Payload.Data) == 0 {
		return "", dserrors.UserError{
			Message:    "Secret " + secretID + " has no data",
			Suggestion: "Add a version: gcloud secrets versions add " + secretID + " --data-file=-",
		}
	}

	value := strings.TrimRight(string(result.Payload.Data), "\r\n \t")
	c.logger.Debug("Retrieved secret %s: %s", secretID, logging.Secret(value))
	return value, nil
}

// SecretName builds the full resource name of a secret.
func SecretName(project, secretID string) string {
	if strings.HasPrefix(secretID, "projects/") {
		return secretID
	}
	return fmt.Sprintf("projects/%s/secrets/%s", project, secretID)
}

// VersionName builds the full resource name of a secret version.
func VersionName(project, secretID, version string) string {
	name := SecretName(project, secretID)
	if strings.Contains(name, "/versions/") {
		return name
	}
	return name + "/versions/" + version
}

// suggestionFor maps API errors to remediation hints.
func suggestionFor(err error) string {
	switch status.Code(err) {
	case codes.PermissionDenied:
		return "Check IAM permissions: secretmanager.secrets.get, secretmanager.versions.access"
	case codes.NotFound:
		return "Verify the secret name and project ID. Check that the secret exists"
	case codes.Unauthenticated:
		return "Set GOOGLE_APPLICATION_CREDENTIALS or run 'gcloud auth application-default login'"
	case codes.InvalidArgument:
		return "Check the secret name format and version specification"
	case codes.ResourceExhausted:
		return "Request was throttled. Wait a moment and try again"
	case codes.DeadlineExceeded:
		return "The operation timed out. Check your network connection and try again"
	default:
		return "Check GCP credentials, project ID, and IAM permissions for Secret Manager"
	}
}

package gcloud_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/netra/deployops/internal/errors"
	"github.com/netra/deployops/internal/gcloud"
	"github.com/netra/deployops/internal/logging"
	"github.com/netra/deployops/tests/testutil"
)

func newTestClient(t *testing.T) (*gcloud.Client, *testutil.MockCommandExecutor) {
	t.Helper()
	mock := testutil.NewMockCommandExecutor()
	mock.StrictMode = true
	client := gcloud.NewClientWithExecutor("netra-staging", logging.New(false, true), mock)
	return client, mock
}

func TestPingReachable(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	mock.AddStdoutResponse("gcloud secrets list", "jwt-secret-staging\n")

	require.NoError(t, client.Ping(context.Background()))

	calls := mock.GetCalls("gcloud")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Args, "--limit")
	assert.Contains(t, calls[0].Args, "netra-staging")
}

func TestPingUnreachable(t *testing.T) {
	t.Parallel()

	// Auth failure, network failure, and empty project all collapse into
	// "not reachable".
	client, mock := newTestClient(t)
	mock.AddErrorResponse("gcloud secrets list", "ERROR: UNAUTHENTICATED: no credentials", 1)

	err := client.Ping(context.Background())
	require.Error(t, err)

	var userErr dserrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "not reachable")
	assert.Contains(t, userErr.Suggestion, "gcloud auth login")
}

func TestSecretExists(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	mock.AddStdoutResponse("gcloud secrets describe jwt-secret-staging", `{"name": "projects/netra-staging/secrets/jwt-secret-staging"}`)

	exists, err := client.SecretExists(context.Background(), "jwt-secret-staging")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSecretExistsNotFound(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	gcloudMock := testutil.GcloudMockResponses{}
	mock.AddResponse("gcloud secrets describe missing-secret", gcloudMock.SecretNotFound("missing-secret"))

	exists, err := client.SecretExists(context.Background(), "missing-secret")
	require.NoError(t, err, "NOT_FOUND is an answer, not an error")
	assert.False(t, exists)
}

func TestSecretExistsOtherFailure(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	mock.AddErrorResponse("gcloud secrets describe broken-secret", "ERROR: PERMISSION_DENIED", 1)

	_, err := client.SecretExists(context.Background(), "broken-secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secretmanager.secrets.get")
}

func TestAccessVersionTrimsTrailingWhitespace(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	gcloudMock := testutil.GcloudMockResponses{}
	mock.AddResponse("gcloud secrets versions access latest --secret jwt-secret-staging",
		gcloudMock.SecretValue("super-secret-jwt-signing-key-value"))

	value, err := client.AccessVersion(context.Background(), "jwt-secret-staging")
	require.NoError(t, err)
	assert.Equal(t, "super-secret-jwt-signing-key-value", value)
}

func TestAccessVersionEmptyIsFailure(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	mock.AddStdoutResponse("gcloud secrets versions access latest --secret empty-secret", "\n")

	_, err := client.AccessVersion(context.Background(), "empty-secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")
}

func TestAccessVersionPermissionDenied(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	gcloudMock := testutil.GcloudMockResponses{}
	mock.AddResponse("gcloud secrets versions access latest --secret locked-secret", gcloudMock.PermissionDenied())

	_, err := client.AccessVersion(context.Background(), "locked-secret")
	require.Error(t, err)

	var userErr dserrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Suggestion, "secretmanager.versions.access")
}

func TestCheckIAMAccessGranted(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	gcloudMock := testutil.GcloudMockResponses{}
	mock.AddResponse("gcloud secrets get-iam-policy jwt-secret-staging",
		gcloudMock.IAMPolicyWithAccessor("deployer@netra-staging.iam.gserviceaccount.com"))

	access, err := client.CheckIAMAccess(context.Background(), "jwt-secret-staging", "deployer@netra-staging.iam.gserviceaccount.com")
	require.NoError(t, err)
	assert.True(t, access.HasAccess)
	assert.Empty(t, access.Remediation)
}

func TestCheckIAMAccessMissingBinding(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	gcloudMock := testutil.GcloudMockResponses{}
	mock.AddResponse("gcloud secrets get-iam-policy jwt-secret-staging", gcloudMock.IAMPolicyEmpty())

	access, err := client.CheckIAMAccess(context.Background(), "jwt-secret-staging", "deployer@netra-staging.iam.gserviceaccount.com")
	require.NoError(t, err, "a missing binding is an answer, not a fetch failure")
	assert.False(t, access.HasAccess)
	assert.Contains(t, access.Remediation, "gcloud secrets add-iam-policy-binding jwt-secret-staging")
	assert.Contains(t, access.Remediation, "roles/secretmanager.secretAccessor")
	assert.Contains(t, access.Remediation, "deployer@netra-staging.iam.gserviceaccount.com")
}

func TestCheckIAMAccessFetchFailed(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	mock.AddErrorResponse("gcloud secrets get-iam-policy jwt-secret-staging", "ERROR: NOT_FOUND", 1)

	_, err := client.CheckIAMAccess(context.Background(), "jwt-secret-staging", "deployer@netra-staging.iam.gserviceaccount.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IAM policy")
}

func TestMissingAPIs(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	gcloudMock := testutil.GcloudMockResponses{}
	mock.AddResponse("gcloud services list",
		gcloudMock.EnabledServices("run.googleapis.com", "secretmanager.googleapis.com"))

	missing, err := client.MissingAPIs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cloudbuild.googleapis.com", "artifactregistry.googleapis.com"}, missing)
}

func TestRunDeployArgv(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	argv := client.RunDeployArgv(gcloud.RunDeployArgs{
		Service:         "netra-backend",
		Image:           "europe-west1-docker.pkg.dev/netra-staging/netra/backend:latest",
		Region:          "europe-west1",
		ServiceAccount:  "deployer@netra-staging.iam.gserviceaccount.com",
		SecretsFragment: "JWT_SECRET=jwt-secret-staging:latest",
		Port:            8080,
		Memory:          "512Mi",
		NoTraffic:       true,
	})

	joined := " " + strings.Join(argv, " ") + " "
	assert.Contains(t, joined, " run deploy netra-backend ")
	assert.Contains(t, joined, " --set-secrets JWT_SECRET=jwt-secret-staging:latest ")
	assert.Contains(t, joined, " --no-traffic ")
	assert.Contains(t, joined, " --project netra-staging ")
	assert.Contains(t, joined, " --no-allow-unauthenticated ")
}

func TestRunDeployArgvOmitsEmptySecrets(t *testing.T) {
	t.Parallel()

	// frontend has no GSM-backed secrets; its deploy carries no
	// --set-secrets flag at all.
	client, _ := newTestClient(t)
	argv := client.RunDeployArgv(gcloud.RunDeployArgs{
		Service: "netra-frontend",
		Image:   "img",
		Region:  "europe-west1",
	})
	assert.NotContains(t, argv, "--set-secrets")
}

func TestListRevisions(t *testing.T) {
	t.Parallel()

	client, mock := newTestClient(t)
	mock.AddStdoutResponse("gcloud run revisions list", "netra-backend-00042\nnetra-backend-00041\n")

	revisions, err := client.ListRevisions(context.Background(), "netra-backend", "europe-west1")
	require.NoError(t, err)
	assert.Equal(t, []string{"netra-backend-00042", "netra-backend-00041"}, revisions)
}

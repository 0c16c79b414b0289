package gcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	dserrors "github.com/netra/deployops/internal/errors"
)

// iamPolicy is the subset of a GSM IAM policy we inspect.
type iamPolicy struct {
	Bindings []iamBinding `json:"bindings"`
}

type iamBinding struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

// IAMAccess is the structured result of an access check. It
// distinguishes "no access" (remediation known) from "policy fetch
// failed" (the error return).
type IAMAccess struct {
	HasAccess   bool
	Remediation string // add-iam-policy-binding command when HasAccess is false
}

// CheckIAMAccess verifies that serviceAccount holds a secretAccessor
// binding on the secret. A missing binding is not an error: the result
// carries the exact remediation command. A failed policy fetch is
// returned as an error.
func (c *Client) CheckIAMAccess(ctx context.Context, secretID, serviceAccount string) (IAMAccess, error) {
	stdout, stderr, err := c.run(ctx,
		"secrets", "get-iam-policy", secretID,
		"--project", c.project,
		"--format", "json",
	)
	if err != nil {
		stderrStr := string(stderr)
		return IAMAccess{}, dserrors.UserError{
			Message:    "Failed to fetch IAM policy for secret " + secretID,
			Details:    strings.TrimSpace(stderrStr),
			Suggestion: dserrors.GcloudSuggestion(stderrStr),
			Err:        err,
		}
	}

	var policy iamPolicy
	if err := json.Unmarshal(stdout, &policy); err != nil {
		return IAMAccess{}, dserrors.UserError{
			Message:    "Failed to parse IAM policy for secret " + secretID,
			Details:    err.Error(),
			Suggestion: "Check the gcloud version; --format json output changed shape",
			Err:        err,
		}
	}

	member := "serviceAccount:" + serviceAccount
	for _, binding := range policy.Bindings {
		if !strings.Contains(binding.Role, "secretAccessor") {
			continue
		}
		for _, m := range binding.Members {
			if m == member {
				return IAMAccess{HasAccess: true}, nil
			}
		}
	}

	return IAMAccess{
		HasAccess:   false,
		Remediation: c.accessorBindingCommand(secretID, serviceAccount),
	}, nil
}

// accessorBindingCommand builds the remediation command for a missing
// secretAccessor binding.
func (c *Client) accessorBindingCommand(secretID, serviceAccount string) string {
	return fmt.Sprintf(
		"gcloud secrets add-iam-policy-binding %s --project=%s --member=serviceAccount:%s --role=roles/secretmanager.secretAccessor",
		secretID, c.project, serviceAccount,
	)
}

// Package validate runs the pre-deployment secrets readiness checks:
// per-secret existence, IAM access, and value quality against live
// Secret Manager, plus the cross-service JWT consistency check.
//
// The checks are deliberately sequential; each gcloud/API call is
// attempted exactly once per secret per pass.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/netra/deployops/internal/gcloud"
	"github.com/netra/deployops/internal/logging"
	"github.com/netra/deployops/internal/registry"
	"github.com/netra/deployops/internal/secure"
)

// devProject is the one project where quality failures on non-critical
// secrets do not block deployment.
const devProject = "netra-dev"

// SecretSource retrieves secrets from GSM. Both the gcloud CLI bridge
// and the native client implement it.
type SecretSource interface {
	Ping(ctx context.Context) error
	SecretExists(ctx context.Context, secretID string) (bool, error)
	AccessVersion(ctx context.Context, secretID string) (string, error)
}

// IAMChecker verifies accessor bindings. Only the gcloud bridge
// implements it; a nil checker skips the IAM phase.
type IAMChecker interface {
	CheckIAMAccess(ctx context.Context, secretID, serviceAccount string) (gcloud.IAMAccess, error)
}

// Checker runs readiness checks for one project.
type Checker struct {
	Registry       *registry.Registry
	Source         SecretSource
	IAM            IAMChecker
	Logger         *logging.Logger
	Project        string
	ServiceAccount string // deploying service account, for IAM checks
}

func (c *Checker) logger() *logging.Logger {
	if c.Logger == nil {
		c.Logger = logging.New(false, false)
	}
	return c.Logger
}

// CheckDeploymentReadiness validates every requested service plus the
// JWT family and aggregates the outcomes. The returned error covers
// operational failures (unknown environment, GSM unreachable); policy
// failures land in the report.
func (c *Checker) CheckDeploymentReadiness(ctx context.Context, services []string, environment string) (*Report, error) {
	if !c.Registry.HasEnvironment(environment) {
		return nil, registry.UnknownEnvironmentError{
			Environment: environment,
			Known:       c.Registry.Environments(),
		}
	}

	if err := c.Source.Ping(ctx); err != nil {
		return nil, err
	}
	c.logger().Info("Secret Manager reachable for project %s", c.Project)

	report := &Report{}
	for _, service := range services {
		serviceReport := c.CheckService(ctx, service, environment)
		report.Merge(serviceReport)
	}

	report.Add(c.CheckJWTConsistency(ctx, environment))
	return report, nil
}

// CheckService validates every secret a service declares. Secrets shared
// between categories are checked once.
func (c *Checker) CheckService(ctx context.Context, service, environment string) *Report {
	report := &Report{}

	critical := make(map[string]bool)
	for _, name := range c.Registry.CriticalSecrets(service) {
		critical[name] = true
	}

	seen := make(map[string]bool)
	for _, name := range c.Registry.AllServiceSecrets(service) {
		if seen[name] {
			continue
		}
		seen[name] = true
		report.Add(c.checkSecret(ctx, service, environment, name, critical[name]))
	}

	if report.Ok() {
		c.logger().Info("Service %s secrets are ready", service)
	} else {
		c.logger().Error("Service %s has blocking secret failures", service)
	}
	return report
}

// checkSecret walks one secret through the state machine:
// UNCHECKED -> MISSING | NO_ACCESS | PLACEHOLDER | VALID.
func (c *Checker) checkSecret(ctx context.Context, service, environment, name string, critical bool) Outcome {
	gsmID, ok := c.Registry.Mapping(environment, name)
	if !ok {
		// Configuration gap: fail-open, the fragment generator will skip
		// this secret too.
		return Outcome{
			Secret:   name,
			State:    StateUnchecked,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%s has no GSM mapping for %s; it will be omitted from the deployment", name, environment),
		}
	}

	exists, err := c.Source.SecretExists(ctx, gsmID)
	if err != nil || !exists {
		msg := fmt.Sprintf("%s (%s) is missing in GSM", name, gsmID)
		if err != nil {
			msg = fmt.Sprintf("%s (%s) could not be checked: %v", name, gsmID, err)
		}
		return Outcome{
			Secret:   name,
			GSMID:    gsmID,
			State:    StateMissing,
			Severity: severityFor(critical),
			Message:  msg,
		}
	}

	if c.IAM != nil && c.ServiceAccount != "" {
		access, err := c.IAM.CheckIAMAccess(ctx, gsmID, c.ServiceAccount)
		if err != nil {
			return Outcome{
				Secret:   name,
				GSMID:    gsmID,
				State:    StateNoAccess,
				Severity: severityFor(critical),
				Message:  fmt.Sprintf("%s (%s): IAM policy fetch failed: %v", name, gsmID, err),
			}
		}
		if !access.HasAccess {
			// Inaccessible secrets always block: the service would crash
			// at startup anyway. The remediation command goes straight
			// into the report.
			return Outcome{
				Secret:   name,
				GSMID:    gsmID,
				State:    StateNoAccess,
				Severity: SeverityFatal,
				Message: fmt.Sprintf("%s (%s): %s has no secretAccessor binding. Fix with: %s",
					name, gsmID, c.ServiceAccount, access.Remediation),
			}
		}
	}

	value, err := c.Source.AccessVersion(ctx, gsmID)
	if err != nil {
		return Outcome{
			Secret:   name,
			GSMID:    gsmID,
			State:    StateNoAccess,
			Severity: severityFor(critical),
			Message:  fmt.Sprintf("%s (%s): value retrieval failed: %v", name, gsmID, err),
		}
	}

	if reason := registry.CheckQuality(name, value); reason != "" {
		severity := SeverityFatal
		if !critical && c.Project == devProject {
			severity = SeverityWarning
		}
		return Outcome{
			Secret:   name,
			GSMID:    gsmID,
			State:    StatePlaceholder,
			Severity: severity,
			Message:  fmt.Sprintf("%s (%s) failed quality check: %s", name, gsmID, reason),
		}
	}

	return Outcome{
		Secret:   name,
		GSMID:    gsmID,
		State:    StateValid,
		Severity: SeverityOk,
		Message:  fmt.Sprintf("%s (%s) is valid", name, gsmID),
	}
}

func severityFor(critical bool) Severity {
	if critical {
		return SeverityFatal
	}
	return SeverityWarning
}

// CheckJWTConsistency retrieves every GSM secret the JWT family maps to
// and requires the values to be byte-identical. Divergent JWT secrets
// silently break WebSocket/API authentication between backend and auth,
// so any mismatch is fatal regardless of criticality.
func (c *Checker) CheckJWTConsistency(ctx context.Context, environment string) Outcome {
	family := c.Registry.JWTFamily()

	ids := make([]string, 0, len(family))
	seen := make(map[string]bool)
	for _, name := range family {
		gsmID, ok := c.Registry.Mapping(environment, name)
		if !ok {
			c.logger().Warn("JWT secret %s has no GSM mapping for %s", name, environment)
			continue
		}
		if !seen[gsmID] {
			seen[gsmID] = true
			ids = append(ids, gsmID)
		}
	}

	if len(ids) == 0 {
		return Outcome{
			Secret:   "JWT",
			State:    StateUnchecked,
			Severity: SeverityWarning,
			Message:  "no JWT secrets are mapped for " + environment,
		}
	}

	buffers := make(map[string]*secure.Buffer, len(ids))
	defer func() {
		for _, buf := range buffers {
			buf.Destroy()
		}
	}()

	for _, gsmID := range ids {
		value, err := c.Source.AccessVersion(ctx, gsmID)
		if err != nil {
			return Outcome{
				Secret:   "JWT",
				GSMID:    gsmID,
				State:    StateNoAccess,
				Severity: SeverityFatal,
				Message:  fmt.Sprintf("JWT consistency check could not read %s: %v", gsmID, err),
			}
		}
		buffers[gsmID] = secure.NewBufferFromString(value)
	}

	reference := ids[0]
	for _, gsmID := range ids[1:] {
		same, err := buffers[reference].Equal(buffers[gsmID])
		if err != nil {
			return Outcome{
				Secret:   "JWT",
				GSMID:    gsmID,
				State:    StateNoAccess,
				Severity: SeverityFatal,
				Message:  fmt.Sprintf("JWT consistency comparison failed for %s: %v", gsmID, err),
			}
		}
		if !same {
			return Outcome{
				Secret:   "JWT",
				GSMID:    gsmID,
				State:    StatePlaceholder,
				Severity: SeverityFatal,
				Message: fmt.Sprintf("JWT secret values diverge between %s and %s; backend and auth must share one signing key",
					reference, gsmID),
			}
		}
	}

	return Outcome{
		Secret:   "JWT",
		State:    StateValid,
		Severity: SeverityOk,
		Message:  "JWT secret family is consistent across " + strings.Join(ids, ", "),
	}
}

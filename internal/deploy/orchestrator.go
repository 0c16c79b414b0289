// Package deploy sequences a Cloud Run rollout: enabled-API checks,
// secrets readiness, image build, gcloud run deploy with the generated
// secrets fragment, and optional revision cleanup. Execution is strictly
// sequential; one failing phase stops the run.
package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/netra/deployops/internal/config"
	dserrors "github.com/netra/deployops/internal/errors"
	"github.com/netra/deployops/internal/gcloud"
	"github.com/netra/deployops/internal/logging"
	"github.com/netra/deployops/internal/registry"
	"github.com/netra/deployops/internal/validate"
	pkgexec "github.com/netra/deployops/pkg/exec"
)

// defaultKeepRevisions is how many newest revisions cleanup preserves.
const defaultKeepRevisions = 3

// Options selects which phases run and how images are built.
type Options struct {
	Services       []string // empty means every configured service
	BuildLocal     bool     // build with docker/podman instead of Cloud Build
	CheckAPIs      bool
	CheckSecrets   bool
	SkipValidation bool // skip the readiness phase entirely
	NoTraffic      bool
	NoAlpine       bool // prefer the non-alpine Dockerfile for local builds
	Cleanup        bool
	KeepRevisions  int
}

// Orchestrator wires the registry, config, and gcloud client into one
// deployment pipeline.
type Orchestrator struct {
	Config   *config.Config
	Registry *registry.Registry
	Cloud    *gcloud.Client
	Checker  *validate.Checker
	Executor pkgexec.CommandExecutor // container CLI for local builds
	Runtime  string                  // container runtime binary; autodetected when empty
	Logger   *logging.Logger
}

func (o *Orchestrator) logger() *logging.Logger {
	if o.Logger == nil {
		o.Logger = logging.New(false, false)
	}
	return o.Logger
}

// Run executes the full deployment sequence for the selected services.
func (o *Orchestrator) Run(ctx context.Context, opts Options) error {
	services := opts.Services
	if len(services) == 0 {
		services = o.Config.ServiceNames()
	}
	if len(services) == 0 {
		return dserrors.ConfigError{
			Field:      "services",
			Message:    "no services configured",
			Suggestion: "Add at least one service to deployops.yaml",
		}
	}

	environment := o.Config.Definition.Environment

	if opts.CheckAPIs {
		if err := o.checkAPIs(ctx); err != nil {
			return err
		}
	}

	if !opts.SkipValidation {
		if err := o.checkSecrets(ctx, services, environment); err != nil {
			return err
		}
	} else {
		o.logger().Warn("Skipping secrets validation (--skip-validation)")
	}
	if opts.CheckSecrets {
		// Check-only invocation: validation already ran above.
		o.logger().Info("Secrets check complete; not deploying")
		return nil
	}

	for _, service := range services {
		spec, err := o.Config.Service(service)
		if err != nil {
			return err
		}

		image := o.Config.ImageTag(service)
		if err := o.buildImage(ctx, service, spec, image, opts); err != nil {
			return err
		}
		if err := o.deployService(ctx, service, spec, image, environment, opts); err != nil {
			return err
		}

		if opts.Cleanup {
			if err := o.cleanupRevisions(ctx, service, opts.KeepRevisions); err != nil {
				// Cleanup failure never rolls back a successful deploy.
				o.logger().Warn("Revision cleanup for %s failed: %v", service, err)
			}
		}
	}

	o.logger().Info("Deployment complete: %s", strings.Join(services, ", "))
	return nil
}

// checkAPIs verifies the required GCP APIs are enabled.
func (o *Orchestrator) checkAPIs(ctx context.Context) error {
	missing, err := o.Cloud.MissingAPIs(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return dserrors.UserError{
			Message:    "Required GCP APIs are not enabled: " + strings.Join(missing, ", "),
			Suggestion: "Enable them with: gcloud services enable " + strings.Join(missing, " ") + " --project " + o.Cloud.Project(),
		}
	}
	o.logger().Info("All required GCP APIs are enabled")
	return nil
}

// checkSecrets runs the readiness phase and prints every outcome message.
func (o *Orchestrator) checkSecrets(ctx context.Context, services []string, environment string) error {
	report, err := o.Checker.CheckDeploymentReadiness(ctx, services, environment)
	if err != nil {
		return err
	}

	for _, msg := range report.Messages() {
		fmt.Println(msg)
	}
	if !report.Ok() {
		return dserrors.UserError{
			Message:    "Secrets validation failed",
			Suggestion: "Fix the FAIL items above, or rerun with --skip-validation if you accept the risk",
		}
	}
	o.logger().Info("Secrets validation passed for %s", strings.Join(services, ", "))
	return nil
}

// buildImage builds and publishes one service image, either locally via
// docker/podman or through Cloud Build.
func (o *Orchestrator) buildImage(ctx context.Context, service string, spec config.ServiceSpec, image string, opts Options) error {
	source := spec.Source
	if source == "" {
		source = "."
	}

	if !opts.BuildLocal {
		o.logger().Info("Submitting Cloud Build for %s", service)
		return o.Cloud.SubmitBuild(ctx, image, source)
	}

	runtime := o.Runtime
	if runtime == "" {
		detected, err := containerRuntime()
		if err != nil {
			return err
		}
		runtime = detected
	}

	dockerfile := spec.AlpineDockerfile
	if opts.NoAlpine || dockerfile == "" {
		dockerfile = spec.Dockerfile
	}

	buildArgs := []string{"build", "-t", image}
	if dockerfile != "" {
		buildArgs = append(buildArgs, "-f", dockerfile)
	}
	buildArgs = append(buildArgs, source)

	o.logger().Info("Building %s with %s", service, runtime)
	if _, stderr, err := o.Executor.Execute(ctx, runtime, buildArgs...); err != nil {
		return dserrors.CommandError{
			Command:    runtime + " " + strings.Join(buildArgs, " "),
			Message:    strings.TrimSpace(string(stderr)),
			Suggestion: "Check the Dockerfile and build context for " + service,
		}
	}

	if _, stderr, err := o.Executor.Execute(ctx, runtime, "push", image); err != nil {
		return dserrors.CommandError{
			Command:    runtime + " push " + image,
			Message:    strings.TrimSpace(string(stderr)),
			Suggestion: "Authenticate the registry first: gcloud auth configure-docker",
		}
	}
	return nil
}

// containerRuntime picks docker, falling back to podman.
func containerRuntime() (string, error) {
	if err := pkgexec.LookPath("docker"); err == nil {
		return "docker", nil
	}
	if err := pkgexec.LookPath("podman"); err == nil {
		return "podman", nil
	}
	return "", dserrors.UserError{
		Message:    "No container runtime found for --build-local",
		Suggestion: "Install docker or podman, or drop --build-local to use Cloud Build",
	}
}

// deployService generates the secrets fragment and rolls out one service.
func (o *Orchestrator) deployService(ctx context.Context, service string, spec config.ServiceSpec, image, environment string, opts Options) error {
	fragment, err := o.Registry.Fragment(service, environment, o.logger())
	if err != nil {
		return err
	}
	if fragment == "" {
		o.logger().Debug("Service %s deploys without GSM-backed secrets", service)
	}

	o.logger().Info("Deploying %s to Cloud Run", service)
	return o.Cloud.RunDeploy(ctx, gcloud.RunDeployArgs{
		Service:              service,
		Image:                image,
		Region:               o.Config.Definition.Region,
		ServiceAccount:       o.Config.Definition.ServiceAccount,
		SecretsFragment:      fragment,
		Port:                 spec.Port,
		Memory:               spec.Memory,
		NoTraffic:            opts.NoTraffic,
		AllowUnauthenticated: spec.AllowUnauthenticated,
	})
}

// cleanupRevisions deletes all but the newest revisions of a service.
func (o *Orchestrator) cleanupRevisions(ctx context.Context, service string, keep int) error {
	if keep <= 0 {
		keep = defaultKeepRevisions
	}

	revisions, err := o.Cloud.ListRevisions(ctx, service, o.Config.Definition.Region)
	if err != nil {
		return err
	}
	if len(revisions) <= keep {
		return nil
	}

	for _, revision := range revisions[keep:] {
		o.logger().Info("Deleting old revision %s", revision)
		if err := o.Cloud.DeleteRevision(ctx, revision, o.Config.Definition.Region); err != nil {
			return err
		}
	}
	return nil
}

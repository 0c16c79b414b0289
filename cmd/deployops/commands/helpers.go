package commands

import (
	"github.com/netra/deployops/internal/config"
	"github.com/netra/deployops/internal/deploy"
	"github.com/netra/deployops/internal/gcloud"
	"github.com/netra/deployops/internal/registry"
	"github.com/netra/deployops/internal/validate"
	pkgexec "github.com/netra/deployops/pkg/exec"
)

// loadConfig loads deployops.yaml and applies CLI overrides. An empty
// override leaves the configured value in place.
func loadConfig(cfg *config.Config, project, region string) error {
	if err := cfg.Load(); err != nil {
		return err
	}
	if project != "" {
		cfg.Definition.Project = project
	}
	if region != "" {
		cfg.Definition.Region = region
	}
	return nil
}

// newCloudClient builds the gcloud CLI client for the configured project.
func newCloudClient(cfg *config.Config) *gcloud.Client {
	return gcloud.NewClient(cfg.Definition.Project, cfg.Logger)
}

// newChecker wires the readiness checker onto a gcloud client. The same
// client serves as secret source and IAM checker.
func newChecker(cfg *config.Config, reg *registry.Registry, cloud *gcloud.Client) *validate.Checker {
	return &validate.Checker{
		Registry:       reg,
		Source:         cloud,
		IAM:            cloud,
		Logger:         cfg.Logger,
		Project:        cfg.Definition.Project,
		ServiceAccount: cfg.Definition.ServiceAccount,
	}
}

// newOrchestrator assembles the full deployment pipeline.
func newOrchestrator(cfg *config.Config, cloud *gcloud.Client) *deploy.Orchestrator {
	reg := registry.Default()
	return &deploy.Orchestrator{
		Config:   cfg,
		Registry: reg,
		Cloud:    cloud,
		Checker:  newChecker(cfg, reg, cloud),
		Executor: pkgexec.DefaultExecutor(),
		Logger:   cfg.Logger,
	}
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/netra/deployops/internal/config"
	"github.com/netra/deployops/internal/deploy"
	dserrors "github.com/netra/deployops/internal/errors"
)

func NewDeployCommand(cfg *config.Config) *cobra.Command {
	var (
		project        string
		region         string
		service        string
		buildLocal     bool
		runChecks      bool
		checkSecrets   bool
		checkAPIs      bool
		noTraffic      bool
		noAlpine       bool
		skipValidation bool
		cleanup        bool
		keepRevisions  int
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build and deploy services to Cloud Run",
		Long: `Build images, validate Secret Manager readiness, and deploy the
netra services to Cloud Run with the generated --set-secrets mapping.

Examples:
  # Deploy every configured service with full validation
  deployops deploy --project netra-staging --run-checks

  # Deploy only the backend, building locally
  deployops deploy --service backend --build-local

  # Validate secrets without deploying
  deployops deploy --check-secrets

  # Deploy without shifting traffic, then prune old revisions
  deployops deploy --no-traffic --cleanup`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cfg, project, region); err != nil {
				return err
			}
			if cfg.Definition.Project == "" {
				return dserrors.UserError{
					Message:    "No GCP project configured",
					Suggestion: "Pass --project or set 'project' in deployops.yaml",
				}
			}

			opts := deploy.Options{
				BuildLocal:     buildLocal,
				CheckAPIs:      checkAPIs || runChecks,
				CheckSecrets:   checkSecrets,
				SkipValidation: skipValidation && !runChecks,
				NoTraffic:      noTraffic,
				NoAlpine:       noAlpine,
				Cleanup:        cleanup,
				KeepRevisions:  keepRevisions,
			}
			if service != "" {
				opts.Services = []string{service}
			}

			orchestrator := newOrchestrator(cfg, newCloudClient(cfg))
			return orchestrator.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "GCP project ID (overrides config)")
	cmd.Flags().StringVar(&region, "region", "", "Cloud Run region (overrides config)")
	cmd.Flags().StringVar(&service, "service", "", "Deploy a single service instead of all")
	cmd.Flags().BoolVar(&buildLocal, "build-local", false, "Build with docker/podman instead of Cloud Build")
	cmd.Flags().BoolVar(&runChecks, "run-checks", false, "Run all pre-deployment checks (APIs and secrets)")
	cmd.Flags().BoolVar(&checkSecrets, "check-secrets", false, "Validate secrets and exit without deploying")
	cmd.Flags().BoolVar(&checkAPIs, "check-apis", false, "Verify required GCP APIs are enabled")
	cmd.Flags().BoolVar(&noTraffic, "no-traffic", false, "Deploy the revision without routing traffic to it")
	cmd.Flags().BoolVar(&noAlpine, "no-alpine", false, "Use the non-alpine Dockerfile for local builds")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Skip the secrets readiness phase")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Delete old revisions after a successful deploy")
	cmd.Flags().IntVar(&keepRevisions, "keep-revisions", 3, "Revisions to keep when --cleanup is set")

	return cmd
}

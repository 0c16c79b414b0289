package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netra/deployops/internal/config"
	dserrors "github.com/netra/deployops/internal/errors"
	"github.com/netra/deployops/internal/gsm"
	"github.com/netra/deployops/internal/osenv"
	"github.com/netra/deployops/internal/registry"
)

func NewSecretsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Inspect and validate the secret configuration",
		Long: `Work with the secret registry: validate Secret Manager readiness
or print the generated --set-secrets fragment for a service.`,
	}

	cmd.AddCommand(
		newSecretsCheckCommand(cfg),
		newSecretsFragmentCommand(cfg),
	)

	return cmd
}

func newSecretsCheckCommand(cfg *config.Config) *cobra.Command {
	var (
		project string
		service string
		native  bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate Secret Manager readiness without deploying",
		Long: `Run the pre-deployment secrets checks standalone: existence, IAM
access, value quality, and JWT family consistency against live GSM.

By default secrets are read through the gcloud CLI. With --native the
Secret Manager client library is used instead; IAM binding checks are
skipped on that path since they need gcloud.

Examples:
  # Check every configured service
  deployops secrets check

  # Check one service in a specific project
  deployops secrets check --service backend --project netra-staging

  # Use the client library instead of the gcloud CLI
  deployops secrets check --native`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cfg, project, ""); err != nil {
				return err
			}

			services := cfg.ServiceNames()
			if service != "" {
				services = []string{service}
			}

			cloud := newCloudClient(cfg)
			checker := newChecker(cfg, registry.Default(), cloud)

			if native {
				env := osenv.Capture()
				client, err := gsm.NewClient(cmd.Context(), gsm.Options{Project: cfg.Definition.Project}, env, cfg.Logger)
				if err != nil {
					return err
				}
				defer func() { _ = client.Close() }()
				checker.Source = client
				checker.IAM = nil
			}

			report, err := checker.CheckDeploymentReadiness(cmd.Context(), services, cfg.Definition.Environment)
			if err != nil {
				return err
			}

			for _, msg := range report.Messages() {
				fmt.Println(msg)
			}
			if !report.Ok() {
				return dserrors.UserError{
					Message:    "Secrets validation failed",
					Suggestion: "Fix the FAIL items above before deploying",
				}
			}

			cfg.Logger.Info("All secrets are ready")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "GCP project ID (overrides config)")
	cmd.Flags().StringVar(&service, "service", "", "Check a single service instead of all")
	cmd.Flags().BoolVar(&native, "native", false, "Use the Secret Manager client library instead of gcloud")

	return cmd
}

func newSecretsFragmentCommand(cfg *config.Config) *cobra.Command {
	var (
		service     string
		environment string
	)

	cmd := &cobra.Command{
		Use:   "fragment",
		Short: "Print the --set-secrets value for a service",
		Long: `Generate the comma-separated NAME=gsm-id:latest fragment a
Cloud Run deployment of the service would receive.

The raw fragment is printed without a trailing newline, making it
suitable for scripting:

  gcloud run deploy backend --set-secrets "$(deployops secrets fragment --service backend)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if service == "" {
				return dserrors.UserError{
					Message:    "Service name is required",
					Suggestion: "Use --service <name> to pick a service",
				}
			}

			env := environment
			if env == "" {
				if err := cfg.Load(); err != nil {
					return err
				}
				env = cfg.Definition.Environment
			}

			fragment, err := registry.Default().Fragment(service, env, cfg.Logger)
			if err != nil {
				return err
			}

			fmt.Print(fragment)
			return nil
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Service name (required)")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment (defaults to the configured one)")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}

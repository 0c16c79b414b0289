package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/netra/deployops/internal/config"
	"github.com/netra/deployops/internal/gcloud"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check deployment prerequisites",
		Long: `Verify everything a deployment needs before it starts.

This command checks:
- gcloud CLI availability
- Configuration file validity
- Secret Manager reachability for the configured project
- Required GCP APIs (Cloud Run, Secret Manager, Cloud Build, Artifact Registry)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]checkResult, 0, 4)

			// gcloud on PATH comes first; every later check shells out to it.
			if err := gcloud.Installed(); err != nil {
				results = append(results, checkResult{"gcloud CLI", "error", err.Error()})
				displayCheckResults(results)
				return fmt.Errorf("gcloud CLI is not available")
			}
			results = append(results, checkResult{"gcloud CLI", "ok", "found on PATH"})

			if err := loadConfig(cfg, project, ""); err != nil {
				results = append(results, checkResult{"configuration", "error", err.Error()})
				displayCheckResults(results)
				return fmt.Errorf("configuration is not usable")
			}
			results = append(results, checkResult{"configuration", "ok", cfg.Path})

			cloud := newCloudClient(cfg)
			ctx := cmd.Context()

			if err := cloud.Ping(ctx); err != nil {
				results = append(results, checkResult{"secret manager", "error", err.Error()})
			} else {
				results = append(results, checkResult{"secret manager", "ok", "reachable in " + cfg.Definition.Project})
			}

			missing, err := cloud.MissingAPIs(ctx)
			switch {
			case err != nil:
				results = append(results, checkResult{"required APIs", "error", err.Error()})
			case len(missing) > 0:
				results = append(results, checkResult{"required APIs", "error", "not enabled: " + strings.Join(missing, ", ")})
			default:
				results = append(results, checkResult{"required APIs", "ok", "all enabled"})
			}

			displayCheckResults(results)

			failed := 0
			for _, result := range results {
				if result.status != "ok" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}

			cfg.Logger.Info("All systems operational!")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "GCP project ID (overrides config)")

	return cmd
}

type checkResult struct {
	name    string
	status  string // ok, error
	message string
}

// displayCheckResults shows the doctor checks in a formatted table.
func displayCheckResults(results []checkResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t-------\n")

	for _, result := range results {
		status := result.status
		switch result.status {
		case "ok":
			status = "✓ " + status
		case "error":
			status = "✗ " + status
		}
		// Keep the table readable when an error carries a multi-line
		// suggestion.
		message := strings.ReplaceAll(result.message, "\n", " ")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", result.name, status, message)
	}

	_ = w.Flush()
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/usecase"
)

func launchCmd() *cobra.Command {
	var workspace string
	var experiment string
	var cluster string
	var dryRun bool
	var force bool
	var noSave bool
	var format string

	c := &cobra.Command{
		Use:   "launch",
		Short: "Launch a training experiment on a cluster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			experimentPath, err := resolveExperimentPath(ws, experiment)
			if err != nil {
				return err
			}

			clusterArg, err := resolveClusterArg(ws, cluster)
			if err != nil {
				return err
			}

			launcher, _, err := ws.launcherFor(clusterArg)
			if err != nil {
				return err
			}

			store := ws.store
			if noSave {
				store = nil
			}

			uc := usecase.NewLaunchExperiment(
				ws.experiments, ws.clusters, launcher, store,
				usecase.WithLogDir(ws.logDir()),
			)

			out, err := uc.Execute(cmd.Context(), experimentPath, clusterArg, usecase.LaunchOptions{
				DryRun: dryRun,
				Force:  force,
			})
			if err != nil {
				_ = printOutcome(os.Stdout, out, format)
				return err
			}

			return printOutcome(os.Stdout, out, format)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&experiment, "experiment", "e", "", "Experiment name or path (required)")
	c.Flags().StringVarP(&cluster, "cluster", "c", "", "Cluster name or path (optional; defaults to workspace default cluster)")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and preview the command without submitting")
	c.Flags().BoolVar(&force, "force", false, "Launch even when preflight checks fail")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("experiment")
	return c
}

func printOutcome(w io.Writer, out usecase.LaunchOutcome, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		payload := map[string]any{
			"store_id": out.StoreID,
			"artifact": out.Artifact,
		}
		if out.Preview != "" {
			payload["preview"] = out.Preview
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyOutcome(w, out)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyOutcome(w io.Writer, out usecase.LaunchOutcome) {
	a := out.Artifact

	fmt.Fprintf(w, "Experiment: %s\n", a.ExperimentName)
	fmt.Fprintf(w, "Variant:    %s\n", a.Variant)
	fmt.Fprintf(w, "Cluster:    %s\n", a.ClusterName)
	if !a.SubmittedAt.IsZero() {
		fmt.Fprintf(w, "Submitted:  %s\n", a.SubmittedAt.Format(time.RFC3339))
	}
	if a.JobID != "" {
		fmt.Fprintf(w, "Job ID:     %s\n", a.JobID)
	}
	if a.LogPath != "" {
		fmt.Fprintf(w, "Log:        %s\n", a.LogPath)
	}
	if out.StoreID != "" {
		fmt.Fprintf(w, "Run ID:     %s\n", out.StoreID)
	}

	if len(a.Checks) > 0 {
		pass, fail := countCheckPassFail(a.Checks)
		fmt.Fprintf(w, "\nChecks: %d pass / %d fail\n", pass, fail)
		for _, c := range a.Checks {
			mark := "✓"
			if !c.Passed {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %s — %s\n", mark, c.Name, c.Message)
		}
	}

	if out.Preview != "" {
		fmt.Fprintf(w, "\n--- preview ---\n%s", out.Preview)
		if !strings.HasSuffix(out.Preview, "\n") {
			fmt.Fprintln(w)
		}
		return
	}

	if len(a.Command) > 0 {
		fmt.Fprintf(w, "\nCommand: %s\n", strings.Join(a.Command, " "))
	}
}

func countCheckPassFail(in []domain.CheckResult) (pass int, fail int) {
	for _, c := range in {
		if c.Passed {
			pass++
		} else {
			fail++
		}
	}
	return pass, fail
}

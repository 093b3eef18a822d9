package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vaijsc/vision-ordering-ssms/internal/usecase"
)

func evalCmd() *cobra.Command {
	var workspace string
	var experiment string
	var cluster string
	var checkpoint string
	var dryRun bool
	var noSave bool
	var format string

	c := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a trained checkpoint with an experiment's settings",
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

			uc := usecase.NewEvaluateCheckpoint(
				ws.experiments, ws.clusters, launcher, store,
				usecase.WithLogDir(ws.logDir()),
			)

			out, err := uc.Execute(cmd.Context(), experimentPath, clusterArg, checkpoint, usecase.LaunchOptions{
				DryRun: dryRun,
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
	c.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint file to evaluate (required)")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and preview the command without submitting")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("experiment")
	_ = c.MarkFlagRequired("checkpoint")
	return c
}

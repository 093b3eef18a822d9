package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaijsc/vision-ordering-ssms/internal/usecase"
)

func checkCmd() *cobra.Command {
	var workspace string
	var experiment string
	var cluster string

	c := &cobra.Command{
		Use:   "check",
		Short: "Validate an experiment against a cluster (nothing is launched)",
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

			uc := usecase.NewValidateExperiment(ws.experiments, ws.clusters)
			checks, err := uc.Execute(cmd.Context(), experimentPath, clusterArg)

			for _, ch := range checks {
				mark := "✓"
				if !ch.Passed {
					mark = "✗"
				}
				fmt.Printf("%s %s — %s\n", mark, ch.Name, ch.Message)
			}

			if err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&experiment, "experiment", "e", "", "Experiment name or path (required)")
	c.Flags().StringVarP(&cluster, "cluster", "c", "", "Cluster name or path (optional; defaults to workspace default cluster)")

	_ = c.MarkFlagRequired("experiment")
	return c
}

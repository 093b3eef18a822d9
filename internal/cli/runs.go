package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved runs",
	}

	c.AddCommand(runsListCmd())
	return c
}

func runsListCmd() *cobra.Command {
	var workspace string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs (newest first)",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			runs, err := ws.store.ListRuns()
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("(no runs found)")
				return nil
			}

			if limit > 0 && len(runs) > limit {
				runs = runs[:limit]
			}

			fmt.Printf("Workspace: %s\n\n", ws.root)
			for _, r := range runs {
				when := ""
				if !r.SubmittedAt.IsZero() {
					when = r.SubmittedAt.Format(time.RFC3339)
				}
				fmt.Printf("- %s  [%s] %s @ %s", r.ID, r.Kind, r.ExperimentName, r.ClusterName)
				if r.JobID != "" {
					fmt.Printf("  job=%s", r.JobID)
				}
				if when != "" {
					fmt.Printf("  %s", when)
				}
				fmt.Println()
				if len(r.Command) > 0 {
					fmt.Printf("    %s\n", strings.Join(r.Command, " "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most N runs (0 = all)")
	return cmd
}

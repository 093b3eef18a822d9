package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vaijsc/vision-ordering-ssms/internal/infra/slurm"
)

func statusCmd() *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Query SLURM for the state of a submitted job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prober := slurm.NewProber()

			st, err := prober.Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			case "pretty", "":
				fmt.Printf("Job ID:  %s\n", st.JobID)
				fmt.Printf("State:   %s\n", st.State)
				if st.Reason != "" {
					fmt.Printf("Reason:  %s\n", st.Reason)
				}
				if st.Nodes != "" {
					fmt.Printf("Nodes:   %s\n", st.Nodes)
				}
				return nil
			default:
				return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
			}
		},
	}

	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func clustersCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "clusters",
		Short: "Manage clusters in a workspace",
	}

	c.AddCommand(clustersListCmd())
	return c
}

func clustersListCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clusters",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			refs, err := ws.clusterCatalog.ListClusters(ws.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no clusters found)")
				return nil
			}

			fmt.Printf("Workspace: %s\n", ws.root)
			fmt.Printf("Default:   %s\n\n", ws.cfg.Defaults.Cluster)

			for _, r := range refs {
				rel, _ := filepath.Rel(ws.root, r.Path)
				fmt.Printf("- %s  (%s)\n", r.Name, rel)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return cmd
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/fsworkspace"
)

func initCmd() *cobra.Command {
	var path string
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new mvlaunch workspace",
		RunE: func(_ *cobra.Command, _ []string) error {
			root := path
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				root = wd
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}

			ini := fsworkspace.NewInitializer()
			if err := ini.Init(domain.WorkspaceSpec{Root: abs}, force); err != nil {
				return err
			}

			fmt.Printf("Workspace initialized at %s\n", abs)
			return nil
		},
	}

	c.Flags().StringVar(&path, "path", "", "Target directory (default: current directory)")
	c.Flags().BoolVar(&force, "force", false, "Overwrite template files that already exist")
	return c
}

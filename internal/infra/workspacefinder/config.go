package workspacefinder

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

// LoadConfig loads mvlaunch.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, "mvlaunch.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	if y.Mvlaunch.Masking.Enabled != nil {
		cfg.Masking.Enabled = *y.Mvlaunch.Masking.Enabled
	}
	if y.Mvlaunch.Defaults.Cluster != "" {
		cfg.Defaults.Cluster = y.Mvlaunch.Defaults.Cluster
	}
	if y.Mvlaunch.Paths.ExperimentsDir != "" {
		cfg.Paths.ExperimentsDir = y.Mvlaunch.Paths.ExperimentsDir
	}
	if y.Mvlaunch.Paths.ClustersDir != "" {
		cfg.Paths.ClustersDir = y.Mvlaunch.Paths.ClustersDir
	}
	if y.Mvlaunch.Paths.RunsDir != "" {
		cfg.Paths.RunsDir = y.Mvlaunch.Paths.RunsDir
	}
	if y.Mvlaunch.Paths.LogsDir != "" {
		cfg.Paths.LogsDir = y.Mvlaunch.Paths.LogsDir
	}

	return cfg, nil
}

type yamlConfig struct {
	Mvlaunch struct {
		Masking struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"masking"`

		Defaults struct {
			Cluster string `yaml:"cluster"`
		} `yaml:"defaults"`

		Paths struct {
			ExperimentsDir string `yaml:"experiments_dir"`
			ClustersDir    string `yaml:"clusters_dir"`
			RunsDir        string `yaml:"runs_dir"`
			LogsDir        string `yaml:"logs_dir"`
		} `yaml:"paths"`
	} `yaml:"mvlaunch"`
}

package domain

// Config represents the minimal workspace configuration loaded from
// mvlaunch.yaml.
type Config struct {
	Masking  MaskingConfig
	Defaults DefaultsConfig
	Paths    PathsConfig
}

type MaskingConfig struct {
	Enabled bool
}

type DefaultsConfig struct {
	Cluster string
}

type PathsConfig struct {
	ExperimentsDir string
	ClustersDir    string
	RunsDir        string
	LogsDir        string
}

// DefaultConfig provides sane defaults if mvlaunch.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Masking: MaskingConfig{Enabled: true},
		Defaults: DefaultsConfig{
			Cluster: "local",
		},
		Paths: PathsConfig{
			ExperimentsDir: "experiments",
			ClustersDir:    "clusters",
			RunsDir:        "runs",
			LogsDir:        "logs",
		},
	}
}

package yamlcluster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
)

type Loader struct {
	rootDir       string
	clustersDir   string
	overridesFile string
}

type Option func(*Loader)

func WithClustersDir(dir string) Option {
	return func(l *Loader) { l.clustersDir = dir }
}

func WithOverridesFile(name string) Option {
	return func(l *Loader) { l.overridesFile = name }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:       root,
		clustersDir:   "clusters",
		overridesFile: "overrides.local.yaml",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	_ ports.ClusterLoader  = (*Loader)(nil)
	_ ports.ClusterCatalog = (*Loader)(nil)
)

// LoadCluster accepts either a cluster name (e.g., "a100") or a full path to
// a YAML file. Site-local overrides (overrides.local.yaml next to the
// cluster file) are merged on top: vars and env values override, scalar
// launcher settings replace when non-empty.
func (l *Loader) LoadCluster(nameOrPath string) (domain.Cluster, error) {
	var clusterPath string
	var clusterName string

	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || strings.Contains(nameOrPath, string(filepath.Separator)) {
		clusterPath = filepath.Clean(nameOrPath)
		clusterName = strings.TrimSuffix(filepath.Base(clusterPath), filepath.Ext(clusterPath))
	} else {
		clusterName = nameOrPath
		clusterPath = filepath.Join(l.rootDir, l.clustersDir, clusterName+".yaml")
	}

	base, err := readCluster(clusterPath)
	if err != nil {
		return domain.Cluster{}, err
	}

	overridesPath := filepath.Join(filepath.Dir(clusterPath), l.overridesFile)
	overrides, ovErr := readClusterOptional(overridesPath)
	if ovErr != nil {
		return domain.Cluster{}, ovErr
	}

	merged := mergeCluster(base, overrides)
	return mapAndValidate(clusterPath, clusterName, merged)
}

func (l *Loader) ListClusters(root string) ([]domain.ClusterRef, error) {
	dir := filepath.Join(root, l.clustersDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlcluster.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ClusterRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if name == l.overridesFile {
			continue
		}

		refs = append(refs, domain.ClusterRef{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

type yamlCluster struct {
	Scheduler string `yaml:"scheduler"`
	Launcher  string `yaml:"launcher"`
	Python    string `yaml:"python"`
	TrainRoot string `yaml:"train_root"`
	WorkDir   string `yaml:"workdir"`

	Vars map[string]string `yaml:"vars"`
	Env  map[string]string `yaml:"env"`
}

func readCluster(path string) (yamlCluster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return yamlCluster{}, &domain.OpError{
			Op:   "yamlcluster.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlCluster
	if err := yaml.Unmarshal(b, &y); err != nil {
		return yamlCluster{}, &domain.OpError{
			Op:   "yamlcluster.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return y, nil
}

func readClusterOptional(path string) (yamlCluster, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return yamlCluster{}, nil
		}
		return yamlCluster{}, &domain.OpError{
			Op:   "yamlcluster.overrides",
			Kind: domain.KindLaunch,
			Path: path,
			Err:  err,
		}
	}

	y, err := readCluster(path)
	if err != nil {
		return yamlCluster{}, fmt.Errorf("failed to load overrides: %w", err)
	}
	return y, nil
}

func mergeCluster(base, over yamlCluster) yamlCluster {
	out := base

	if over.Scheduler != "" {
		out.Scheduler = over.Scheduler
	}
	if over.Launcher != "" {
		out.Launcher = over.Launcher
	}
	if over.Python != "" {
		out.Python = over.Python
	}
	if over.TrainRoot != "" {
		out.TrainRoot = over.TrainRoot
	}
	if over.WorkDir != "" {
		out.WorkDir = over.WorkDir
	}

	out.Vars = mergeMap(base.Vars, over.Vars)
	out.Env = mergeMap(base.Env, over.Env)
	return out
}

func mergeMap(base, over map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func mapAndValidate(path, name string, y yamlCluster) (domain.Cluster, error) {
	scheduler := domain.SchedulerKind(strings.ToLower(strings.TrimSpace(y.Scheduler)))
	switch scheduler {
	case "":
		scheduler = domain.SchedulerLocal
	case domain.SchedulerLocal, domain.SchedulerSlurm:
	default:
		return domain.Cluster{}, &domain.OpError{
			Op:   "yamlcluster.validate",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("unsupported scheduler %q (expected local|slurm)", y.Scheduler),
		}
	}

	return domain.Cluster{
		Name:      name,
		Scheduler: scheduler,
		Launcher:  y.Launcher,
		Python:    y.Python,
		TrainRoot: y.TrainRoot,
		WorkDir:   y.WorkDir,
		Vars:      domain.Vars(y.Vars),
		Env:       y.Env,
	}, nil
}

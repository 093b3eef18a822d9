package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/runstore"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/shellrunner"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/slurm"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/workspacefinder"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/yamlcluster"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/yamlexperiment"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	experiments ports.ExperimentLoader

	clusters       ports.ClusterLoader
	clusterCatalog ports.ClusterCatalog

	store ports.ArtifactStore
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	expLoader := yamlexperiment.NewLoader(
		yamlexperiment.WithExperimentsDir(cfg.Paths.ExperimentsDir),
	)

	clusterLoader := yamlcluster.NewLoader(
		root,
		yamlcluster.WithClustersDir(cfg.Paths.ClustersDir),
	)

	store := runstore.NewJSONStore(root, cfg, runstore.WithIndex(true))

	return &workspaceCtx{
		root:           root,
		cfg:            cfg,
		experiments:    expLoader,
		clusters:       clusterLoader,
		clusterCatalog: clusterLoader,
		store:          store,
	}, nil
}

// launcherFor picks the job launcher matching the cluster's scheduler.
// The cluster is loaded here (in addition to inside the usecase) because
// the launcher must exist before the usecase is constructed.
func (ws *workspaceCtx) launcherFor(clusterArg string) (ports.JobLauncher, domain.Cluster, error) {
	cluster, err := ws.clusters.LoadCluster(clusterArg)
	if err != nil {
		return nil, domain.Cluster{}, err
	}

	switch cluster.Scheduler {
	case domain.SchedulerSlurm:
		return slurm.NewLauncher(), cluster, nil
	default:
		return shellrunner.New(), cluster, nil
	}
}

func (ws *workspaceCtx) logDir() string {
	return filepath.Join(ws.root, ws.cfg.Paths.LogsDir)
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `mvlaunch init`): %w", wd, err)
	}
	return root, nil
}

func resolveExperimentPath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("experiment is required (use --experiment or -e)")
	}

	// Path-looking args resolve relative to the workspace root.
	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	experimentsDir := filepath.Join(ws.root, ws.cfg.Paths.ExperimentsDir)

	// "perm1.yaml" means a file under the experiments dir.
	if hasYAMLExt(in) {
		p := filepath.Join(experimentsDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	// "perm1" tries perm1.yaml / perm1.yml in the experiments dir.
	p1 := filepath.Join(experimentsDir, in+".yaml")
	if fileExists(p1) {
		return p1, nil
	}
	p2 := filepath.Join(experimentsDir, in+".yml")
	if fileExists(p2) {
		return p2, nil
	}

	// Last resort: match by experiment "name" field.
	refs, err := ws.experiments.ListExperiments(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", fmt.Errorf("experiment %q not found in %q", in, experimentsDir)
}

func resolveClusterArg(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return ws.cfg.Defaults.Cluster, nil
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	if hasYAMLExt(in) {
		clustersDir := filepath.Join(ws.root, ws.cfg.Paths.ClustersDir)
		return filepath.Join(clustersDir, in), nil
	}

	// A bare name ("a100") is resolved by the loader.
	return in, nil
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

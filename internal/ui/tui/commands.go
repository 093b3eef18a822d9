package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/runstore"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/shellrunner"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/slurm"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/workspacefinder"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/yamlcluster"
	"github.com/vaijsc/vision-ordering-ssms/internal/infra/yamlexperiment"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
	"github.com/vaijsc/vision-ordering-ssms/internal/usecase"
)

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return workspaceRefreshedMsg{cwd: "", found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return workspaceRefreshedMsg{cwd: wd, found: true, root: root, err: nil}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(domain.WorkspaceSpec{Root: root}, true)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdLoadExperiments(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return experimentsLoadedMsg{root: root, err: err}
		}

		loader := yamlexperiment.NewLoader(
			yamlexperiment.WithExperimentsDir(cfg.Paths.ExperimentsDir),
		)

		refs, err := loader.ListExperiments(root)
		return experimentsLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadClusters(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return clustersLoadedMsg{root: root, err: err}
		}

		loader := yamlcluster.NewLoader(
			root,
			yamlcluster.WithClustersDir(cfg.Paths.ClustersDir),
		)

		refs, err := loader.ListClusters(root)
		return clustersLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadRuns(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return runsLoadedMsg{root: root, err: err}
		}

		store := runstore.NewJSONStore(root, cfg, runstore.WithIndex(true))
		runs, err := store.ListRuns()
		return runsLoadedMsg{root: root, runs: runs, err: err}
	}
}

func listenLaunch(ch <-chan launchDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return launchDoneMsg{err: errors.New("launch channel closed")}
		}
		return msg
	}
}

// startLaunchAsync dispatches by experiment file path, not name: listed
// experiments may live in files that do not match their name field.
func startLaunchAsync(
	workspaceRoot, experimentPath, clusterName string,
	dryRun bool,
	log *slog.Logger,
) (chan launchDoneMsg, tea.Cmd) {
	ch := make(chan launchDoneMsg, 1)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		log.Info("launch.start",
			"workspace", workspaceRoot,
			"experiment_path", experimentPath,
			"cluster", clusterName,
			"dry_run", dryRun,
		)

		cfg, err := workspacefinder.LoadConfig(workspaceRoot)
		if err != nil {
			log.Error("launch.load_config.failed", "err", err)
			ch <- launchDoneMsg{err: err}
			return
		}

		expLoader := yamlexperiment.NewLoader(
			yamlexperiment.WithExperimentsDir(cfg.Paths.ExperimentsDir),
		)
		clusterLoader := yamlcluster.NewLoader(
			workspaceRoot,
			yamlcluster.WithClustersDir(cfg.Paths.ClustersDir),
		)
		store := runstore.NewJSONStore(workspaceRoot, cfg, runstore.WithIndex(true))

		cluster, err := clusterLoader.LoadCluster(clusterName)
		if err != nil {
			log.Error("launch.load_cluster.failed", "err", err)
			ch <- launchDoneMsg{err: err}
			return
		}

		var launcher ports.JobLauncher
		if cluster.Scheduler == domain.SchedulerSlurm {
			launcher = slurm.NewLauncher()
		} else {
			launcher = shellrunner.New()
		}

		uc := usecase.NewLaunchExperiment(
			expLoader, clusterLoader, launcher, store,
			usecase.WithLogDir(filepath.Join(workspaceRoot, cfg.Paths.LogsDir)),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		out, execErr := uc.Execute(ctx, experimentPath, clusterName, usecase.LaunchOptions{DryRun: dryRun})

		if execErr != nil {
			log.Error("launch.failed", "err", execErr, "saved_id", out.StoreID)
		} else {
			log.Info("launch.ok", "saved_id", out.StoreID, "job_id", out.Artifact.JobID)
		}

		ch <- launchDoneMsg{outcome: out, err: execErr}
	}()

	return ch, listenLaunch(ch)
}

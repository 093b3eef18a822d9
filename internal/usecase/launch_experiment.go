package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
	"github.com/vaijsc/vision-ordering-ssms/internal/usecase/preflight"
)

// LaunchOptions tune a single launch.
type LaunchOptions struct {
	// DryRun resolves, checks and renders but submits nothing.
	DryRun bool
	// Force launches even when preflight checks fail.
	Force bool
}

// LaunchOutcome is everything a caller needs to report a launch.
type LaunchOutcome struct {
	Artifact domain.RunArtifact
	// StoreID is the persisted artifact id, empty when not saved.
	StoreID string
	// Preview is the rendered script/command (dry runs only).
	Preview string
}

// LaunchExperiment orchestrates one training launch: load, merge vars,
// resolve, preflight, build the job, dispatch, persist.
type LaunchExperiment struct {
	experiments ports.ExperimentLoader
	clusters    ports.ClusterLoader
	launcher    ports.JobLauncher
	store       ports.ArtifactStore // nil disables persistence

	resolver *domain.VarResolver
	logDir   string
}

type LaunchOption func(*LaunchExperiment)

// WithVarResolver overrides the resolver (useful for tests).
func WithVarResolver(vr *domain.VarResolver) LaunchOption {
	return func(uc *LaunchExperiment) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

// WithLogDir sets the directory job logs are written under.
func WithLogDir(dir string) LaunchOption {
	return func(uc *LaunchExperiment) { uc.logDir = dir }
}

func NewLaunchExperiment(el ports.ExperimentLoader, cl ports.ClusterLoader, jl ports.JobLauncher, store ports.ArtifactStore, opts ...LaunchOption) *LaunchExperiment {
	uc := &LaunchExperiment{
		experiments: el,
		clusters:    cl,
		launcher:    jl,
		store:       store,
		resolver:    domain.NewVarResolver(),
		logDir:      "logs",
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *LaunchExperiment) Execute(ctx context.Context, experimentPath, clusterNameOrPath string, opts LaunchOptions) (LaunchOutcome, error) {
	exp, err := uc.experiments.LoadExperiment(experimentPath)
	if err != nil {
		return LaunchOutcome{}, err
	}

	cluster, err := uc.clusters.LoadCluster(clusterNameOrPath)
	if err != nil {
		return LaunchOutcome{}, err
	}

	// experiment vars < cluster vars
	vars := domain.Merge(exp.Vars, cluster.Vars)

	rt, err := uc.resolver.NewRuntime(vars)
	if err != nil {
		return LaunchOutcome{}, err
	}

	resolved, err := rt.ResolveExperiment(exp)
	if err != nil {
		return LaunchOutcome{}, fmt.Errorf("experiment %q: %w", exp.Name, err)
	}

	clusterEnv, err := rt.ResolveEnv(cluster.Env)
	if err != nil {
		return LaunchOutcome{}, fmt.Errorf("cluster %q: %w", cluster.Name, err)
	}

	checks := preflight.Evaluate(resolved, preflightOptions(cluster))

	artifact := domain.RunArtifact{
		Kind:           domain.RunTrain,
		ExperimentName: exp.Name,
		ExperimentPath: experimentPath,
		ClusterName:    cluster.Name,
		Variant:        resolved.Variant,
		Checks:         checks,
		Resources:      resolved.Resources,
		SubmittedAt:    time.Now(),
	}

	if !preflight.AllPassed(checks) && !opts.Force {
		return LaunchOutcome{Artifact: artifact}, &domain.OpError{
			Op:   "launch.preflight",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%d preflight check(s) failed", countFailed(checks)),
		}
	}

	argv, err := domain.BuildTrainArgv(cluster, resolved)
	if err != nil {
		return LaunchOutcome{Artifact: artifact}, err
	}

	job := domain.JobSpec{
		Name:      jobName(resolved),
		Argv:      argv,
		Env:       domain.MergeEnv(clusterEnv, resolved.Env),
		WorkDir:   cluster.WorkDir,
		LogPath:   uc.logPath(jobName(resolved), rt.RunID()),
		Resources: resolved.Resources,
	}

	artifact.Command = job.Argv
	artifact.Env = job.Env
	artifact.LogPath = job.LogPath

	return uc.dispatch(ctx, job, artifact, opts)
}

// dispatch is shared by training and evaluation launches.
func (uc *LaunchExperiment) dispatch(ctx context.Context, job domain.JobSpec, artifact domain.RunArtifact, opts LaunchOptions) (LaunchOutcome, error) {
	if opts.DryRun {
		preview, err := uc.launcher.Preview(job)
		if err != nil {
			return LaunchOutcome{Artifact: artifact}, err
		}
		return LaunchOutcome{Artifact: artifact, Preview: preview}, nil
	}

	res, err := uc.launcher.Launch(ctx, job)
	if err != nil {
		return LaunchOutcome{Artifact: artifact}, err
	}
	artifact.JobID = res.JobID

	out := LaunchOutcome{Artifact: artifact}
	if uc.store != nil {
		id, saveErr := uc.store.SaveRun(artifact)
		if saveErr != nil {
			// The job is already running; report the save failure without
			// discarding the launch result.
			return out, saveErr
		}
		out.StoreID = id
	}

	return out, nil
}

func (uc *LaunchExperiment) logPath(name, runID string) string {
	return filepath.Join(uc.logDir, fmt.Sprintf("%s_%s.log", name, runID))
}

func preflightOptions(c domain.Cluster) preflight.Options {
	// Path checks only make sense when the job runs on this machine.
	if c.Scheduler == domain.SchedulerLocal {
		return preflight.Options{Stat: preflight.OSStat}
	}
	return preflight.Options{}
}

func jobName(e domain.Experiment) string {
	if e.Tag != "" {
		return e.Tag
	}
	return e.Name
}

func countFailed(in []domain.CheckResult) int {
	n := 0
	for _, c := range in {
		if !c.Passed {
			n++
		}
	}
	return n
}

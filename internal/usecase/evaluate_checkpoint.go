package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
	"github.com/vaijsc/vision-ordering-ssms/internal/usecase/preflight"
)

// EvaluateCheckpoint launches the external validator against a saved
// checkpoint, inheriting model/data settings from an experiment.
type EvaluateCheckpoint struct {
	inner *LaunchExperiment
}

func NewEvaluateCheckpoint(el ports.ExperimentLoader, cl ports.ClusterLoader, jl ports.JobLauncher, store ports.ArtifactStore, opts ...LaunchOption) *EvaluateCheckpoint {
	return &EvaluateCheckpoint{
		inner: NewLaunchExperiment(el, cl, jl, store, opts...),
	}
}

func (uc *EvaluateCheckpoint) Execute(ctx context.Context, experimentPath, clusterNameOrPath, checkpoint string, opts LaunchOptions) (LaunchOutcome, error) {
	exp, err := uc.inner.experiments.LoadExperiment(experimentPath)
	if err != nil {
		return LaunchOutcome{}, err
	}

	cluster, err := uc.inner.clusters.LoadCluster(clusterNameOrPath)
	if err != nil {
		return LaunchOutcome{}, err
	}

	vars := domain.Merge(exp.Vars, cluster.Vars)

	rt, err := uc.inner.resolver.NewRuntime(vars)
	if err != nil {
		return LaunchOutcome{}, err
	}

	spec := domain.EvalSpec{
		Name:       exp.Name,
		Model:      exp.Model,
		Checkpoint: checkpoint,
		DataDir:    exp.DataDir,
		InputSize:  exp.Hyper.InputSize,
		CropPct:    exp.Hyper.CropPct,
		BatchSize:  exp.Hyper.BatchSize,
		Resources:  evalResources(exp.Resources),
		Env:        exp.Env,
	}

	resolved, err := rt.ResolveEvalSpec(spec)
	if err != nil {
		return LaunchOutcome{}, fmt.Errorf("eval %q: %w", exp.Name, err)
	}

	clusterEnv, err := rt.ResolveEnv(cluster.Env)
	if err != nil {
		return LaunchOutcome{}, fmt.Errorf("cluster %q: %w", cluster.Name, err)
	}

	checks := preflight.EvaluateEval(resolved, preflightOptions(cluster))

	name := jobName(exp) + "_eval"

	artifact := domain.RunArtifact{
		Kind:           domain.RunEval,
		ExperimentName: exp.Name,
		ExperimentPath: experimentPath,
		ClusterName:    cluster.Name,
		Variant:        exp.Variant,
		Checks:         checks,
		Resources:      resolved.Resources,
		SubmittedAt:    time.Now(),
	}

	if !preflight.AllPassed(checks) && !opts.Force {
		return LaunchOutcome{Artifact: artifact}, &domain.OpError{
			Op:   "eval.preflight",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%d preflight check(s) failed", countFailed(checks)),
		}
	}

	job := domain.JobSpec{
		Name:      name,
		Argv:      domain.BuildEvalArgv(cluster, resolved),
		Env:       domain.MergeEnv(clusterEnv, resolved.Env),
		WorkDir:   cluster.WorkDir,
		LogPath:   uc.inner.logPath(name, rt.RunID()),
		Resources: resolved.Resources,
	}

	artifact.Command = job.Argv
	artifact.Env = job.Env
	artifact.LogPath = job.LogPath

	return uc.inner.dispatch(ctx, job, artifact, opts)
}

// evalResources trims a training allocation down to what validation needs:
// a single node, one GPU.
func evalResources(r domain.Resources) domain.Resources {
	out := r
	out.Nodes = 1
	if out.GPUsPerNode > 1 {
		out.GPUsPerNode = 1
	}
	return out
}

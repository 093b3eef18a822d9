package usecase

import (
	"context"
	"fmt"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
	"github.com/vaijsc/vision-ordering-ssms/internal/usecase/preflight"
)

// ValidateExperiment resolves an experiment + cluster pair and runs the
// preflight checks without dispatching anything.
type ValidateExperiment struct {
	experiments ports.ExperimentLoader
	clusters    ports.ClusterLoader
	resolver    *domain.VarResolver
}

type ValidateOption func(*ValidateExperiment)

func WithValidateResolver(vr *domain.VarResolver) ValidateOption {
	return func(uc *ValidateExperiment) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func NewValidateExperiment(el ports.ExperimentLoader, cl ports.ClusterLoader, opts ...ValidateOption) *ValidateExperiment {
	uc := &ValidateExperiment{
		experiments: el,
		clusters:    cl,
		resolver:    domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute returns the check results and an error when any check failed or
// the configuration could not even be resolved.
func (uc *ValidateExperiment) Execute(ctx context.Context, experimentPath, clusterNameOrPath string) ([]domain.CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exp, err := uc.experiments.LoadExperiment(experimentPath)
	if err != nil {
		return nil, err
	}

	cluster, err := uc.clusters.LoadCluster(clusterNameOrPath)
	if err != nil {
		return nil, err
	}

	vars := domain.Merge(exp.Vars, cluster.Vars)

	rt, err := uc.resolver.NewRuntime(vars)
	if err != nil {
		return nil, err
	}

	resolved, err := rt.ResolveExperiment(exp)
	if err != nil {
		return nil, fmt.Errorf("experiment %q: %w", exp.Name, err)
	}

	if _, err := rt.ResolveEnv(cluster.Env); err != nil {
		return nil, fmt.Errorf("cluster %q: %w", cluster.Name, err)
	}

	// A command that cannot be built is a config error, not a check failure.
	if _, err := domain.BuildTrainArgv(cluster, resolved); err != nil {
		return nil, err
	}

	checks := preflight.Evaluate(resolved, preflightOptions(cluster))
	if !preflight.AllPassed(checks) {
		return checks, &domain.OpError{
			Op:   "validate.preflight",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%d preflight check(s) failed", countFailed(checks)),
		}
	}

	return checks, nil
}

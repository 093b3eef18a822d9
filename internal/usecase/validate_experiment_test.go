package usecase

import (
	"context"
	"testing"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

func TestValidateExperiment_AllChecksPass(t *testing.T) {
	uc := NewValidateExperiment(
		fakeExperimentLoader{exp: testExperiment()},
		fakeClusterLoader{cluster: testCluster()},
		WithValidateResolver(fixedResolver()),
	)

	checks, err := uc.Execute(context.Background(), "experiments/tiny-mesa.yaml", "a100")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(checks) == 0 {
		t.Fatal("expected at least one check result")
	}
	for _, c := range checks {
		if !c.Passed {
			t.Errorf("unexpected failed check %q: %s", c.Name, c.Message)
		}
	}
}

func TestValidateExperiment_FailedCheckReturnsResultsAndError(t *testing.T) {
	exp := testExperiment()
	exp.Resources.Walltime = "2 days" // not HH:MM[:SS]

	uc := NewValidateExperiment(
		fakeExperimentLoader{exp: exp},
		fakeClusterLoader{cluster: testCluster()},
		WithValidateResolver(fixedResolver()),
	)

	checks, err := uc.Execute(context.Background(), "experiments/tiny-mesa.yaml", "a100")
	if err == nil {
		t.Fatal("expected error when a check fails")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config kind, got %v", err)
	}

	failed := 0
	for _, c := range checks {
		if !c.Passed {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly 1 failed check, got %d (%v)", failed, checks)
	}
}

func TestValidateExperiment_MissingVarIsError(t *testing.T) {
	exp := testExperiment()
	exp.DataDir = "{{nope}}/imagenet"

	uc := NewValidateExperiment(
		fakeExperimentLoader{exp: exp},
		fakeClusterLoader{cluster: testCluster()},
		WithValidateResolver(fixedResolver()),
	)

	_, err := uc.Execute(context.Background(), "experiments/tiny-mesa.yaml", "a100")
	if !domain.IsKind(err, domain.KindMissingVar) {
		t.Fatalf("expected missing_variable kind, got %v", err)
	}
}

func TestValidateExperiment_UnknownVariantIsError(t *testing.T) {
	exp := testExperiment()
	exp.Variant = domain.Variant("nonsense")

	uc := NewValidateExperiment(
		fakeExperimentLoader{exp: exp},
		fakeClusterLoader{cluster: testCluster()},
		WithValidateResolver(fixedResolver()),
	)

	if _, err := uc.Execute(context.Background(), "experiments/tiny-mesa.yaml", "a100"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestValidateExperiment_LoaderErrorPassesThrough(t *testing.T) {
	wantErr := &domain.OpError{Op: "yamlexperiment.load", Kind: domain.KindNotFound}

	uc := NewValidateExperiment(
		fakeExperimentLoader{err: wantErr},
		fakeClusterLoader{cluster: testCluster()},
	)

	if _, err := uc.Execute(context.Background(), "experiments/x.yaml", "a100"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found kind, got %v", err)
	}
}

package usecase

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

func TestEvaluateCheckpoint_BuildsValidatorCommand(t *testing.T) {
	launcher := &fakeLauncher{result: domain.LaunchResult{JobID: "555"}}
	store := &fakeStore{}

	uc := NewEvaluateCheckpoint(
		fakeExperimentLoader{exp: testExperiment()},
		fakeClusterLoader{cluster: testCluster()},
		launcher,
		store,
		WithVarResolver(fixedResolver()),
		WithLogDir("/ws/logs"),
	)

	out, err := uc.Execute(context.Background(), "x", "a100", "{{data_root}}/ckpt/best.pth.tar", LaunchOptions{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(launcher.launched) != 1 {
		t.Fatalf("expected 1 launch")
	}
	job := launcher.launched[0]

	wantArgv := []string{
		"python3", "/workspace/mambavision/validate.py",
		"--model", "mamba_vision_T",
		"--checkpoint", "/data/ckpt/best.pth.tar",
		"--data_dir", "/data/imagenet",
		"--batch-size", "128",
	}
	if diff := cmp.Diff(wantArgv, job.Argv); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}

	if job.Name != "tiny_mesa_025_eval" {
		t.Fatalf("job name = %s", job.Name)
	}
	if job.Resources.GPUsPerNode != 1 || job.Resources.Nodes != 1 {
		t.Fatalf("eval should run single node/gpu: %+v", job.Resources)
	}
	if out.Artifact.Kind != domain.RunEval {
		t.Fatalf("artifact kind = %s", out.Artifact.Kind)
	}
}

func TestEvaluateCheckpoint_RequiresCheckpoint(t *testing.T) {
	uc := NewEvaluateCheckpoint(
		fakeExperimentLoader{exp: testExperiment()},
		fakeClusterLoader{cluster: testCluster()},
		&fakeLauncher{},
		nil,
		WithVarResolver(fixedResolver()),
	)

	_, err := uc.Execute(context.Background(), "x", "a100", "", LaunchOptions{})
	if err == nil {
		t.Fatalf("expected preflight error for missing checkpoint")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

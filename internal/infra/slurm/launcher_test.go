package slurm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

func TestLauncher_SubmitParsesJobID(t *testing.T) {
	var gotName string
	var gotStdin string

	l := NewLauncher(WithRunner(func(_ context.Context, name string, args []string, stdin string) ([]byte, error) {
		gotName = name
		gotStdin = stdin
		return []byte("Submitted batch job 424242\n"), nil
	}))

	res, err := l.Launch(context.Background(), fullJob())
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if gotName != "sbatch" {
		t.Fatalf("expected sbatch, got %s", gotName)
	}
	if !strings.HasPrefix(gotStdin, "#!/bin/bash") {
		t.Fatalf("script not piped to sbatch:\n%s", gotStdin)
	}
	if res.JobID != "424242" {
		t.Fatalf("job id = %s", res.JobID)
	}
	if !strings.Contains(res.Command, "train_perm1.py") {
		t.Fatalf("command = %s", res.Command)
	}
}

func TestLauncher_ClusterSuffixTolerated(t *testing.T) {
	l := NewLauncher(WithRunner(func(context.Context, string, []string, string) ([]byte, error) {
		return []byte("Submitted batch job 7 on cluster vision\n"), nil
	}))

	res, err := l.Launch(context.Background(), fullJob())
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if res.JobID != "7" {
		t.Fatalf("job id = %s", res.JobID)
	}
}

func TestLauncher_SubmitFailure(t *testing.T) {
	l := NewLauncher(WithRunner(func(context.Context, string, []string, string) ([]byte, error) {
		return []byte("sbatch: error: invalid partition specified"), errors.New("exit status 1")
	}))

	_, err := l.Launch(context.Background(), fullJob())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindLaunch) {
		t.Fatalf("expected launch kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid partition") {
		t.Fatalf("scheduler stderr lost: %v", err)
	}
}

func TestLauncher_GarbageOutput(t *testing.T) {
	l := NewLauncher(WithRunner(func(context.Context, string, []string, string) ([]byte, error) {
		return []byte("something unexpected"), nil
	}))

	if _, err := l.Launch(context.Background(), fullJob()); err == nil {
		t.Fatalf("expected error for unparseable output")
	}
}

func TestLauncher_PreviewRendersWithoutRunning(t *testing.T) {
	ran := false
	l := NewLauncher(WithRunner(func(context.Context, string, []string, string) ([]byte, error) {
		ran = true
		return nil, nil
	}))

	script, err := l.Preview(fullJob())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if ran {
		t.Fatalf("preview must not execute anything")
	}
	if !strings.Contains(script, "#SBATCH --job-name=tiny_mesa_025") {
		t.Fatalf("unexpected preview:\n%s", script)
	}
}

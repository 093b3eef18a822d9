package domain

import (
	"testing"
	"time"
)

func newTestResolver() *VarResolver {
	return NewVarResolver(
		WithNow(func() time.Time { return time.Unix(1700000000, 0) }),
		WithRunID(func() (string, error) { return "ab12cd34", nil }),
	)
}

func TestResolveString_Basic(t *testing.T) {
	rr, err := newTestResolver().NewRuntime(Vars{"data_root": "/data"})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}

	got, err := rr.ResolveString("{{data_root}}/imagenet")
	if err != nil {
		t.Fatalf("ResolveString: %v", err)
	}
	if got != "/data/imagenet" {
		t.Fatalf("expected /data/imagenet, got %s", got)
	}
}

func TestResolveString_Builtins(t *testing.T) {
	rr, err := newTestResolver().NewRuntime(nil)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}

	got, err := rr.ResolveString("run_{{$timestamp}}_{{$run_id}}")
	if err != nil {
		t.Fatalf("ResolveString: %v", err)
	}
	if got != "run_1700000000_ab12cd34" {
		t.Fatalf("unexpected resolution: %s", got)
	}
	if rr.RunID() != "ab12cd34" {
		t.Fatalf("RunID() = %s", rr.RunID())
	}
}

func TestResolveString_MissingVar(t *testing.T) {
	rr, _ := newTestResolver().NewRuntime(Vars{})

	_, err := rr.ResolveString("{{nope}}")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsKind(err, KindMissingVar) {
		t.Fatalf("expected missing_variable kind, got %v", err)
	}
}

func TestResolveString_Unclosed(t *testing.T) {
	rr, _ := newTestResolver().NewRuntime(Vars{})

	if _, err := rr.ResolveString("{{open"); err == nil {
		t.Fatalf("expected error for unclosed placeholder")
	}
}

func TestResolveExperiment_DoesNotMutateInput(t *testing.T) {
	e := Experiment{
		Tag:     "mesa_{{$run_id}}",
		DataDir: "{{data_root}}/imagenet",
		Env:     map[string]string{"CUDA_VISIBLE_DEVICES": "{{gpus}}"},
		Hyper:   Hyperparams{Extra: map[string]string{"log-dir": "{{out_root}}/x"}},
	}

	rr, _ := newTestResolver().NewRuntime(Vars{
		"data_root": "/data",
		"gpus":      "0,1",
		"out_root":  "/out",
	})

	got, err := rr.ResolveExperiment(e)
	if err != nil {
		t.Fatalf("ResolveExperiment: %v", err)
	}

	if got.DataDir != "/data/imagenet" {
		t.Fatalf("data_dir = %s", got.DataDir)
	}
	if got.Tag != "mesa_ab12cd34" {
		t.Fatalf("tag = %s", got.Tag)
	}
	if got.Env["CUDA_VISIBLE_DEVICES"] != "0,1" {
		t.Fatalf("env = %v", got.Env)
	}
	if got.Hyper.Extra["log-dir"] != "/out/x" {
		t.Fatalf("extra = %v", got.Hyper.Extra)
	}

	// Input untouched.
	if e.DataDir != "{{data_root}}/imagenet" || e.Env["CUDA_VISIBLE_DEVICES"] != "{{gpus}}" {
		t.Fatalf("input mutated: %+v", e)
	}
}

func TestMerge_OverrideWins(t *testing.T) {
	base := Vars{"a": "1", "b": "2"}
	over := Vars{"b": "3"}

	out := Merge(base, over)
	if out["a"] != "1" || out["b"] != "3" {
		t.Fatalf("merge = %v", out)
	}
	if base["b"] != "2" {
		t.Fatalf("base mutated: %v", base)
	}
}

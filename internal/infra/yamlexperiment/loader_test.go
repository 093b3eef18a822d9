package yamlexperiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadExperiment_Valid(t *testing.T) {
	tmp := t.TempDir()
	p := write(t, tmp, "tiny-mesa.yaml", `
name: tiny-mesa
model: mamba_vision_T
tag: tiny_mesa_025
variant: perm1
data_dir: "{{data_root}}/imagenet"
hyperparams:
  lr: 0.002
  warmup_lr: 0.00001
  weight_decay: 0.05
  drop_path: 0.2
  mesa: 0.25
  crop_pct: 0.875
  batch_size: 128
  input_size: 224
  amp: true
resources:
  nodes: 1
  gpus_per_node: 4
  cpus_per_task: 32
  memory: 64G
  partition: gpu
  walltime: "48:00:00"
env:
  TORCH_DISTRIBUTED_DEBUG: INFO
`)

	l := NewLoader()
	e, err := l.LoadExperiment(p)
	if err != nil {
		t.Fatalf("LoadExperiment: %v", err)
	}

	if e.Name != "tiny-mesa" {
		t.Fatalf("name = %s", e.Name)
	}
	if e.Variant != domain.VariantPerm1 {
		t.Fatalf("variant = %s", e.Variant)
	}
	if e.Hyper.Mesa == nil || *e.Hyper.Mesa != 0.25 {
		t.Fatalf("mesa = %v", e.Hyper.Mesa)
	}
	if e.Hyper.LR == nil || *e.Hyper.LR != 0.002 {
		t.Fatalf("lr = %v", e.Hyper.LR)
	}
	if !e.Hyper.AMP {
		t.Fatalf("amp should be set")
	}
	if e.Resources.GPUsPerNode != 4 || e.Resources.Memory != "64G" {
		t.Fatalf("resources = %+v", e.Resources)
	}
	if e.Env["TORCH_DISTRIBUTED_DEBUG"] != "INFO" {
		t.Fatalf("env = %v", e.Env)
	}
}

func TestLoadExperiment_OmittedHyperparamsStayNil(t *testing.T) {
	tmp := t.TempDir()
	p := write(t, tmp, "bare.yaml", `
name: bare
model: mamba_vision_T
`)

	e, err := NewLoader().LoadExperiment(p)
	if err != nil {
		t.Fatalf("LoadExperiment: %v", err)
	}

	if e.Hyper.LR != nil || e.Hyper.Mesa != nil || e.Hyper.BatchSize != nil {
		t.Fatalf("expected nil optionals: %+v", e.Hyper)
	}
	if e.Variant != domain.VariantBaseline {
		t.Fatalf("missing variant should default to baseline, got %s", e.Variant)
	}
}

func TestLoadExperiment_UnknownVariant(t *testing.T) {
	tmp := t.TempDir()
	p := write(t, tmp, "bad.yaml", `
name: bad
model: m
variant: resnet
`)

	if _, err := NewLoader().LoadExperiment(p); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadExperiment_MissingName(t *testing.T) {
	tmp := t.TempDir()
	p := write(t, tmp, "bad.yaml", `
model: m
`)

	_, err := NewLoader().LoadExperiment(p)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestLoadExperiment_ExtraFlagWithDashes(t *testing.T) {
	tmp := t.TempDir()
	p := write(t, tmp, "bad.yaml", `
name: bad
model: m
hyperparams:
  extra:
    "--epochs": "300"
`)

	if _, err := NewLoader().LoadExperiment(p); err == nil {
		t.Fatalf("expected error for dashed extra flag")
	}
}

func TestLoadExperiment_NotFound(t *testing.T) {
	_, err := NewLoader().LoadExperiment(filepath.Join(t.TempDir(), "nope.yaml"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestListExperiments(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "experiments")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	write(t, dir, "b.yaml", "name: perm3-big\nmodel: m\n")
	write(t, dir, "a.yaml", "name: attn-small\nmodel: m\n")
	write(t, dir, "notes.txt", "ignored")

	refs, err := NewLoader().ListExperiments(tmp)
	if err != nil {
		t.Fatalf("ListExperiments: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].Name != "attn-small" || refs[1].Name != "perm3-big" {
		t.Fatalf("expected sorted refs, got %v", refs)
	}
}

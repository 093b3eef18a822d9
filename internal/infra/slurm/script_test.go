package slurm

import (
	"strings"
	"testing"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

func fullJob() domain.JobSpec {
	return domain.JobSpec{
		Name:    "tiny_mesa_025",
		Argv:    []string{"torchrun", "--nproc_per_node=4", "/ws/train_perm1.py", "--mesa", "0.25", "--tag", "tiny_mesa_025"},
		Env:     map[string]string{"CUDA_VISIBLE_DEVICES": "0,1,2,3", "TORCH_DISTRIBUTED_DEBUG": "INFO"},
		WorkDir: "/ws",
		LogPath: "logs/tiny_mesa_025_ab12cd34.log",
		Resources: domain.Resources{
			Nodes:       1,
			GPUsPerNode: 4,
			CPUsPerTask: 32,
			Memory:      "64G",
			Partition:   "gpu",
			NodeList:    "node01",
			Walltime:    "48:00:00",
			MailUser:    "user@example.edu",
		},
	}
}

func TestRenderScript_AllDirectives(t *testing.T) {
	script, err := RenderScript(fullJob())
	if err != nil {
		t.Fatalf("RenderScript: %v", err)
	}

	want := []string{
		"#!/bin/bash",
		"#SBATCH --job-name=tiny_mesa_025",
		"#SBATCH --output=logs/tiny_mesa_025_ab12cd34.log",
		"#SBATCH --error=logs/tiny_mesa_025_ab12cd34.log",
		"#SBATCH --nodes=1",
		"#SBATCH --gres=gpu:4",
		"#SBATCH --cpus-per-task=32",
		"#SBATCH --mem=64G",
		"#SBATCH --partition=gpu",
		"#SBATCH --nodelist=node01",
		"#SBATCH --time=48:00:00",
		"#SBATCH --mail-user=user@example.edu",
		"#SBATCH --mail-type=END,FAIL",
		"export CUDA_VISIBLE_DEVICES=0,1,2,3",
		"export TORCH_DISTRIBUTED_DEBUG=INFO",
		"cd /ws",
		"torchrun --nproc_per_node=4 /ws/train_perm1.py --mesa 0.25 --tag tiny_mesa_025",
	}
	for _, w := range want {
		if !strings.Contains(script, w) {
			t.Fatalf("script missing %q:\n%s", w, script)
		}
	}
}

func TestRenderScript_EmptyFieldsEmitNoDirective(t *testing.T) {
	job := domain.JobSpec{
		Name:    "j",
		Argv:    []string{"torchrun", "train.py"},
		LogPath: "logs/j.log",
	}

	script, err := RenderScript(job)
	if err != nil {
		t.Fatalf("RenderScript: %v", err)
	}

	for _, absent := range []string{"--nodes", "--gres", "--cpus-per-task", "--mem", "--partition", "--nodelist", "--time", "--mail-user", "export ", "cd "} {
		if strings.Contains(script, absent) {
			t.Fatalf("script should not contain %q:\n%s", absent, script)
		}
	}
}

func TestRenderScript_QuotesUnsafeValues(t *testing.T) {
	job := domain.JobSpec{
		Name:    "j",
		Argv:    []string{"torchrun", "train.py", "--tag", "has space"},
		Env:     map[string]string{"NOTE": "a b"},
		LogPath: "logs/j.log",
	}

	script, err := RenderScript(job)
	if err != nil {
		t.Fatalf("RenderScript: %v", err)
	}
	if !strings.Contains(script, "'has space'") {
		t.Fatalf("argv not quoted:\n%s", script)
	}
	if !strings.Contains(script, "export NOTE='a b'") {
		t.Fatalf("env not quoted:\n%s", script)
	}
}

func TestJoinCommand(t *testing.T) {
	got := JoinCommand([]string{"python3", "validate.py", "--checkpoint", "/ckpt/best.pth.tar"})
	want := "python3 validate.py --checkpoint /ckpt/best.pth.tar"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

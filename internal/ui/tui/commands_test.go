package tui

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vaijsc/vision-ordering-ssms/internal/infra/yamlexperiment"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeLaunchWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"mvlaunch.yaml": "mvlaunch:\n  defaults:\n    cluster: local\n",
		// The name field deliberately does not match the filename.
		"experiments/foo.yaml": "name: tiny-mesa\nmodel: mamba_vision_T\nvariant: perm1\n",
		"clusters/local.yaml":  "name: local\nscheduler: local\nlauncher: torchrun\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestStartLaunchAsync_LaunchesListedExperimentByPath(t *testing.T) {
	root := writeLaunchWorkspace(t)

	loader := yamlexperiment.NewLoader()
	refs, err := loader.ListExperiments(root)
	if err != nil {
		t.Fatalf("ListExperiments: %v", err)
	}
	if len(refs) != 1 || refs[0].Name != "tiny-mesa" {
		t.Fatalf("unexpected refs: %v", refs)
	}

	_, cmd := startLaunchAsync(root, refs[0].Path, "local", true, discardLogger())

	msg := cmd()
	done, ok := msg.(launchDoneMsg)
	if !ok {
		t.Fatalf("expected launchDoneMsg, got %T", msg)
	}
	if done.err != nil {
		t.Fatalf("dry-run launch of listed experiment failed: %v", done.err)
	}
	if done.outcome.Artifact.ExperimentName != "tiny-mesa" {
		t.Fatalf("artifact experiment = %q", done.outcome.Artifact.ExperimentName)
	}
	if !strings.Contains(done.outcome.Preview, "train_perm1.py") {
		t.Fatalf("preview should carry the variant script, got:\n%s", done.outcome.Preview)
	}
}

package shellrunner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

func testJob(logPath string) domain.JobSpec {
	return domain.JobSpec{
		Name:    "tiny_mesa_025",
		Argv:    []string{"torchrun", "--nproc_per_node=2", "train.py", "--amp"},
		Env:     map[string]string{"CUDA_VISIBLE_DEVICES": "0,1"},
		LogPath: logPath,
	}
}

func TestLaunch_ReturnsPID(t *testing.T) {
	tmp := t.TempDir()
	logPath := filepath.Join(tmp, "logs", "job.log")

	var gotJob domain.JobSpec
	r := New(WithStarter(func(_ context.Context, job domain.JobSpec, logFile *os.File) (int, error) {
		gotJob = job
		if logFile == nil {
			t.Fatalf("expected open log file")
		}
		return 12345, nil
	}))

	res, err := r.Launch(context.Background(), testJob(logPath))
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if res.JobID != "12345" {
		t.Fatalf("job id = %s", res.JobID)
	}
	if gotJob.Argv[0] != "torchrun" {
		t.Fatalf("argv = %v", gotJob.Argv)
	}

	// Log directory must exist after launch.
	if _, err := os.Stat(filepath.Dir(logPath)); err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
}

func TestLaunch_EmptyCommand(t *testing.T) {
	r := New()
	_, err := r.Launch(context.Background(), domain.JobSpec{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestLaunch_StartFailure(t *testing.T) {
	r := New(WithStarter(func(context.Context, domain.JobSpec, *os.File) (int, error) {
		return 0, errors.New("no such binary")
	}))

	_, err := r.Launch(context.Background(), testJob(""))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindLaunch) {
		t.Fatalf("expected launch kind, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	r := New()
	job := testJob("logs/job.log")
	job.WorkDir = "/ws"

	got, err := r.Preview(job)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	want := "export CUDA_VISIBLE_DEVICES=0,1\ncd /ws\ntorchrun --nproc_per_node=2 train.py --amp\n"
	if got != want {
		t.Fatalf("preview:\n%q\nwant:\n%q", got, want)
	}
}

func TestJoinCommand_Quoting(t *testing.T) {
	got := JoinCommand([]string{"python3", "validate.py", "--tag", "two words"})
	if !strings.Contains(got, "'two words'") {
		t.Fatalf("got %q", got)
	}
}

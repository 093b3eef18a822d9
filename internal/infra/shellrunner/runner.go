// Package shellrunner dispatches jobs on the local machine, without a batch
// scheduler. The launched process is detached: mvlaunch submits and exits,
// it does not babysit training.
package shellrunner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
)

// startFunc spawns the job process and returns its PID. Overridable in tests.
type startFunc func(ctx context.Context, job domain.JobSpec, logFile *os.File) (int, error)

type Runner struct {
	start startFunc
}

type Option func(*Runner)

// WithStarter overrides process spawning (useful for tests).
func WithStarter(s startFunc) Option {
	return func(r *Runner) {
		if s != nil {
			r.start = s
		}
	}
}

func New(opts ...Option) *Runner {
	r := &Runner{start: startProcess}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.JobLauncher = (*Runner)(nil)

func (r *Runner) Launch(ctx context.Context, job domain.JobSpec) (domain.LaunchResult, error) {
	if len(job.Argv) == 0 {
		return domain.LaunchResult{}, &domain.OpError{
			Op:   "shellrunner.launch",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("empty command"),
		}
	}

	logFile, err := openLog(job.LogPath)
	if err != nil {
		return domain.LaunchResult{}, err
	}
	// The child owns the descriptor from here; closing our copy is safe
	// whether or not the start succeeded.
	defer logFile.Close()

	pid, err := r.start(ctx, job, logFile)
	if err != nil {
		return domain.LaunchResult{}, &domain.OpError{
			Op:   "shellrunner.launch",
			Kind: domain.KindLaunch,
			Err:  err,
		}
	}

	return domain.LaunchResult{
		JobID:   strconv.Itoa(pid),
		Command: JoinCommand(job.Argv),
	}, nil
}

// Preview renders the command line Launch would run, exports included.
func (r *Runner) Preview(job domain.JobSpec) (string, error) {
	var b strings.Builder

	for _, kv := range sortedEnv(job.Env) {
		b.WriteString("export ")
		b.WriteString(kv)
		b.WriteString("\n")
	}
	if job.WorkDir != "" {
		b.WriteString("cd ")
		b.WriteString(job.WorkDir)
		b.WriteString("\n")
	}
	b.WriteString(JoinCommand(job.Argv))
	b.WriteString("\n")

	return b.String(), nil
}

func startProcess(ctx context.Context, job domain.JobSpec, logFile *os.File) (int, error) {
	cmd := exec.CommandContext(ctx, job.Argv[0], job.Argv[1:]...)
	cmd.Dir = job.WorkDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	env := os.Environ()
	for _, kv := range sortedEnv(job.Env) {
		env = append(env, kv)
	}
	cmd.Env = env

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	// Detach: the training run outlives this process.
	if err := cmd.Process.Release(); err != nil {
		return pid, err
	}
	return pid, nil
}

func openLog(path string) (*os.File, error) {
	if path == "" {
		path = os.DevNull
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &domain.OpError{
				Op:   "shellrunner.logdir",
				Kind: domain.KindLaunch,
				Path: dir,
				Err:  err,
			}
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "shellrunner.logfile",
			Kind: domain.KindLaunch,
			Path: path,
			Err:  err,
		}
	}
	return f, nil
}

// JoinCommand renders argv as a shell-safe single line.
func JoinCommand(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, a := range argv {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func sortedEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"$&|;<>()*?#~`\\") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

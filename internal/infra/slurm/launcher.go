package slurm

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
)

// runFunc executes a scheduler binary with stdin and returns combined output.
// Overridable in tests.
type runFunc func(ctx context.Context, name string, args []string, stdin string) ([]byte, error)

func execRun(ctx context.Context, name string, args []string, stdin string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	return cmd.CombinedOutput()
}

// Launcher submits jobs to SLURM by piping a rendered batch script to sbatch.
type Launcher struct {
	sbatch string
	run    runFunc
}

type LauncherOption func(*Launcher)

// WithSbatchPath overrides the sbatch binary (name or absolute path).
func WithSbatchPath(path string) LauncherOption {
	return func(l *Launcher) { l.sbatch = path }
}

// WithRunner overrides process execution (useful for tests).
func WithRunner(run runFunc) LauncherOption {
	return func(l *Launcher) {
		if run != nil {
			l.run = run
		}
	}
}

func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{
		sbatch: "sbatch",
		run:    execRun,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.JobLauncher = (*Launcher)(nil)

// submittedRe matches sbatch's default confirmation line, with or without
// the "on cluster <name>" suffix.
var submittedRe = regexp.MustCompile(`Submitted batch job (\d+)`)

func (l *Launcher) Launch(ctx context.Context, job domain.JobSpec) (domain.LaunchResult, error) {
	script, err := RenderScript(job)
	if err != nil {
		return domain.LaunchResult{}, err
	}

	out, err := l.run(ctx, l.sbatch, nil, script)
	if err != nil {
		return domain.LaunchResult{}, &domain.OpError{
			Op:   "slurm.submit",
			Kind: domain.KindLaunch,
			Err:  fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))),
		}
	}

	id, err := parseJobID(string(out))
	if err != nil {
		return domain.LaunchResult{}, err
	}

	return domain.LaunchResult{
		JobID:   id,
		Command: JoinCommand(job.Argv),
	}, nil
}

// Preview returns the batch script Launch would submit.
func (l *Launcher) Preview(job domain.JobSpec) (string, error) {
	return RenderScript(job)
}

func parseJobID(out string) (string, error) {
	m := submittedRe.FindStringSubmatch(out)
	if m == nil {
		return "", &domain.OpError{
			Op:   "slurm.submit",
			Kind: domain.KindLaunch,
			Err:  fmt.Errorf("could not find job id in sbatch output: %q", strings.TrimSpace(out)),
		}
	}
	return m[1], nil
}

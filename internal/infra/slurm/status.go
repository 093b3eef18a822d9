package slurm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
)

// Prober queries job state via `squeue --json`. Jobs that already left the
// queue report not_found; callers treat that as "finished or expired".
type Prober struct {
	squeue string
	run    runFunc
}

type ProberOption func(*Prober)

func WithSqueuePath(path string) ProberOption {
	return func(p *Prober) { p.squeue = path }
}

func WithProbeRunner(run runFunc) ProberOption {
	return func(p *Prober) {
		if run != nil {
			p.run = run
		}
	}
}

func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		squeue: "squeue",
		run:    execRun,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ ports.StatusProber = (*Prober)(nil)

// Field locations inside squeue's JSON document. squeue >= 23.02 reports
// job_state as an array of state flags; older releases use a plain string.
const (
	pathState  = "$.jobs[0].job_state"
	pathReason = "$.jobs[0].state_reason"
	pathNodes  = "$.jobs[0].nodes"
)

func (p *Prober) Probe(ctx context.Context, jobID string) (domain.JobStatus, error) {
	if strings.TrimSpace(jobID) == "" {
		return domain.JobStatus{}, &domain.OpError{
			Op:   "slurm.probe",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("empty job id"),
		}
	}

	out, err := p.run(ctx, p.squeue, []string{"--job", jobID, "--json"}, "")
	if err != nil {
		return domain.JobStatus{}, &domain.OpError{
			Op:   "slurm.probe",
			Kind: domain.KindLaunch,
			Err:  fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))),
		}
	}

	var doc any
	if err := json.Unmarshal(out, &doc); err != nil {
		return domain.JobStatus{}, &domain.OpError{
			Op:   "slurm.probe",
			Kind: domain.KindLaunch,
			Err:  fmt.Errorf("squeue produced invalid JSON: %w", err),
		}
	}

	state, err := jsonpath.Get(pathState, doc)
	if err != nil {
		return domain.JobStatus{}, &domain.OpError{
			Op:   "slurm.probe",
			Kind: domain.KindNotFound,
			Err:  fmt.Errorf("job %s not in queue", jobID),
		}
	}

	status := domain.JobStatus{
		JobID: jobID,
		State: flattenState(state),
	}

	if reason, err := jsonpath.Get(pathReason, doc); err == nil {
		status.Reason = asString(reason)
	}
	if nodes, err := jsonpath.Get(pathNodes, doc); err == nil {
		status.Nodes = asString(nodes)
	}

	return status, nil
}

func flattenState(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			parts = append(parts, asString(it))
		}
		return strings.Join(parts, "+")
	default:
		return asString(v)
	}
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

package domain

import "time"

// JobSpec is a fully resolved, launchable job: every placeholder expanded,
// every flag rendered. Adapters consume it verbatim.
type JobSpec struct {
	// Name is the scheduler job name (experiment tag or name).
	Name string
	// Argv is the complete command, launcher included.
	Argv []string
	// Env is exported into the job process.
	Env map[string]string
	// WorkDir, when set, is the working directory for the job.
	WorkDir string
	// LogPath receives combined stdout+stderr of the job.
	LogPath string

	Resources Resources
}

// LaunchResult reports a successful dispatch.
type LaunchResult struct {
	// JobID is the scheduler job id, or the local PID as a string.
	JobID string
	// Command is the dispatched command line, for display and artifacts.
	Command string
}

// JobStatus is a bounded view of scheduler state for one job.
type JobStatus struct {
	JobID  string
	State  string
	Reason string
	Nodes  string
}

// RunKind distinguishes training launches from checkpoint evaluations.
type RunKind string

const (
	RunTrain RunKind = "train"
	RunEval  RunKind = "eval"
)

// CheckResult is the output of a single preflight check.
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// RunArtifact represents a persisted launch for reproducibility.
type RunArtifact struct {
	ID string

	Kind           RunKind
	ExperimentName string
	ExperimentPath string
	ClusterName    string
	Variant        Variant

	JobID   string
	Command []string
	Env     map[string]string
	LogPath string

	Checks []CheckResult

	Resources Resources

	SubmittedAt time.Time
}

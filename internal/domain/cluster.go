package domain

// Vars is a key/value store used for templating and runtime resolution.
type Vars map[string]string

// SchedulerKind selects the dispatch backend for a cluster.
type SchedulerKind string

const (
	SchedulerLocal SchedulerKind = "local"
	SchedulerSlurm SchedulerKind = "slurm"
)

// Cluster defines a runtime context a job can be dispatched to: where the
// training code lives, how to launch it, and which scheduler fronts it.
// Site-local overrides may be merged on top by infrastructure implementations.
type Cluster struct {
	Name      string
	Scheduler SchedulerKind

	// Launcher is the distributed launcher binary (torchrun-style).
	Launcher string
	// Python is the interpreter used for single-process jobs (validation).
	Python string
	// TrainRoot is the directory containing the external training scripts.
	TrainRoot string
	// WorkDir, when set, is the working directory for launched jobs.
	WorkDir string

	Vars Vars
	// Env is exported into every job dispatched to this cluster.
	Env map[string]string
}

// ClusterRef is a lightweight reference to a cluster file on disk.
type ClusterRef struct {
	Name string
	Path string
}

// Get returns a value for the given key and a boolean indicating if it exists.
func Get(vars Vars, key string) (string, bool) {
	if vars == nil {
		return "", false
	}
	val, ok := vars[key]
	return val, ok
}

// Set sets a key/value in the map, initializing it if needed.
func Set(vars Vars, key, value string) Vars {
	if vars == nil {
		vars = Vars{}
	}
	vars[key] = value
	return vars
}

// Merge merges base and override vars (override wins) and returns a new map.
func Merge(base Vars, override Vars) Vars {
	out := Vars{}
	for k, v := range base {
		out = Set(out, k, v)
	}
	for k, v := range override {
		out = Set(out, k, v)
	}
	return out
}

// MergeEnv merges process env maps (override wins) into a new map.
func MergeEnv(base map[string]string, override map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

package domain

// Variant selects which external training entry point an experiment uses.
// Each variant corresponds to a separate training script shipped with the
// model code; the launcher only picks the script, it never inspects it.
type Variant string

const (
	VariantBaseline Variant = "baseline"
	VariantPerm1    Variant = "perm1"
	VariantPerm3    Variant = "perm3"
	VariantOrd11    Variant = "ord1_1"
	VariantCoc      Variant = "coc"
	VariantAttn     Variant = "attn"
)

// Hyperparams are the tunables forwarded to the external trainer as flags.
// Optional values emit no flag when nil so the trainer's own default applies.
type Hyperparams struct {
	LR          *float64
	WarmupLR    *float64
	WeightDecay *float64
	DropPath    *float64
	Mesa        *float64
	CropPct     *float64

	BatchSize *int
	InputSize *int

	// AMP enables mixed-precision training (bare switch, no value).
	AMP bool

	// Extra holds passthrough flags keyed by flag name without the leading
	// dashes. An empty value emits a bare switch.
	Extra map[string]string
}

// Resources is the batch-scheduler allocation request for a job.
// Zero/empty fields emit no directive.
type Resources struct {
	Nodes       int
	GPUsPerNode int
	CPUsPerTask int
	Memory      string // e.g. "64G"
	Partition   string
	NodeList    string
	Walltime    string // scheduler time limit, e.g. "48:00:00"
	MailUser    string
}

// Experiment describes one training configuration: which variant to run,
// against which data, with which hyperparameters and allocation.
type Experiment struct {
	Name    string
	Model   string
	Tag     string
	Variant Variant

	DataDir string
	Resume  string

	Hyper     Hyperparams
	Resources Resources

	// Env is exported into the job process (CUDA_VISIBLE_DEVICES,
	// TORCH_DISTRIBUTED_DEBUG, ...). Values may contain {{var}} placeholders.
	Env map[string]string

	// Vars are default template variables available to this experiment.
	// Cluster vars override them.
	Vars Vars
}

// ExperimentRef is a lightweight reference to an experiment file on disk.
type ExperimentRef struct {
	Name string
	Path string
}

// EvalSpec describes a checkpoint evaluation against the external validator.
type EvalSpec struct {
	Name       string
	Model      string
	Checkpoint string
	DataDir    string

	InputSize *int
	CropPct   *float64
	BatchSize *int

	Resources Resources
	Env       map[string]string
}

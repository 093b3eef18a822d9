package domain

import (
	"fmt"
	"path"
	"sort"
	"strconv"
)

// trainScripts maps a variant to its external training entry point. The
// table is fixed: adding a variant means the model code gained a new
// training script, which is a code change here as it was upstream.
var trainScripts = map[Variant]string{
	VariantBaseline: "train.py",
	VariantPerm1:    "train_perm1.py",
	VariantPerm3:    "train_perm3.py",
	VariantOrd11:    "train_ord1_1.py",
	VariantCoc:      "train_coc.py",
	VariantAttn:     "train_attn.py",
}

// EvalScript is the external checkpoint evaluation entry point.
const EvalScript = "validate.py"

const (
	defaultLauncher = "torchrun"
	defaultPython   = "python3"
)

// ParseVariant validates a variant name. An empty string means baseline.
func ParseVariant(s string) (Variant, error) {
	if s == "" {
		return VariantBaseline, nil
	}
	v := Variant(s)
	if _, ok := trainScripts[v]; !ok {
		return "", fmt.Errorf("unknown variant %q", s)
	}
	return v, nil
}

// TrainScript returns the training entry point for the variant.
func (v Variant) TrainScript() (string, error) {
	s, ok := trainScripts[v]
	if !ok {
		return "", fmt.Errorf("unknown variant %q", v)
	}
	return s, nil
}

// Variants lists the known variants in stable order.
func Variants() []Variant {
	out := make([]Variant, 0, len(trainScripts))
	for v := range trainScripts {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildTrainArgs constructs the flag list for the external trainer.
// Flag order is fixed so rendered commands are reproducible. Unset optional
// hyperparameters emit no flag. --data_dir keeps its underscore: the
// spelling belongs to the trainer's own CLI, not to us.
func BuildTrainArgs(e Experiment) []string {
	var args []string

	if e.Model != "" {
		args = append(args, "--model", e.Model)
	}
	if e.DataDir != "" {
		args = append(args, "--data_dir", e.DataDir)
	}

	args = appendIntFlag(args, "--batch-size", e.Hyper.BatchSize)
	args = appendIntFlag(args, "--input-size", e.Hyper.InputSize)
	args = appendFloatFlag(args, "--crop-pct", e.Hyper.CropPct)
	args = appendFloatFlag(args, "--lr", e.Hyper.LR)
	args = appendFloatFlag(args, "--warmup-lr", e.Hyper.WarmupLR)
	args = appendFloatFlag(args, "--weight-decay", e.Hyper.WeightDecay)
	args = appendFloatFlag(args, "--drop-path", e.Hyper.DropPath)
	args = appendFloatFlag(args, "--mesa", e.Hyper.Mesa)

	if e.Hyper.AMP {
		args = append(args, "--amp")
	}
	if e.Resume != "" {
		args = append(args, "--resume", e.Resume)
	}
	if e.Tag != "" {
		args = append(args, "--tag", e.Tag)
	}

	for _, k := range sortedKeys(e.Hyper.Extra) {
		v := e.Hyper.Extra[k]
		if v == "" {
			args = append(args, "--"+k)
			continue
		}
		args = append(args, "--"+k, v)
	}

	return args
}

// BuildEvalArgs constructs the flag list for the external validator.
func BuildEvalArgs(s EvalSpec) []string {
	var args []string

	if s.Model != "" {
		args = append(args, "--model", s.Model)
	}
	if s.Checkpoint != "" {
		args = append(args, "--checkpoint", s.Checkpoint)
	}
	if s.DataDir != "" {
		args = append(args, "--data_dir", s.DataDir)
	}
	args = appendIntFlag(args, "--input-size", s.InputSize)
	args = appendFloatFlag(args, "--crop-pct", s.CropPct)
	args = appendIntFlag(args, "--batch-size", s.BatchSize)

	return args
}

// BuildTrainArgv assembles the full launcher command for a training job:
// <launcher> --nproc_per_node=G [--nnodes=N] <script> <trainer flags...>
func BuildTrainArgv(c Cluster, e Experiment) ([]string, error) {
	script, err := e.Variant.TrainScript()
	if err != nil {
		return nil, &OpError{Op: "cmdline.train", Kind: KindInvalidConfig, Err: err}
	}

	launcher := c.Launcher
	if launcher == "" {
		launcher = defaultLauncher
	}

	gpus := e.Resources.GPUsPerNode
	if gpus <= 0 {
		gpus = 1
	}

	argv := []string{launcher, fmt.Sprintf("--nproc_per_node=%d", gpus)}
	if e.Resources.Nodes > 1 {
		argv = append(argv, fmt.Sprintf("--nnodes=%d", e.Resources.Nodes))
	}

	argv = append(argv, joinScript(c.TrainRoot, script))
	argv = append(argv, BuildTrainArgs(e)...)
	return argv, nil
}

// BuildEvalArgv assembles the validator command. Validation is a
// single-process job, so it goes through the plain interpreter.
func BuildEvalArgv(c Cluster, s EvalSpec) []string {
	python := c.Python
	if python == "" {
		python = defaultPython
	}

	argv := []string{python, joinScript(c.TrainRoot, EvalScript)}
	argv = append(argv, BuildEvalArgs(s)...)
	return argv
}

func joinScript(root, script string) string {
	if root == "" {
		return script
	}
	return path.Join(root, script)
}

func appendFloatFlag(args []string, flag string, v *float64) []string {
	if v == nil {
		return args
	}
	return append(args, flag, strconv.FormatFloat(*v, 'g', -1, 64))
}

func appendIntFlag(args []string, flag string, v *int) []string {
	if v == nil {
		return args
	}
	return append(args, flag, strconv.Itoa(*v))
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

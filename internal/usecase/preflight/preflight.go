// Package preflight evaluates launch-readiness checks over a resolved
// experiment. Checks never abort each other: every check runs and reports.
package preflight

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

// Options configure which checks run.
type Options struct {
	// Stat probes a path and reports whether it is a directory. Nil disables
	// filesystem checks, e.g. when the data only exists on the cluster side.
	Stat func(path string) (isDir bool, err error)
}

// OSStat is the default Stat implementation for local launches.
func OSStat(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// walltime accepts MM:SS, HH:MM:SS and D-HH:MM:SS scheduler forms.
var walltimeRe = regexp.MustCompile(`^(\d+-)?\d{1,2}:\d{2}(:\d{2})?$`)

// Evaluate runs every applicable check for a training launch.
func Evaluate(e domain.Experiment, opts Options) []domain.CheckResult {
	var out []domain.CheckResult

	out = append(out, checkResources(e.Resources))

	if e.Hyper.BatchSize != nil {
		out = append(out, boundedInt("batch_size", *e.Hyper.BatchSize, 1))
		out = append(out, checkBatchDivisible(*e.Hyper.BatchSize, e.Resources))
	}
	if e.Hyper.InputSize != nil {
		out = append(out, boundedInt("input_size", *e.Hyper.InputSize, 1))
	}
	if e.Hyper.Mesa != nil {
		out = append(out, nonNegative("mesa", *e.Hyper.Mesa))
	}
	if e.Hyper.CropPct != nil {
		out = append(out, unitInterval("crop_pct", *e.Hyper.CropPct, false))
	}
	if e.Hyper.DropPath != nil {
		out = append(out, unitInterval("drop_path", *e.Hyper.DropPath, true))
	}

	if e.Resources.Walltime != "" {
		out = append(out, checkWalltime(e.Resources.Walltime))
	}
	if e.Resources.MailUser != "" {
		out = append(out, checkMailUser(e.Resources.MailUser))
	}

	if opts.Stat != nil {
		if e.DataDir != "" {
			out = append(out, checkDir(opts.Stat, "data_dir", e.DataDir))
		}
		if e.Resume != "" {
			out = append(out, checkFile(opts.Stat, "resume", e.Resume))
		}
	}

	return out
}

// EvaluateEval runs the checks applicable to a checkpoint evaluation.
func EvaluateEval(s domain.EvalSpec, opts Options) []domain.CheckResult {
	var out []domain.CheckResult

	if s.Checkpoint == "" {
		out = append(out, domain.CheckResult{
			Name:    "checkpoint",
			Passed:  false,
			Message: "checkpoint path is required",
		})
	}

	if s.BatchSize != nil {
		out = append(out, boundedInt("batch_size", *s.BatchSize, 1))
	}
	if s.CropPct != nil {
		out = append(out, unitInterval("crop_pct", *s.CropPct, false))
	}

	if opts.Stat != nil {
		if s.Checkpoint != "" {
			out = append(out, checkFile(opts.Stat, "checkpoint", s.Checkpoint))
		}
		if s.DataDir != "" {
			out = append(out, checkDir(opts.Stat, "data_dir", s.DataDir))
		}
	}

	return out
}

// AllPassed reports whether no check failed.
func AllPassed(in []domain.CheckResult) bool {
	for _, c := range in {
		if !c.Passed {
			return false
		}
	}
	return true
}

func checkResources(r domain.Resources) domain.CheckResult {
	if r.Nodes < 0 || r.GPUsPerNode < 0 || r.CPUsPerTask < 0 {
		return domain.CheckResult{
			Name:    "resources",
			Passed:  false,
			Message: "node/gpu/cpu counts must not be negative",
		}
	}
	return domain.CheckResult{
		Name:    "resources",
		Passed:  true,
		Message: fmt.Sprintf("nodes=%d gpus=%d cpus=%d", orOne(r.Nodes), orOne(r.GPUsPerNode), r.CPUsPerTask),
	}
}

// checkBatchDivisible ensures the global batch splits evenly across ranks.
func checkBatchDivisible(batch int, r domain.Resources) domain.CheckResult {
	gpus := orOne(r.Nodes) * orOne(r.GPUsPerNode)
	if batch > 0 && batch%gpus == 0 {
		return domain.CheckResult{
			Name:    "batch_split",
			Passed:  true,
			Message: fmt.Sprintf("%d across %d rank(s)", batch, gpus),
		}
	}
	return domain.CheckResult{
		Name:    "batch_split",
		Passed:  false,
		Message: fmt.Sprintf("batch size %d is not divisible by %d rank(s)", batch, gpus),
	}
}

func checkWalltime(w string) domain.CheckResult {
	if walltimeRe.MatchString(w) {
		return domain.CheckResult{Name: "walltime", Passed: true, Message: w}
	}
	return domain.CheckResult{
		Name:    "walltime",
		Passed:  false,
		Message: fmt.Sprintf("%q is not a valid time limit (expected [D-]HH:MM[:SS])", w),
	}
}

func checkMailUser(m string) domain.CheckResult {
	at := strings.Index(m, "@")
	if at > 0 && at < len(m)-1 {
		return domain.CheckResult{Name: "mail_user", Passed: true, Message: m}
	}
	return domain.CheckResult{
		Name:    "mail_user",
		Passed:  false,
		Message: fmt.Sprintf("%q is not a mail address", m),
	}
}

func checkDir(stat func(string) (bool, error), name, path string) domain.CheckResult {
	isDir, err := stat(path)
	if err != nil {
		return domain.CheckResult{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("%s: %v", path, err),
		}
	}
	if !isDir {
		return domain.CheckResult{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("%s is not a directory", path),
		}
	}
	return domain.CheckResult{Name: name, Passed: true, Message: path}
}

func checkFile(stat func(string) (bool, error), name, path string) domain.CheckResult {
	isDir, err := stat(path)
	if err != nil {
		return domain.CheckResult{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("%s: %v", path, err),
		}
	}
	if isDir {
		return domain.CheckResult{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("%s is a directory, expected a file", path),
		}
	}
	return domain.CheckResult{Name: name, Passed: true, Message: path}
}

func boundedInt(name string, v, min int) domain.CheckResult {
	if v >= min {
		return domain.CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("%d", v)}
	}
	return domain.CheckResult{
		Name:    name,
		Passed:  false,
		Message: fmt.Sprintf("expected >= %d, got %d", min, v),
	}
}

func nonNegative(name string, v float64) domain.CheckResult {
	if v >= 0 {
		return domain.CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("%g", v)}
	}
	return domain.CheckResult{
		Name:    name,
		Passed:  false,
		Message: fmt.Sprintf("expected >= 0, got %g", v),
	}
}

func unitInterval(name string, v float64, zeroOK bool) domain.CheckResult {
	low := v > 0 || (zeroOK && v == 0)
	if low && v <= 1 {
		return domain.CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("%g", v)}
	}
	span := "(0,1]"
	if zeroOK {
		span = "[0,1]"
	}
	return domain.CheckResult{
		Name:    name,
		Passed:  false,
		Message: fmt.Sprintf("expected within %s, got %g", span, v),
	}
}

func orOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VarResolver resolves {{var}} placeholders in paths, tags and env values.
// It supports built-ins: {{$timestamp}} and {{$run_id}}.
//
// This lives in domain because it does not depend on YAML/FS/exec. Only stdlib.
type VarResolver struct {
	now   func() time.Time
	runID func() (string, error)
}

// VarResolverOption configures VarResolver.
type VarResolverOption func(*VarResolver)

// WithNow overrides the clock (useful for tests).
func WithNow(now func() time.Time) VarResolverOption {
	return func(r *VarResolver) { r.now = now }
}

// WithRunID overrides run id generation (useful for tests).
func WithRunID(gen func() (string, error)) VarResolverOption {
	return func(r *VarResolver) { r.runID = gen }
}

func NewVarResolver(opts ...VarResolverOption) *VarResolver {
	r := &VarResolver{
		now:   time.Now,
		runID: newRunID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeResolver caches built-ins for a single resolution session (one
// launch) so repeated {{$run_id}} across fields stays consistent.
type RuntimeResolver struct {
	base     Vars
	builtins Vars
	inner    *VarResolver
}

func (r *VarResolver) NewRuntime(vars Vars) (*RuntimeResolver, error) {
	ts := strconv.FormatInt(r.now().Unix(), 10)

	id, err := r.runID()
	if err != nil {
		return nil, &OpError{
			Op:   "vars.builtins.run_id",
			Kind: KindLaunch,
			Err:  err,
		}
	}

	baseCopy := Vars{}
	for k, v := range vars {
		baseCopy[k] = v
	}

	return &RuntimeResolver{
		base: baseCopy,
		builtins: Vars{
			"$timestamp": ts,
			"$run_id":    id,
		},
		inner: r,
	}, nil
}

// RunID returns the session's {{$run_id}} builtin.
func (rr *RuntimeResolver) RunID() string {
	return rr.builtins["$run_id"]
}

// ResolveString resolves placeholders in a string.
func (rr *RuntimeResolver) ResolveString(s string) (string, error) {
	return rr.inner.resolveStringWith(rr.base, rr.builtins, s)
}

// ResolveEnv resolves placeholders in env values (keys are left untouched).
func (rr *RuntimeResolver) ResolveEnv(env map[string]string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range env {
		rv, err := rr.ResolveString(v)
		if err != nil {
			return nil, wrapField(err, "env."+k)
		}
		out[k] = rv
	}
	return out, nil
}

// ResolveExperiment resolves placeholders in every templated field of an
// experiment. It returns a copy (does not mutate input).
func (rr *RuntimeResolver) ResolveExperiment(e Experiment) (Experiment, error) {
	out := e

	dataDir, err := rr.ResolveString(e.DataDir)
	if err != nil {
		return Experiment{}, wrapField(err, "experiment.data_dir")
	}
	out.DataDir = dataDir

	resume, err := rr.ResolveString(e.Resume)
	if err != nil {
		return Experiment{}, wrapField(err, "experiment.resume")
	}
	out.Resume = resume

	tag, err := rr.ResolveString(e.Tag)
	if err != nil {
		return Experiment{}, wrapField(err, "experiment.tag")
	}
	out.Tag = tag

	env, err := rr.ResolveEnv(e.Env)
	if err != nil {
		return Experiment{}, err
	}
	out.Env = env

	if e.Hyper.Extra != nil {
		extra := map[string]string{}
		for k, v := range e.Hyper.Extra {
			rv, rerr := rr.ResolveString(v)
			if rerr != nil {
				return Experiment{}, wrapField(rerr, "experiment.extra."+k)
			}
			extra[k] = rv
		}
		out.Hyper.Extra = extra
	}

	return out, nil
}

// ResolveEvalSpec resolves placeholders in an eval spec. Returns a copy.
func (rr *RuntimeResolver) ResolveEvalSpec(s EvalSpec) (EvalSpec, error) {
	out := s

	ckpt, err := rr.ResolveString(s.Checkpoint)
	if err != nil {
		return EvalSpec{}, wrapField(err, "eval.checkpoint")
	}
	out.Checkpoint = ckpt

	dataDir, err := rr.ResolveString(s.DataDir)
	if err != nil {
		return EvalSpec{}, wrapField(err, "eval.data_dir")
	}
	out.DataDir = dataDir

	env, err := rr.ResolveEnv(s.Env)
	if err != nil {
		return EvalSpec{}, err
	}
	out.Env = env

	return out, nil
}

func (r *VarResolver) resolveStringWith(vars Vars, builtins Vars, s string) (string, error) {
	// Fast path: no token start.
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); {
		if i+1 < len(s) && s[i] == '{' && s[i+1] == '{' {
			start := i + 2

			end := strings.Index(s[start:], "}}")
			if end < 0 {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("unclosed placeholder"),
				}
			}
			end = start + end

			name := strings.TrimSpace(s[start:end])
			if name == "" {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("empty placeholder"),
				}
			}

			val, ok := builtins[name]
			if !ok {
				val, ok = Get(vars, name)
			}
			if !ok {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindMissingVar,
					Err:  fmt.Errorf("missing variable: %s", name),
				}
			}

			b.WriteString(val)
			i = end + 2
			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String(), nil
}

func wrapField(err error, field string) error {
	return &OpError{
		Op:   "vars.resolve",
		Kind: kindFrom(err),
		Err:  fmt.Errorf("%s: %w", field, err),
	}
}

func kindFrom(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindLaunch
}

// newRunID generates a short random id safe for filenames and job tags.
func newRunID() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

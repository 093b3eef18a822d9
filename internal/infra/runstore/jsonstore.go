package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
)

const defaultRunsDir = "runs"
const maskValue = "********"

// JSONStore persists one JSON artifact per launch under runs/.
type JSONStore struct {
	rootDir        string
	runsDirName    string
	maskingEnabled bool
	writeIndex     bool
	now            func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	runsDir := cfg.Paths.RunsDir
	if strings.TrimSpace(runsDir) == "" {
		runsDir = defaultRunsDir
	}

	s := &JSONStore{
		rootDir:        root,
		runsDirName:    runsDir,
		maskingEnabled: cfg.Masking.Enabled,
		writeIndex:     false,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ArtifactStore = (*JSONStore)(nil)

func (s *JSONStore) SaveRun(run domain.RunArtifact) (string, error) {
	dir := filepath.Join(s.rootDir, s.runsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindLaunch,
			Path: dir,
			Err:  err,
		}
	}

	ts := run.SubmittedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := run
	if toSave.SubmittedAt.IsZero() {
		toSave.SubmittedAt = ts
	}

	namePart := run.ExperimentName
	if strings.TrimSpace(namePart) == "" {
		namePart = strings.TrimSuffix(filepath.Base(run.ExperimentPath), filepath.Ext(run.ExperimentPath))
	}
	slug := slugify(namePart)
	if slug == "" {
		slug = "run"
	}
	if run.Kind == domain.RunEval {
		slug += "-eval"
	}

	filename := fmt.Sprintf("%s_%s.json", ts.Format("20060102T150405Z"), slug)
	id := strings.TrimSuffix(filename, ".json")
	path := filepath.Join(dir, filename)

	toSave.ID = id
	if s.maskingEnabled {
		toSave = maskArtifact(toSave)
	}

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindLaunch,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindLaunch,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindLaunch,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, id, filename, run)
	}

	return id, nil
}

// ListRuns loads every artifact under runs/, newest first.
func (s *JSONStore) ListRuns() ([]domain.RunArtifact, error) {
	dir := filepath.Join(s.rootDir, s.runsDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.OpError{
			Op:   "runstore.list",
			Kind: domain.KindLaunch,
			Path: dir,
			Err:  err,
		}
	}

	var out []domain.RunArtifact
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		b, readErr := os.ReadFile(filepath.Join(dir, e.Name()))
		if readErr != nil {
			continue
		}
		var run domain.RunArtifact
		if json.Unmarshal(b, &run) != nil {
			// Skip foreign files; the runs dir is user-visible.
			continue
		}
		out = append(out, run)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (s *JSONStore) appendIndex(dir, id, filename string, run domain.RunArtifact) error {
	type idx struct {
		ID          string    `json:"id"`
		File        string    `json:"file"`
		Kind        string    `json:"kind"`
		Experiment  string    `json:"experiment"`
		Cluster     string    `json:"cluster"`
		JobID       string    `json:"job_id"`
		SubmittedAt time.Time `json:"submitted_at"`
	}
	line, err := json.Marshal(idx{
		ID:          id,
		File:        filename,
		Kind:        string(run.Kind),
		Experiment:  run.ExperimentName,
		Cluster:     run.ClusterName,
		JobID:       run.JobID,
		SubmittedAt: run.SubmittedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

// maskArtifact returns a masked copy (does NOT mutate the input).
func maskArtifact(run domain.RunArtifact) domain.RunArtifact {
	out := run

	out.Env = make(map[string]string, len(run.Env))
	for k, v := range run.Env {
		if isSensitiveKey(k) {
			out.Env[k] = maskValue
			continue
		}
		out.Env[k] = v
	}

	// Masked env values may also appear inline in the command.
	if len(run.Command) > 0 {
		cmd := make([]string, len(run.Command))
		copy(cmd, run.Command)
		for k, v := range run.Env {
			if !isSensitiveKey(k) || v == "" {
				continue
			}
			for i := range cmd {
				cmd[i] = strings.ReplaceAll(cmd[i], v, maskValue)
			}
		}
		out.Command = cmd
	}

	return out
}

func isSensitiveKey(k string) bool {
	kk := strings.ToLower(k)
	return strings.Contains(kk, "token") ||
		strings.Contains(kk, "secret") ||
		strings.Contains(kk, "password") ||
		strings.Contains(kk, "api_key") ||
		strings.Contains(kk, "apikey")
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}

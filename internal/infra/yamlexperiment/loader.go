package yamlexperiment

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
)

type Loader struct {
	experimentsDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{experimentsDir: "experiments"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithExperimentsDir(dir string) Option {
	return func(l *Loader) { l.experimentsDir = dir }
}

var _ ports.ExperimentLoader = (*Loader)(nil)

func (l *Loader) LoadExperiment(path string) (domain.Experiment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Experiment{}, &domain.OpError{
			Op:   "yamlexperiment.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var ye yamlExperiment
	if err := yaml.Unmarshal(b, &ye); err != nil {
		return domain.Experiment{}, &domain.OpError{
			Op:   "yamlexperiment.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return mapAndValidate(path, ye)
}

func (l *Loader) ListExperiments(root string) ([]domain.ExperimentRef, error) {
	dir := filepath.Join(root, l.experimentsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlexperiment.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.ExperimentRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readExperimentName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.ExperimentRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func readExperimentName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}

type yamlExperiment struct {
	Name    string `yaml:"name"`
	Model   string `yaml:"model"`
	Tag     string `yaml:"tag"`
	Variant string `yaml:"variant"`

	DataDir string `yaml:"data_dir"`
	Resume  string `yaml:"resume"`

	Hyper     yamlHyperparams   `yaml:"hyperparams"`
	Resources yamlResources     `yaml:"resources"`
	Env       map[string]string `yaml:"env"`
	Vars      map[string]string `yaml:"vars"`
}

type yamlHyperparams struct {
	LR          *float64 `yaml:"lr"`
	WarmupLR    *float64 `yaml:"warmup_lr"`
	WeightDecay *float64 `yaml:"weight_decay"`
	DropPath    *float64 `yaml:"drop_path"`
	Mesa        *float64 `yaml:"mesa"`
	CropPct     *float64 `yaml:"crop_pct"`

	BatchSize *int `yaml:"batch_size"`
	InputSize *int `yaml:"input_size"`

	AMP bool `yaml:"amp"`

	Extra map[string]string `yaml:"extra"`
}

type yamlResources struct {
	Nodes       int    `yaml:"nodes"`
	GPUsPerNode int    `yaml:"gpus_per_node"`
	CPUsPerTask int    `yaml:"cpus_per_task"`
	Memory      string `yaml:"memory"`
	Partition   string `yaml:"partition"`
	NodeList    string `yaml:"nodelist"`
	Walltime    string `yaml:"walltime"`
	MailUser    string `yaml:"mail_user"`
}

func mapAndValidate(path string, ye yamlExperiment) (domain.Experiment, error) {
	if strings.TrimSpace(ye.Name) == "" {
		return domain.Experiment{}, invalidField(path, "name", "experiment name is required")
	}
	if strings.TrimSpace(ye.Model) == "" {
		return domain.Experiment{}, invalidField(path, "model", "model name is required")
	}

	variant, err := domain.ParseVariant(strings.TrimSpace(ye.Variant))
	if err != nil {
		return domain.Experiment{}, invalidField(path, "variant", err.Error())
	}

	exp := domain.Experiment{
		Name:    ye.Name,
		Model:   ye.Model,
		Tag:     ye.Tag,
		Variant: variant,
		DataDir: ye.DataDir,
		Resume:  ye.Resume,
		Hyper: domain.Hyperparams{
			LR:          ye.Hyper.LR,
			WarmupLR:    ye.Hyper.WarmupLR,
			WeightDecay: ye.Hyper.WeightDecay,
			DropPath:    ye.Hyper.DropPath,
			Mesa:        ye.Hyper.Mesa,
			CropPct:     ye.Hyper.CropPct,
			BatchSize:   ye.Hyper.BatchSize,
			InputSize:   ye.Hyper.InputSize,
			AMP:         ye.Hyper.AMP,
			Extra:       ye.Hyper.Extra,
		},
		Resources: domain.Resources{
			Nodes:       ye.Resources.Nodes,
			GPUsPerNode: ye.Resources.GPUsPerNode,
			CPUsPerTask: ye.Resources.CPUsPerTask,
			Memory:      ye.Resources.Memory,
			Partition:   ye.Resources.Partition,
			NodeList:    ye.Resources.NodeList,
			Walltime:    ye.Resources.Walltime,
			MailUser:    ye.Resources.MailUser,
		},
		Env:  ye.Env,
		Vars: domain.Vars(ye.Vars),
	}

	if exp.Env == nil {
		exp.Env = map[string]string{}
	}
	if exp.Vars == nil {
		exp.Vars = domain.Vars{}
	}
	if exp.Hyper.Extra == nil {
		exp.Hyper.Extra = map[string]string{}
	}

	for k := range exp.Hyper.Extra {
		if strings.TrimSpace(k) == "" {
			return domain.Experiment{}, invalidField(path, "hyperparams.extra", "empty flag name")
		}
		if strings.HasPrefix(k, "-") {
			return domain.Experiment{}, invalidField(path, "hyperparams.extra",
				fmt.Sprintf("flag %q must be written without leading dashes", k))
		}
	}

	return exp, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlexperiment.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s", field, msg),
	}
}

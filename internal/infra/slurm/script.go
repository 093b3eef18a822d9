package slurm

import (
	"sort"
	"strings"
	"text/template"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

// scriptTmpl is the sbatch script for one job. Empty resource fields emit no
// directive so the cluster's partition defaults apply.
const scriptTmpl = `#!/bin/bash
#SBATCH --job-name={{.Name}}
#SBATCH --output={{.LogPath}}
#SBATCH --error={{.LogPath}}
{{- if .Nodes}}
#SBATCH --nodes={{.Nodes}}
{{- end}}
{{- if .GPUs}}
#SBATCH --gres=gpu:{{.GPUs}}
{{- end}}
{{- if .CPUs}}
#SBATCH --cpus-per-task={{.CPUs}}
{{- end}}
{{- if .Memory}}
#SBATCH --mem={{.Memory}}
{{- end}}
{{- if .Partition}}
#SBATCH --partition={{.Partition}}
{{- end}}
{{- if .NodeList}}
#SBATCH --nodelist={{.NodeList}}
{{- end}}
{{- if .Walltime}}
#SBATCH --time={{.Walltime}}
{{- end}}
{{- if .MailUser}}
#SBATCH --mail-user={{.MailUser}}
#SBATCH --mail-type=END,FAIL
{{- end}}
{{range .Exports}}
export {{.}}
{{- end}}
{{if .WorkDir}}
cd {{.WorkDir}}
{{end}}
{{.Command}}
`

var compiledScript = template.Must(template.New("sbatch").Parse(scriptTmpl))

type scriptView struct {
	Name    string
	LogPath string

	Nodes     int
	GPUs      int
	CPUs      int
	Memory    string
	Partition string
	NodeList  string
	Walltime  string
	MailUser  string

	Exports []string
	WorkDir string
	Command string
}

// RenderScript produces the sbatch script for a job.
func RenderScript(job domain.JobSpec) (string, error) {
	v := scriptView{
		Name:      job.Name,
		LogPath:   job.LogPath,
		Nodes:     job.Resources.Nodes,
		GPUs:      job.Resources.GPUsPerNode,
		CPUs:      job.Resources.CPUsPerTask,
		Memory:    job.Resources.Memory,
		Partition: job.Resources.Partition,
		NodeList:  job.Resources.NodeList,
		Walltime:  job.Resources.Walltime,
		MailUser:  job.Resources.MailUser,
		Exports:   renderExports(job.Env),
		WorkDir:   shellQuote(job.WorkDir),
		Command:   JoinCommand(job.Argv),
	}
	if v.WorkDir == "''" {
		v.WorkDir = ""
	}

	var b strings.Builder
	if err := compiledScript.Execute(&b, v); err != nil {
		return "", &domain.OpError{
			Op:   "slurm.render",
			Kind: domain.KindLaunch,
			Err:  err,
		}
	}
	return b.String(), nil
}

// JoinCommand renders argv as a shell-safe single line.
func JoinCommand(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, a := range argv {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

func renderExports(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+shellQuote(env[k]))
	}
	return out
}

// shellQuote single-quotes a value unless it is plainly safe.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if isShellSafe(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case strings.ContainsRune("_-./=:,@%+", r):
		default:
			return false
		}
	}
	return true
}

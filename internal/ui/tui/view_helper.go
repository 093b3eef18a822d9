package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/usecase"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func renderExperimentList(t Theme, refs []domain.ExperimentRef) string {
	var b strings.Builder
	b.WriteString(t.Title.Render("Experiments"))
	b.WriteString("\n\n")

	if len(refs) == 0 {
		b.WriteString("(no experiments found)")
		return b.String()
	}
	for _, r := range refs {
		b.WriteString("  - ")
		b.WriteString(r.Name)
		b.WriteString("\n    ")
		b.WriteString(t.Subtitle.Render(r.Path))
		b.WriteString("\n")
	}
	return b.String()
}

func renderClusterList(t Theme, refs []domain.ClusterRef) string {
	var b strings.Builder
	b.WriteString(t.Title.Render("Clusters"))
	b.WriteString("\n\n")

	if len(refs) == 0 {
		b.WriteString("(no clusters found)")
		return b.String()
	}
	for _, r := range refs {
		b.WriteString("  - ")
		b.WriteString(r.Name)
		b.WriteString("\n    ")
		b.WriteString(t.Subtitle.Render(r.Path))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRunList(t Theme, runs []domain.RunArtifact) string {
	var b strings.Builder
	b.WriteString(t.Title.Render("Runs"))
	b.WriteString("\n\n")

	if len(runs) == 0 {
		b.WriteString("(no runs found)")
		return b.String()
	}
	for _, r := range runs {
		b.WriteString("  - ")
		b.WriteString(r.ID)
		b.WriteString("  [")
		b.WriteString(string(r.Kind))
		b.WriteString("] ")
		b.WriteString(r.ExperimentName)
		b.WriteString(" @ ")
		b.WriteString(r.ClusterName)
		if r.JobID != "" {
			b.WriteString("  job=")
			b.WriteString(r.JobID)
		}
		if !r.SubmittedAt.IsZero() {
			b.WriteString("  ")
			b.WriteString(r.SubmittedAt.Format(time.RFC3339))
		}
		b.WriteString("\n")
		if len(r.Command) > 0 {
			b.WriteString("    ")
			b.WriteString(t.Subtitle.Render(clampString(strings.Join(r.Command, " "), 100)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderOutcome(t Theme, out usecase.LaunchOutcome) string {
	var b strings.Builder
	a := out.Artifact

	b.WriteString(t.Title.Render("Launch result"))
	b.WriteString("\n\n")

	b.WriteString("Experiment: " + a.ExperimentName + "\n")
	b.WriteString("Variant:    " + string(a.Variant) + "\n")
	b.WriteString("Cluster:    " + a.ClusterName + "\n")
	if a.JobID != "" {
		b.WriteString("Job ID:     " + a.JobID + "\n")
	}
	if a.LogPath != "" {
		b.WriteString("Log:        " + a.LogPath + "\n")
	}
	if out.StoreID != "" {
		b.WriteString("Run ID:     " + out.StoreID + "\n")
	}

	if len(a.Checks) > 0 {
		b.WriteString("\nChecks:\n")
		for _, c := range a.Checks {
			status := "FAIL"
			if c.Passed {
				status = "PASS"
			}
			b.WriteString("  - ")
			b.WriteString(c.Name)
			b.WriteString(" [")
			b.WriteString(status)
			b.WriteString("] ")
			b.WriteString(c.Message)
			b.WriteString("\n")
		}
	}

	if out.Preview != "" {
		b.WriteString("\n--- preview ---\n")
		b.WriteString(out.Preview)
		if !strings.HasSuffix(out.Preview, "\n") {
			b.WriteString("\n")
		}
	} else if len(a.Command) > 0 {
		b.WriteString("\nCommand: ")
		b.WriteString(strings.Join(a.Command, " "))
		b.WriteString("\n")
	}

	return b.String()
}

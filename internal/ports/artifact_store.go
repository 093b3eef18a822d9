package ports

import "github.com/vaijsc/vision-ordering-ssms/internal/domain"

// ArtifactStore persists run artifacts for reproducibility.
type ArtifactStore interface {
	SaveRun(run domain.RunArtifact) (id string, err error)
	ListRuns() ([]domain.RunArtifact, error)
}

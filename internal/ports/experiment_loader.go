package ports

import "github.com/vaijsc/vision-ordering-ssms/internal/domain"

// ExperimentLoader loads experiments from a source (e.g., filesystem).
type ExperimentLoader interface {
	LoadExperiment(path string) (domain.Experiment, error)
	ListExperiments(root string) ([]domain.ExperimentRef, error)
}

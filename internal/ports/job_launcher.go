package ports

import (
	"context"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

// JobLauncher dispatches a fully resolved job to a backend (local shell or
// batch scheduler).
type JobLauncher interface {
	// Launch submits the job and returns its id without waiting for it.
	Launch(ctx context.Context, job domain.JobSpec) (domain.LaunchResult, error)

	// Preview renders what Launch would dispatch (command line or batch
	// script) without submitting anything.
	Preview(job domain.JobSpec) (string, error)
}

package ports

import (
	"context"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
)

// StatusProber queries the scheduler for the state of a submitted job.
type StatusProber interface {
	Probe(ctx context.Context, jobID string) (domain.JobStatus, error)
}

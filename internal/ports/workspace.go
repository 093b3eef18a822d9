package ports

import "github.com/vaijsc/vision-ordering-ssms/internal/domain"

// WorkspaceInitializer scaffolds a new workspace on disk.
type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}

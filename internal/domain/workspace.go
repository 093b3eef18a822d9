package domain

// WorkspaceSpec describes a workspace to scaffold on disk.
type WorkspaceSpec struct {
	Root string
}

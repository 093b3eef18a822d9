package tui

import (
	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/usecase"
)

type workspaceRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type experimentsLoadedMsg struct {
	root string
	refs []domain.ExperimentRef
	err  error
}

type clustersLoadedMsg struct {
	root string
	refs []domain.ClusterRef
	err  error
}

type runsLoadedMsg struct {
	root string
	runs []domain.RunArtifact
	err  error
}

type launchDoneMsg struct {
	outcome usecase.LaunchOutcome
	err     error
}

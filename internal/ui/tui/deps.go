package tui

import (
	"log/slog"

	"github.com/vaijsc/vision-ordering-ssms/internal/ports"
)

type Deps struct {
	WorkspaceLocator     ports.WorkspaceLocator
	WorkspaceInitializer ports.WorkspaceInitializer

	Logger *slog.Logger
	Debug  bool
}

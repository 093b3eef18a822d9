package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vaijsc/vision-ordering-ssms/internal/buildinfo"
)

// crashNotice points at the log file the root command always sets up.
const crashNotice = "mvlaunch hit an unexpected error — details in .mvlaunch/logs/mvlaunch.log"

// safeModel keeps a wizard or render panic from killing the terminal: the
// crash is logged with build info and the UI lands back on the home screen.
type safeModel struct {
	m   model
	log *slog.Logger
}

func wrapSafe(m model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{m: m, log: log}
}

// resetAfterPanic drops any half-finished wizard state or in-flight launch
// so the home screen is usable again.
func (m model) resetAfterPanic() model {
	m.scr = screenHome
	m.wizardStep = 0
	m.running = false
	m.launchCh = nil
	m.toast = crashNotice
	return m
}

func (s safeModel) Init() tea.Cmd {
	return s.m.Init()
}

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic.recovered",
				"where", "tui.update",
				"build", buildinfo.String(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)

			s.m = s.m.resetAfterPanic()
			tm = s
			cmd = nil
		}
	}()

	inner, c := s.m.Update(msg)

	if mm, ok := inner.(model); ok {
		s.m = mm
	} else if sm, ok := inner.(safeModel); ok {
		s = sm
	}

	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic.recovered",
				"where", "tui.view",
				"build", buildinfo.String(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			out = crashNotice
		}
	}()
	return s.m.View()
}

var _ tea.Model = (*safeModel)(nil)

package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vaijsc/vision-ordering-ssms/internal/domain"
	"github.com/vaijsc/vision-ordering-ssms/internal/usecase"
)

type screen int

const (
	screenHome screen = iota
	screenExperiments
	screenClusters
	screenRuns
	screenLaunchWizard
	screenLaunchResult
)

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type model struct {
	theme Theme
	deps  Deps

	scr  screen
	menu list.Model

	workspaceFound bool
	workspaceRoot  string

	experiments []domain.ExperimentRef
	clusters    []domain.ClusterRef
	runs        []domain.RunArtifact

	// launch wizard state
	wizardStep  int // 0 pick experiment, 1 pick cluster, 2 confirm
	pickExp     int
	pickCluster int
	dryRun      bool
	running     bool
	launchOut   usecase.LaunchOutcome

	toast string

	launchCh chan launchDoneMsg
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	t := DefaultTheme()

	items := []list.Item{
		menuItem{"Launch", "Pick an experiment and a cluster, then submit"},
		menuItem{"Experiments", "Browse experiment definitions"},
		menuItem{"Clusters", "Browse cluster definitions"},
		menuItem{"Runs", "Inspect saved launches"},
		menuItem{"Init Workspace", "Scaffold mvlaunch.yaml, experiments/ and clusters/ here"},
		menuItem{"Quit", "Exit mvlaunch"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "mvlaunch"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	m := model{
		theme:  t,
		deps:   deps,
		scr:    screenHome,
		menu:   l,
		dryRun: true,
	}

	wd, err := os.Getwd()
	if err == nil && deps.WorkspaceLocator != nil {
		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr == nil {
			m.workspaceFound = true
			m.workspaceRoot = root
		}
	}

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := msg.Width, msg.Height
		m.menu.SetSize(w-4, h-10)
		return m, nil

	case workspaceRefreshedMsg:
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		if msg.err != nil && !msg.found {
			m.toast = userMessage(msg.err)
		}
		return m, nil

	case initWorkspaceDoneMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Workspace initialized"
		return m, cmdRefreshWorkspace(m.deps)

	case experimentsLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.experiments = msg.refs
		return m, nil

	case clustersLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.clusters = msg.refs
		return m, nil

	case runsLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.runs = msg.runs
		return m, nil

	case launchDoneMsg:
		m.running = false
		m.launchCh = nil
		m.launchOut = msg.outcome
		m.scr = screenLaunchResult
		if msg.err != nil {
			m.toast = userMessage(msg.err)
		} else {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.scr == screenHome {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if m.scr == screenHome && m.menu.FilterState() != list.Filtering {
			return m, tea.Quit
		}

	case "esc", "b":
		if m.scr != screenHome && !m.running {
			if m.scr == screenLaunchWizard && m.wizardStep > 0 {
				m.wizardStep--
				return m, nil
			}
			m.scr = screenHome
			m.wizardStep = 0
			m.toast = ""
			return m, nil
		}
	}

	switch m.scr {
	case screenHome:
		if key == "enter" {
			it, ok := m.menu.SelectedItem().(menuItem)
			if !ok {
				return m, nil
			}
			return m.openMenuItem(it)
		}

	case screenLaunchWizard:
		return m.handleWizardKey(key)
	}

	if m.scr == screenHome {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) openMenuItem(it menuItem) (tea.Model, tea.Cmd) {
	switch {
	case strings.EqualFold(it.title, "Quit"):
		return m, tea.Quit

	case strings.EqualFold(it.title, "Init Workspace"):
		wd, err := os.Getwd()
		if err != nil {
			m.toast = "Unexpected error (see logs)"
			return m, nil
		}
		return m, cmdInitWorkspaceHere(m.deps, wd)

	case strings.EqualFold(it.title, "Experiments"):
		if !m.workspaceFound {
			m.toast = "Workspace not found"
			return m, nil
		}
		m.scr = screenExperiments
		return m, cmdLoadExperiments(m.workspaceRoot)

	case strings.EqualFold(it.title, "Clusters"):
		if !m.workspaceFound {
			m.toast = "Workspace not found"
			return m, nil
		}
		m.scr = screenClusters
		return m, cmdLoadClusters(m.workspaceRoot)

	case strings.EqualFold(it.title, "Runs"):
		if !m.workspaceFound {
			m.toast = "Workspace not found"
			return m, nil
		}
		m.scr = screenRuns
		return m, cmdLoadRuns(m.workspaceRoot)

	case strings.EqualFold(it.title, "Launch"):
		if !m.workspaceFound {
			m.toast = "Workspace not found"
			return m, nil
		}
		m.scr = screenLaunchWizard
		m.wizardStep = 0
		m.pickExp = 0
		m.pickCluster = 0
		return m, tea.Batch(cmdLoadExperiments(m.workspaceRoot), cmdLoadClusters(m.workspaceRoot))
	}

	return m, nil
}

func (m model) handleWizardKey(key string) (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}

	switch key {
	case "up", "k":
		switch m.wizardStep {
		case 0:
			if m.pickExp > 0 {
				m.pickExp--
			}
		case 1:
			if m.pickCluster > 0 {
				m.pickCluster--
			}
		}

	case "down", "j":
		switch m.wizardStep {
		case 0:
			if m.pickExp < len(m.experiments)-1 {
				m.pickExp++
			}
		case 1:
			if m.pickCluster < len(m.clusters)-1 {
				m.pickCluster++
			}
		}

	case "d":
		if m.wizardStep == 2 {
			m.dryRun = !m.dryRun
		}

	case "enter":
		switch m.wizardStep {
		case 0:
			if len(m.experiments) == 0 {
				m.toast = "No experiments found"
				return m, nil
			}
			m.wizardStep = 1
		case 1:
			if len(m.clusters) == 0 {
				m.toast = "No clusters found"
				return m, nil
			}
			m.wizardStep = 2
		case 2:
			expPath := m.experiments[m.pickExp].Path
			cluster := m.clusters[m.pickCluster].Name
			m.running = true
			ch, cmd := startLaunchAsync(m.workspaceRoot, expPath, cluster, m.dryRun, m.deps.Logger)
			m.launchCh = ch
			return m, cmd
		}
	}

	return m, nil
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("mvlaunch") + "\n" +
		m.theme.Subtitle.Render("Dispatch MambaVision training runs — torchrun locally, sbatch on SLURM") + "\n"

	var workspaceBanner string
	if m.workspaceFound {
		workspaceBanner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.workspaceRoot))
	} else {
		workspaceBanner = m.theme.Card.Render(
			"⚠ No workspace found.\n\nUse Init Workspace to scaffold one here.",
		)
	}

	var toast string
	if m.toast != "" {
		toast = "\n" + m.theme.Subtitle.Render(m.toast)
	}

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + m.theme.Card.Render(m.menu.View()) + "\n" + help)

	case screenExperiments:
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" +
			m.theme.Card.Render(renderExperimentList(m.theme, m.experiments)) + "\n" +
			m.theme.Help.Render("esc/b back"))

	case screenClusters:
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" +
			m.theme.Card.Render(renderClusterList(m.theme, m.clusters)) + "\n" +
			m.theme.Help.Render("esc/b back"))

	case screenRuns:
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" +
			m.theme.Card.Render(renderRunList(m.theme, m.runs)) + "\n" +
			m.theme.Help.Render("esc/b back"))

	case screenLaunchWizard:
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" +
			m.theme.Card.Render(m.renderWizard()) + "\n" +
			m.theme.Help.Render("↑/↓ pick • enter next • d toggle dry-run • esc back"))

	case screenLaunchResult:
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" +
			m.theme.Card.Render(renderOutcome(m.theme, m.launchOut)) + "\n" +
			m.theme.Help.Render("esc/b home"))

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}

func (m model) renderWizard() string {
	var b strings.Builder

	switch m.wizardStep {
	case 0:
		b.WriteString(m.theme.Title.Render("Pick an experiment"))
		b.WriteString("\n\n")
		if len(m.experiments) == 0 {
			b.WriteString("(loading…)")
			break
		}
		for i, r := range m.experiments {
			cursor := "  "
			if i == m.pickExp {
				cursor = "> "
			}
			b.WriteString(cursor + r.Name + "\n")
		}

	case 1:
		b.WriteString(m.theme.Title.Render("Pick a cluster"))
		b.WriteString("\n\n")
		if len(m.clusters) == 0 {
			b.WriteString("(loading…)")
			break
		}
		for i, r := range m.clusters {
			cursor := "  "
			if i == m.pickCluster {
				cursor = "> "
			}
			b.WriteString(cursor + r.Name + "\n")
		}

	case 2:
		b.WriteString(m.theme.Title.Render("Confirm launch"))
		b.WriteString("\n\n")
		b.WriteString("Experiment: " + m.experiments[m.pickExp].Name + "\n")
		b.WriteString("Cluster:    " + m.clusters[m.pickCluster].Name + "\n")
		mode := "submit"
		if m.dryRun {
			mode = "dry-run (preview only)"
		}
		b.WriteString("Mode:       " + mode + "\n")
		if m.running {
			b.WriteString("\nLaunching…")
		} else {
			b.WriteString("\nPress enter to go.")
		}
	}

	return b.String()
}

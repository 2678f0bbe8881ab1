package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/views/check"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/views/document"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/views/rules"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/views/settings"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView     *menu.View
	checkView    *check.View
	documentView *document.View
	rulesView    *rules.View
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menu.NewView(s),
		checkView:    check.NewView(s, km, ports.Session),
		documentView: document.NewView(s, km, ports.Session),
		rulesView:    rules.NewView(s, km, ports.Session),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}
	a.refreshRulesInfo()
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.checkView.WithContext(ctx)
	a.documentView.WithContext(ctx)
	a.rulesView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("wordcheck")
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewMenu:
			a.refreshRulesInfo()
		case messages.ViewCheck:
			return a, a.checkView.Init()
		case messages.ViewDocument:
			return a, a.documentView.Init()
		case messages.ViewRules:
			a.rulesView.Reset()
			return a, a.rulesView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewHelp:
		}
		return a, nil

	case messages.DocumentLoaded:
		a.documentView, cmd = a.documentView.Update(msg)
		return a, cmd

	case messages.AnalysisCompleted:
		if a.currentView == messages.ViewDocument {
			a.documentView, cmd = a.documentView.Update(msg)
		} else {
			a.checkView, cmd = a.checkView.Update(msg)
		}
		return a, cmd

	case messages.RulesChanged:
		a.rulesView, cmd = a.rulesView.Update(msg)
		a.refreshRulesInfo()
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewCheck:
		a.checkView, cmd = a.checkView.Update(msg)
	case messages.ViewDocument:
		a.documentView, cmd = a.documentView.Update(msg)
	case messages.ViewRules:
		a.rulesView, cmd = a.rulesView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

func (a *App) refreshRulesInfo() {
	table := a.ports.Session.Rules().Current()
	switch {
	case table == nil:
		a.menuView.SetRulesInfo("No rules loaded")
	case a.ports.Session.Rules().Dirty():
		a.menuView.SetRulesInfo(fmt.Sprintf("%d rules (unsaved)", table.Len()))
	default:
		a.menuView.SetRulesInfo(fmt.Sprintf("%d rules", table.Len()))
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewCheck:
		return a.checkView.View()
	case messages.ViewDocument:
		return a.documentView.View()
	case messages.ViewRules:
		return a.rulesView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back to menu
  ctrl+c      Quit

Check text:
  (type)      Paste or write text
  ctrl+s      List the rules that match
  ctrl+l      Clear the text

Check a file or URL:
  enter       Load the path or URL and check it
  tab         Switch between the path and the text
  pgup/pgdn   Scroll

Rules:
  j/k, ↑/↓    Navigate rules
  a           Add a rule
  e, enter    Edit the selected rule
  d           Delete the selected rule
  s           Save the rules
  r           Revert unsaved edits
  i           Import a CSV or Excel table

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.checkView.SetDimensions(width, height)
	a.documentView.SetDimensions(width, height)
	a.rulesView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}

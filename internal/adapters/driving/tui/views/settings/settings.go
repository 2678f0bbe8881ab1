// Package settings provides the settings view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

// ErrNoSettingsService is reported when the view has no service.
var ErrNoSettingsService = errors.New("settings service not available")

// Key constants for key handling.
const (
	keyEsc   = "esc"
	keyEnter = "enter"
)

// View lists every setting and edits one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	keys    []string
	values  map[string]string
	err     error
	saved   string
	editing bool
	field   *input.Field

	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	var keys []string
	if settingsService != nil {
		keys = settingsService.Keys()
	}

	return &View{
		styles:          s,
		settingsService: settingsService,
		keys:            keys,
		values:          make(map[string]string),
		field:           input.NewField(s, "Value", ""),
	}
}

// Init loads the current values.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.refreshValues()
		}
		return v, nil

	case messages.SettingsSaved:
		v.err = msg.Err
		if msg.Err == nil {
			v.saved = msg.Key
			v.editing = false
			v.field.Blur()
			return v, v.loadSettings()
		}
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleListKeys(msg)
	}

	return v, nil
}

func (v *View) handleListKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
	case keyEnter, "e":
		if len(v.keys) == 0 {
			return v, nil
		}
		v.editing = true
		v.saved = ""
		v.field.SetValue(v.values[v.keys[v.selected]])
		return v, v.field.Focus()
	}
	return v, nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.editing = false
		v.err = nil
		v.field.Blur()
		return v, nil
	case keyEnter:
		return v, v.save(v.keys[v.selected], v.field.Value())
	}

	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

func (v *View) save(key, value string) tea.Cmd {
	return func() tea.Msg {
		return messages.SettingsSaved{Key: key, Err: v.settingsService.Set(key, value)}
	}
}

func (v *View) refreshValues() {
	for _, key := range v.keys {
		value, err := v.settingsService.Value(key)
		if err != nil {
			v.err = err
			continue
		}
		v.values[key] = value
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	for i, key := range v.keys {
		value := v.values[key]
		if value == "" {
			value = "(default)"
		}
		line := fmt.Sprintf("%-24s %s", key, value)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.field.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
		return b.String()
	}

	if v.saved != "" {
		b.WriteString(v.styles.Success.Render("Saved " + v.saved + ". Restart wordcheck to apply."))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back"))
	return b.String()
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.field.SetWidth(width)
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.selected = 0
	v.editing = false
	v.saved = ""
	v.err = nil
	v.field.Reset()
	v.field.Blur()
}

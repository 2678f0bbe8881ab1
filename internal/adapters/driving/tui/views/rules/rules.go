// Package rules provides the view that edits the session's rule table.
package rules

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

// ErrNoSession is reported when the view has no session.
var ErrNoSession = errors.New("no session available")

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeImport
)

// View lists the working rules and edits them.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.RuleList
	statusbar *status.Bar

	pattern     *input.Field
	replacement *input.Field
	path        *input.Field

	session driving.Session
	ctx     context.Context

	mode    mode
	editing int
	dirty   bool
	width   int
	height  int
}

// NewView creates a new rules view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.Session) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:      s,
		keymap:      km,
		list:        list.NewRuleList(s),
		statusbar:   status.NewBar(s, km.RulesHelp()),
		pattern:     input.NewField(s, "誤表記", "子供"),
		replacement: input.NewField(s, "正表記", "子ども"),
		path:        input.NewField(s, "Import from", "~/rules.xlsx"),
		session:     session,
		ctx:         context.Background(),
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the session's working rules.
func (v *View) Init() tea.Cmd {
	return v.run("loaded", func(rs driving.RuleService) (*domain.RuleTable, error) {
		return rs.Current(), nil
	})
}

// Update handles messages for the rules view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.RulesChanged:
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err)
			return v, nil
		}
		v.dirty = msg.Dirty
		v.list.SetRules(rulesOf(msg.Table))
		v.statusbar.Clear()
		if msg.Action != "loaded" {
			v.statusbar.SetMessage(msg.Action)
		}
		return v, nil

	case tea.KeyMsg:
		if v.mode == modeList {
			return v.handleListKey(msg)
		}
		return v.handleFormKey(msg)
	}

	return v, nil
}

func (v *View) handleListKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case k == "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(k, v.keymap.Add):
		v.mode = modeAdd
		v.pattern.Reset()
		v.replacement.Reset()
		return v, v.pattern.Focus()

	case keymap.Matches(k, v.keymap.Edit):
		rule := v.list.SelectedRule()
		if rule == nil {
			return v, nil
		}
		v.mode = modeEdit
		v.editing = v.list.Selected()
		v.pattern.SetValue(rule.Pattern)
		v.replacement.SetValue(rule.Replacement)
		v.replacement.Blur()
		return v, v.pattern.Focus()

	case keymap.Matches(k, v.keymap.Delete):
		if v.list.SelectedRule() == nil {
			return v, nil
		}
		index := v.list.Selected()
		return v, v.run("Removed rule", func(rs driving.RuleService) (*domain.RuleTable, error) {
			return rs.RemoveRule(index)
		})

	case keymap.Matches(k, v.keymap.Commit):
		return v, v.run("Saved", func(rs driving.RuleService) (*domain.RuleTable, error) {
			if err := rs.Commit(v.ctx); err != nil {
				return nil, err
			}
			return rs.Current(), nil
		})

	case keymap.Matches(k, v.keymap.Revert):
		return v, v.run("Reverted to saved rules", func(rs driving.RuleService) (*domain.RuleTable, error) {
			return rs.Revert(v.ctx)
		})

	case keymap.Matches(k, v.keymap.Import):
		v.mode = modeImport
		v.path.Reset()
		return v, v.path.Focus()
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) handleFormKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.closeForm()
		return v, nil

	case "tab":
		if v.mode == modeImport {
			return v, nil
		}
		if v.pattern.Focused() {
			v.pattern.Blur()
			return v, v.replacement.Focus()
		}
		v.replacement.Blur()
		return v, v.pattern.Focus()

	case "enter":
		cmd := v.submit()
		if cmd != nil {
			v.closeForm()
		}
		return v, cmd
	}

	var cmd tea.Cmd
	switch {
	case v.mode == modeImport:
		v.path, cmd = v.path.Update(msg)
	case v.pattern.Focused():
		v.pattern, cmd = v.pattern.Update(msg)
	default:
		v.replacement, cmd = v.replacement.Update(msg)
	}
	return v, cmd
}

// submit returns the command for the open form, or nil if the form is
// incomplete.
func (v *View) submit() tea.Cmd {
	if v.mode == modeImport {
		path := strings.TrimSpace(v.path.Value())
		if path == "" {
			return nil
		}
		return v.run("Imported "+filepath.Base(path), func(rs driving.RuleService) (*domain.RuleTable, error) {
			content, err := os.ReadFile(expandHome(path))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			return rs.Import(v.ctx, filepath.Base(path), content)
		})
	}

	rule := domain.Rule{
		Pattern:     v.pattern.Value(),
		Replacement: v.replacement.Value(),
	}
	if strings.TrimSpace(rule.Pattern) == "" {
		v.statusbar.SetError(fmt.Errorf("%w: 誤表記 is required", domain.ErrInvalidInput))
		return nil
	}

	if v.mode == modeAdd {
		return v.run("Added: "+rule.Pattern+" → "+rule.Replacement, func(rs driving.RuleService) (*domain.RuleTable, error) {
			return rs.AddRule(rule), nil
		})
	}

	index := v.editing
	if existing := v.list.SelectedRule(); existing != nil {
		rule.Extra = existing.Extra
	}
	return v.run(fmt.Sprintf("Updated rule %d", index+1), func(rs driving.RuleService) (*domain.RuleTable, error) {
		return rs.UpdateRule(index, rule)
	})
}

// run applies fn to the session's rules and reports the result as a
// RulesChanged message.
func (v *View) run(action string, fn func(driving.RuleService) (*domain.RuleTable, error)) tea.Cmd {
	return func() tea.Msg {
		if v.session == nil {
			return messages.RulesChanged{Action: action, Err: ErrNoSession}
		}
		rs := v.session.Rules()
		table, err := fn(rs)
		if err != nil {
			return messages.RulesChanged{Action: action, Err: err}
		}
		return messages.RulesChanged{Table: table, Dirty: rs.Dirty(), Action: action}
	}
}

func (v *View) closeForm() {
	v.mode = modeList
	v.pattern.Blur()
	v.replacement.Blur()
	v.path.Blur()
}

// View renders the rules view.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Rules (%d)", v.list.Count())
	if v.dirty {
		title += " " + v.styles.Warning.Render("[unsaved]")
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch v.mode {
	case modeAdd, modeEdit:
		heading := "Add rule"
		if v.mode == modeEdit {
			heading = fmt.Sprintf("Edit rule %d", v.editing+1)
		}
		b.WriteString(v.styles.Subtitle.Render(heading))
		b.WriteString("\n")
		b.WriteString(v.pattern.View())
		b.WriteString("\n")
		b.WriteString(v.replacement.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("tab: switch field • enter: apply • esc: cancel"))
	case modeImport:
		b.WriteString(v.path.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("CSV or Excel with 誤表記 and 正表記 columns • enter: import • esc: cancel"))
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// Dirty reports whether the view shows unsaved edits.
func (v *View) Dirty() bool {
	return v.dirty
}

// Count returns the number of rules shown.
func (v *View) Count() int {
	return v.list.Count()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, max(height-6, 3))
	v.pattern.SetWidth(width)
	v.replacement.SetWidth(width)
	v.path.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Reset closes any open form.
func (v *View) Reset() {
	v.closeForm()
	v.statusbar.Clear()
}

func rulesOf(table *domain.RuleTable) []domain.Rule {
	if table == nil {
		return nil
	}
	return table.Rules
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

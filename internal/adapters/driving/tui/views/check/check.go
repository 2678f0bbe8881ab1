// Package check provides the paste-and-analyse view for the TUI.
package check

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

// ErrNoSession is reported when the view has no session.
var ErrNoSession = errors.New("no session available")

// View holds a text area for pasted text and the findings of the last
// analysis.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	editor    textarea.Model
	results   viewport.Model
	statusbar *status.Bar

	session driving.Session
	ctx     context.Context

	findings []domain.Finding
	analysed bool
	width    int
	height   int
}

// NewView creates a new check view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.Session) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	editor := textarea.New()
	editor.Placeholder = "Paste or type text to check..."
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Focus()

	v := &View{
		styles:    s,
		keymap:    km,
		editor:    editor,
		results:   viewport.New(80, 8),
		statusbar: status.NewBar(s, km.CheckHelp()),
		session:   session,
		ctx:       context.Background(),
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.editor.Focus()
}

// Update handles messages for the check view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.AnalysisCompleted:
		v.handleAnalysis(msg)
		return v, nil

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyEsc:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case key.Matches(msg, v.keymap.Analyse):
			return v, v.analyse(v.editor.Value())
		case key.Matches(msg, v.keymap.Clear):
			v.Reset()
			if v.session != nil {
				v.session.Clear()
			}
			return v, nil
		case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
			var cmd tea.Cmd
			v.results, cmd = v.results.Update(msg)
			return v, cmd
		}
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

// analyse loads text as the session document and matches it.
func (v *View) analyse(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	v.statusbar.SetState(status.StateWorking)
	v.statusbar.SetMessage("Analysing...")

	return func() tea.Msg {
		if v.session == nil {
			return messages.AnalysisCompleted{Err: ErrNoSession}
		}
		if _, err := v.session.LoadText(v.ctx, text); err != nil {
			return messages.AnalysisCompleted{Err: err}
		}
		findings, err := v.session.Analyse(v.ctx)
		return messages.AnalysisCompleted{Findings: findings, Err: err}
	}
}

func (v *View) handleAnalysis(msg messages.AnalysisCompleted) {
	if msg.Err != nil {
		v.statusbar.SetError(msg.Err)
		return
	}
	v.findings = msg.Findings
	v.analysed = true
	v.statusbar.SetFindings(len(msg.Findings))
	v.results.SetContent(RenderFindings(v.styles, msg.Findings))
	v.results.GotoTop()
}

// View renders the check view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Check text"))
	b.WriteString("\n\n")
	b.WriteString(v.editor.View())
	b.WriteString("\n\n")

	if v.analysed {
		b.WriteString(v.styles.Subtitle.Render("Findings"))
		b.WriteString("\n")
		b.WriteString(v.results.View())
		b.WriteString("\n")
	}

	b.WriteString(v.statusbar.View())
	return b.String()
}

// RenderFindings formats findings one per line as "pattern → replacement".
func RenderFindings(s *styles.Styles, findings []domain.Finding) string {
	if len(findings) == 0 {
		return s.Success.Render("No findings.")
	}
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = s.Pattern.Render(f.Pattern) + s.Muted.Render(" → ") + s.Replacement.Render(f.Replacement)
	}
	return strings.Join(lines, "\n")
}

// Findings returns the findings of the last analysis.
func (v *View) Findings() []domain.Finding {
	return v.findings
}

// Value returns the editor contents.
func (v *View) Value() string {
	return v.editor.Value()
}

// SetValue replaces the editor contents.
func (v *View) SetValue(text string) {
	v.editor.SetValue(text)
}

// SetDimensions splits the height between the editor and the findings.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	editorHeight := (height - 6) / 2
	if editorHeight < 3 {
		editorHeight = 3
	}
	resultsHeight := height - editorHeight - 7
	if resultsHeight < 3 {
		resultsHeight = 3
	}

	v.editor.SetWidth(width)
	v.editor.SetHeight(editorHeight)
	v.results.Width = width
	v.results.Height = resultsHeight
	v.statusbar.SetWidth(width)
}

// Reset clears the text and findings.
func (v *View) Reset() {
	v.editor.Reset()
	v.findings = nil
	v.analysed = false
	v.results.SetContent("")
	v.statusbar.Clear()
}

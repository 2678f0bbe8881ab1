// Package document provides the view that loads a file or URL, shows its
// normalised text and the findings against it.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/views/check"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

// ErrNoSession is reported when the view has no session.
var ErrNoSession = errors.New("no session available")

// View loads a document by path or URL.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	field     *input.Field
	content   viewport.Model
	statusbar *status.Bar

	session driving.Session
	ctx     context.Context

	source   string
	format   domain.Format
	lines    []string
	findings []domain.Finding
	analysed bool
	width    int
	height   int
}

// NewView creates a new document view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.Session) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		field:     input.NewField(s, "File or URL", "~/notice.docx or https://example.com/notice.pdf"),
		content:   viewport.New(80, 10),
		statusbar: status.NewBar(s, []key.Binding{km.Select, km.NextField, km.Back}),
		session:   session,
		ctx:       context.Background(),
	}
	v.field.Focus()
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the path field.
func (v *View) Init() tea.Cmd {
	return v.field.Focus()
}

// Update handles messages for the document view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DocumentLoaded:
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err)
			return v, nil
		}
		v.source = msg.Source
		v.format = msg.Format
		v.lines = msg.Lines
		v.analysed = false
		v.render()
		return v, v.analyse()

	case messages.AnalysisCompleted:
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err)
			return v, nil
		}
		v.findings = msg.Findings
		v.analysed = true
		v.statusbar.SetFindings(len(msg.Findings))
		v.render()
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "tab":
		if v.field.Focused() {
			v.field.Blur()
			return v, nil
		}
		return v, v.field.Focus()
	}

	if !v.field.Focused() {
		var cmd tea.Cmd
		v.content, cmd = v.content.Update(msg)
		return v, cmd
	}

	if msg.Type == tea.KeyEnter {
		target := strings.TrimSpace(v.field.Value())
		if target == "" {
			return v, nil
		}
		v.statusbar.SetState(status.StateWorking)
		v.statusbar.SetMessage("Loading " + target + "...")
		return v, v.load(target)
	}

	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

// load makes target the session document. Targets with an http(s)
// scheme are fetched, anything else is read from disk.
func (v *View) load(target string) tea.Cmd {
	return func() tea.Msg {
		if v.session == nil {
			return messages.DocumentLoaded{Source: target, Err: ErrNoSession}
		}

		var (
			text *domain.NormalisedText
			err  error
		)
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			text, err = v.session.LoadURL(v.ctx, target)
		} else {
			var content []byte
			content, err = os.ReadFile(expandHome(target))
			if err != nil {
				return messages.DocumentLoaded{Source: target, Err: fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)}
			}
			text, err = v.session.LoadFile(v.ctx, filepath.Base(target), content)
		}
		if err != nil {
			return messages.DocumentLoaded{Source: target, Err: err}
		}

		var format domain.Format
		if doc := v.session.Document(); doc != nil {
			format = doc.Format
		}
		return messages.DocumentLoaded{Source: target, Format: format, Lines: text.Lines}
	}
}

func (v *View) analyse() tea.Cmd {
	return func() tea.Msg {
		findings, err := v.session.Analyse(v.ctx)
		return messages.AnalysisCompleted{Findings: findings, Err: err}
	}
}

func (v *View) render() {
	var b strings.Builder

	if v.analysed {
		b.WriteString(v.styles.Subtitle.Render("Findings"))
		b.WriteString("\n")
		b.WriteString(check.RenderFindings(v.styles, v.findings))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Text (%s, %d lines)", v.format, len(v.lines))))
	b.WriteString("\n")
	for i, line := range v.lines {
		b.WriteString(v.styles.LineNumber.Render(fmt.Sprint(i + 1)))
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	v.content.SetContent(b.String())
	v.content.GotoTop()
}

// View renders the document view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Check a file or URL"))
	b.WriteString("\n\n")
	b.WriteString(v.field.View())
	b.WriteString("\n\n")
	if v.source != "" {
		b.WriteString(v.content.View())
		b.WriteString("\n")
	}
	b.WriteString(v.statusbar.View())
	return b.String()
}

// Lines returns the normalised lines of the loaded document.
func (v *View) Lines() []string {
	return v.lines
}

// Findings returns the findings for the loaded document.
func (v *View) Findings() []domain.Finding {
	return v.findings
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.field.SetWidth(width)
	v.content.Width = width
	v.content.Height = max(height-8, 3)
	v.statusbar.SetWidth(width)
}

// Reset clears the loaded document from the view.
func (v *View) Reset() {
	v.field.Reset()
	v.field.Focus()
	v.source = ""
	v.format = ""
	v.lines = nil
	v.findings = nil
	v.analysed = false
	v.content.SetContent("")
	v.statusbar.Clear()
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

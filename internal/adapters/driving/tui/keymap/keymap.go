// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Back   key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Analyse checks the current text against the rules.
	Analyse key.Binding

	// Clear discards the current document.
	Clear key.Binding

	// Add appends a rule.
	Add key.Binding

	// Edit changes the selected rule or setting.
	Edit key.Binding

	// Delete removes the selected rule.
	Delete key.Binding

	// Commit saves the working rules.
	Commit key.Binding

	// Revert discards unsaved rule edits.
	Revert key.Binding

	// Import replaces the rules from a file.
	Import key.Binding

	// NextField moves focus between input fields.
	NextField key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Analyse: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "analyse"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Commit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Revert: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "revert"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar by default.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Quit}
}

// CheckHelp returns the bindings for the check view.
func (k *KeyMap) CheckHelp() []key.Binding {
	return []key.Binding{k.Analyse, k.Clear, k.Back}
}

// RulesHelp returns the bindings for the rules view.
func (k *KeyMap) RulesHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Commit, k.Revert, k.Import, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Analyse, k.Clear, k.Back},
		{k.Add, k.Edit, k.Delete, k.Commit, k.Revert, k.Import},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}

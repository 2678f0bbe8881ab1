// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewCheck is the paste-and-analyse view.
	ViewCheck
	// ViewDocument loads a file or URL and shows its text.
	ViewDocument
	// ViewRules manages the rule table.
	ViewRules
	// ViewSettings is the settings view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewCheck:
		return "check"
	case ViewDocument:
		return "document"
	case ViewRules:
		return "rules"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentLoaded carries the outcome of loading a document.
type DocumentLoaded struct {
	Source string
	Format domain.Format
	Lines  []string
	Err    error
}

// AnalysisCompleted carries the findings of one analysis.
type AnalysisCompleted struct {
	Findings []domain.Finding
	Err      error
}

// RulesChanged carries the working rule table after an edit, import,
// commit or revert.
type RulesChanged struct {
	Table  *domain.RuleTable
	Dirty  bool
	Action string
	Err    error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals a setting was saved.
type SettingsSaved struct {
	Key string
	Err error
}

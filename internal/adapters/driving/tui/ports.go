// Package tui provides an interactive terminal user interface for
// wordcheck. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Session holds the document and rules being worked on.
	Session driving.Session

	// Settings manages application settings.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(session driving.Session, settings driving.SettingsService) *Ports {
	return &Ports{
		Session:  session,
		Settings: settings,
	}
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Session == nil {
		return ErrMissingSession
	}
	return nil
}

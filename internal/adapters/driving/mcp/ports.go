package mcp

import (
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Sessions creates an isolated session per tool call, seeded with the
	// saved rule table.
	Sessions driving.SessionManager
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionManager
	}
	return nil
}

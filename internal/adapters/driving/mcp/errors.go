// Package mcp provides an MCP (Model Context Protocol) server adapter for wordcheck.
// It lets AI assistants check text, files and web pages against the saved rule table.
package mcp

import "errors"

// ErrMissingSessionManager is returned when the session manager is not provided.
var ErrMissingSessionManager = errors.New("mcp: session manager is required")

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for wordcheck resources.
	uriScheme = "wordcheck://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rules",
		Name:        "rules",
		Description: "The saved wording rule table",
		MIMEType:    "application/json",
	}, s.handleRulesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rules.csv",
		Name:        "rules-csv",
		Description: "The saved wording rule table as CSV",
		MIMEType:    "text/csv",
	}, s.handleRulesCSVResource)
}

func (s *Server) handleRulesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, rules, err := s.handleListRules(ctx, nil, ListRulesInput{})
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling rules: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleRulesCSVResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	session, err := s.ports.Sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	defer s.ports.Sessions.Close(session.ID()) //nolint:errcheck

	var buf bytes.Buffer
	if err := session.Rules().Export(&buf); err != nil {
		return nil, fmt.Errorf("exporting rules: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/csv",
			Text:     buf.String(),
		}},
	}, nil
}

package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// CheckTextInput is the input schema for the check_text tool.
type CheckTextInput struct {
	Text string `json:"text" jsonschema:"the text to check"`
}

// CheckURLInput is the input schema for the check_url tool.
type CheckURLInput struct {
	URL string `json:"url" jsonschema:"http or https address of the document to check"`
}

// CheckFileInput is the input schema for the check_file tool.
type CheckFileInput struct {
	Path string `json:"path" jsonschema:"local path of a .txt, .csv, .xlsx, .xls, .docx, .pdf or .html file"`
}

// CheckOutput is the output schema for the check tools.
type CheckOutput struct {
	Findings []domain.Finding `json:"findings"`
	Count    int              `json:"count"`
	Lines    int              `json:"lines"`
	Report   string           `json:"report"`
}

// ListRulesInput is the input schema for the list_rules tool.
type ListRulesInput struct{}

// RuleOutput is one rule of the list_rules output.
type RuleOutput struct {
	Pattern     string            `json:"pattern"`
	Replacement string            `json:"replacement"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// ListRulesOutput is the output schema for the list_rules tool.
type ListRulesOutput struct {
	Columns []string     `json:"columns"`
	Rules   []RuleOutput `json:"rules"`
	Count   int          `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_text",
		Description: "Check text for wording that the rule table marks as incorrect",
	}, s.handleCheckText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_url",
		Description: "Fetch a web page or document and check it against the rule table",
	}, s.handleCheckURL)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_file",
		Description: "Check a local document against the rule table",
	}, s.handleCheckFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List the wording rules (incorrect form and suggested correction)",
	}, s.handleListRules)
}

func (s *Server) handleCheckText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckTextInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	return s.check(ctx, func(session driving.Session) (*domain.NormalisedText, error) {
		return session.LoadText(ctx, input.Text)
	})
}

func (s *Server) handleCheckURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckURLInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	return s.check(ctx, func(session driving.Session) (*domain.NormalisedText, error) {
		return session.LoadURL(ctx, input.URL)
	})
}

func (s *Server) handleCheckFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckFileInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	return s.check(ctx, func(session driving.Session) (*domain.NormalisedText, error) {
		content, err := os.ReadFile(filepath.Clean(input.Path))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", input.Path, err)
		}
		return session.LoadFile(ctx, input.Path, content)
	})
}

// check runs load then analyse in a throwaway session.
func (s *Server) check(
	ctx context.Context,
	load func(driving.Session) (*domain.NormalisedText, error),
) (*mcp.CallToolResult, CheckOutput, error) {
	session, err := s.ports.Sessions.Create(ctx)
	if err != nil {
		return nil, CheckOutput{}, err
	}
	defer s.ports.Sessions.Close(session.ID()) //nolint:errcheck

	text, err := load(session)
	if err != nil {
		return nil, CheckOutput{}, err
	}

	findings, err := session.Analyse(ctx)
	if err != nil {
		return nil, CheckOutput{}, err
	}
	logger.Debug("mcp: %d findings in %d lines", len(findings), len(text.Lines))

	return nil, CheckOutput{
		Findings: findings,
		Count:    len(findings),
		Lines:    len(text.Lines),
		Report:   domain.FormatFindings(findings),
	}, nil
}

func (s *Server) handleListRules(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRulesInput,
) (*mcp.CallToolResult, ListRulesOutput, error) {
	table, err := s.currentRules(ctx)
	if err != nil {
		return nil, ListRulesOutput{}, err
	}

	output := ListRulesOutput{
		Columns: table.Columns,
		Rules:   make([]RuleOutput, len(table.Rules)),
		Count:   len(table.Rules),
	}
	for i, r := range table.Rules {
		output.Rules[i] = RuleOutput{Pattern: r.Pattern, Replacement: r.Replacement, Extra: r.Extra}
	}
	return nil, output, nil
}

// currentRules returns the saved rule table.
func (s *Server) currentRules(ctx context.Context) (*domain.RuleTable, error) {
	session, err := s.ports.Sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	defer s.ports.Sessions.Close(session.ID()) //nolint:errcheck

	table := session.Rules().Current()
	if table == nil {
		return nil, domain.ErrNoRulesLoaded
	}
	return table, nil
}

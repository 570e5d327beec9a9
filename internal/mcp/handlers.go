package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/ratelimit"
)

// AskInput defines the input for the careloop_ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"The member's question"`
	Role     string `json:"role,omitempty" jsonschema:"Optional explicit persona to address (e.g. 'Dr. Warren'); routed automatically when empty"`
	Since    string `json:"since,omitempty" jsonschema:"Optional YYYY-MM-DD lower bound on retrieved documents"`
}

// AskOutput defines the output for the careloop_ask tool.
type AskOutput struct {
	Role    string   `json:"role" jsonschema:"Persona that answered"`
	Answer  string   `json:"answer" jsonschema:"The cited answer text"`
	Sources []string `json:"sources" jsonschema:"Retrieved document ids the answer drew on"`
}

// RolesInput defines the (empty) input for the careloop_roles tool.
type RolesInput struct{}

// RolesOutput defines the output for the careloop_roles tool.
type RolesOutput struct {
	AvailableRoles []string `json:"available_roles" jsonschema:"The closed persona set"`
	DefaultRole    string   `json:"default_role" jsonschema:"Persona used when routing is ambiguous"`
}

func (s *Server) handleAsk(ctx context.Context, req *sdk.CallToolRequest, args AskInput) (_ *sdk.CallToolResult, _ AskOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("careloop_ask", start, retErr) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "careloop_ask"); err != nil {
		return nil, AskOutput{}, err
	}

	if strings.TrimSpace(args.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("question must not be empty")
	}

	var since time.Time
	if args.Since != "" {
		var err error
		since, err = time.Parse(models.DateLayout, args.Since)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("since must be YYYY-MM-DD, got %q", args.Since)
		}
	}

	ans, err := s.qa.Ask(ctx, args.Question, args.Role, since)
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("answering question: %w", err)
	}

	return nil, AskOutput{
		Role:    ans.Role.String(),
		Answer:  ans.Answer,
		Sources: ans.Sources,
	}, nil
}

func (s *Server) handleRoles(ctx context.Context, req *sdk.CallToolRequest, args RolesInput) (_ *sdk.CallToolResult, _ RolesOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("careloop_roles", start, retErr) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "careloop_roles"); err != nil {
		return nil, RolesOutput{}, err
	}

	roles, def := s.qa.Roles()
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return nil, RolesOutput{AvailableRoles: names, DefaultRole: def.String()}, nil
}

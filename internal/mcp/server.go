// Package mcp provides an MCP (Model Context Protocol) server exposing the
// QA service as careloop_ask and careloop_roles tools over stdio, so agent
// hosts can query the member's health record directly.
package mcp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/elyxlabs/careloop/internal/api"
	"github.com/elyxlabs/careloop/internal/ratelimit"
)

// Config holds server identity.
type Config struct {
	Name    string // Server name (e.g., "careloop")
	Version string // Server version
}

// Server wraps the MCP SDK server around the QA service.
type Server struct {
	server       *sdk.Server
	qa           api.QA
	log          *slog.Logger
	toolLimiters ratelimit.ToolLimiters
}

// NewServer creates an MCP server with the careloop tools registered.
func NewServer(cfg *Config, qa api.QA, log *slog.Logger) *Server {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{})

	s := &Server{
		server:       mcpServer,
		qa:           qa,
		log:          log,
		toolLimiters: ratelimit.NewToolLimiters(),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "careloop_ask",
		Description: "Ask the care team a question about the member's health record; answers are role-scoped and cite source documents",
	}, s.handleAsk)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "careloop_roles",
		Description: "List the care team personas a question can be addressed to, and the default",
	}, s.handleRoles)
}

// Run serves over stdio until the client disconnects, the context is
// cancelled, or an interrupt arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	s.log.Info("mcp server starting", "transport", "stdio")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

func (s *Server) auditTool(name string, start time.Time, err error) {
	if err != nil {
		s.log.Warn("tool call failed", "tool", name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	s.log.Info("tool call", "tool", name, "duration_ms", time.Since(start).Milliseconds())
}

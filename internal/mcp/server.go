package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"specprobe/internal/report"
)

// Server exposes conformance runs as MCP tools over stdio.
type Server struct {
	auditor Auditor
	logger  zerolog.Logger
	mcp     *server.MCPServer

	mu   sync.RWMutex
	last *report.Report
}

// NewServer creates an MCP server backed by the given auditor.
func NewServer(auditor Auditor, logger zerolog.Logger) *Server {
	s := &Server{
		auditor: auditor,
		logger:  logger.With().Str("component", "mcp_server").Logger(),
		mcp: server.NewMCPServer(
			"specprobe",
			"1.0.0",
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("run_checks",
		mcp.WithDescription("Run every conformance check against the configured APIs and return the report as JSON"),
	), s.handleRunChecks)

	s.mcp.AddTool(mcp.NewTool("list_endpoints",
		mcp.WithDescription("List the readable endpoints declared by the configured API descriptions"),
		mcp.WithString("api",
			mcp.Description("Restrict the listing to one API, matched by name or name/version"),
		),
	), s.handleListEndpoints)

	s.mcp.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Return the report from the most recent run_checks call in this session"),
	), s.handleGetReport)
}

// Serve answers MCP requests on stdin/stdout until the stream closes.
func (s *Server) Serve() error {
	s.logger.Info().Msg("MCP server listening on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleRunChecks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Debug().Msg("run_checks invoked")

	rep, err := s.auditor.RunChecks(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	s.last = rep
	s.mu.Unlock()

	s.logger.Info().
		Str("run_id", rep.RunID).
		Int("checks", rep.Summary.Total()).
		Int("failed", rep.Summary.Fail).
		Msg("conformance run finished")

	return jsonResult(rep)
}

func (s *Server) handleListEndpoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inventory, err := s.auditor.EndpointInventory(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if filter, ok := request.GetArguments()["api"].(string); ok && filter != "" {
		var matched []APIInventory
		for _, api := range inventory {
			if api.Name == filter || api.Name+"/"+api.Version == filter {
				matched = append(matched, api)
			}
		}
		if len(matched) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("no configured API matches %q", filter)), nil
		}
		inventory = matched
	}

	return jsonResult(inventory)
}

func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	rep := s.last
	s.mu.RUnlock()

	if rep == nil {
		return mcp.NewToolResultError("no report available: call run_checks first"), nil
	}
	return jsonResult(rep)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

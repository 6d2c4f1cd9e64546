package mcp

import (
	"context"

	"specprobe/internal/report"
)

// Auditor runs conformance checks and inventories endpoints on behalf of
// the MCP tools. The CLI wires its configured engine in behind this.
type Auditor interface {
	// RunChecks executes a full conformance run and returns its report.
	RunChecks(ctx context.Context) (*report.Report, error)
	// EndpointInventory lists the readable endpoints of every configured API.
	EndpointInventory(ctx context.Context) ([]APIInventory, error)
}

// APIInventory is the tool-facing shape of one API's readable endpoints.
type APIInventory struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints []EndpointSummary `json:"endpoints"`
}

// EndpointSummary is the tool-facing shape of one probeable operation.
type EndpointSummary struct {
	Method   string   `json:"method"`
	Path     string   `json:"path"`
	Params   []string `json:"params,omitempty"`
	Statuses []int    `json:"statuses"`
}

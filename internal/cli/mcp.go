package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"specprobe/internal/config"
	"specprobe/internal/mcp"
	"specprobe/internal/report"
)

// MCPHandler handles MCP server commands
type MCPHandler struct {
	logger zerolog.Logger
}

// NewMCPHandler creates a new MCP command handler
func NewMCPHandler(logger zerolog.Logger) *MCPHandler {
	return &MCPHandler{
		logger: logger.With().Str("handler", "mcp").Logger(),
	}
}

// Execute starts the MCP server on stdio.
func (h *MCPHandler) Execute(cmd *cobra.Command, args []string) error {
	// Embedding callers may have stashed a config in the context already
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		var err error
		cfg, err = config.LoadFromFlags(cmd.Flags())
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to load configuration")
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	h.logger.Debug().
		Str("namespace", cfg.Namespace).
		Int("apis", len(cfg.APIs)).
		Str("auth", cfg.Auth.Type).
		Msg("starting MCP server")

	auditor := &configAuditor{cfg: cfg, logger: h.logger}
	return mcp.NewServer(auditor, h.logger).Serve()
}

// configAuditor adapts the configured engine to the MCP tool surface. Each
// RunChecks call builds a fresh engine so repeated runs never share
// harvested state.
type configAuditor struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func (a *configAuditor) RunChecks(ctx context.Context) (*report.Report, error) {
	eng, err := buildEngine(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}

	rep := report.Begin(describeTarget(a.cfg))
	a.logger.Info().Str("run_id", rep.RunID).Str("target", rep.Target).Msg("starting conformance run")
	return rep.Finish(eng.Run(ctx)), nil
}

func (a *configAuditor) EndpointInventory(ctx context.Context) ([]mcp.APIInventory, error) {
	inventory := make([]mcp.APIInventory, 0, len(a.cfg.APIs))
	for _, api := range a.cfg.APIs {
		cat, err := loadCatalog(ctx, api.Spec, a.logger)
		if err != nil {
			return nil, err
		}

		endpoints := cat.ReadableEndpoints()
		summaries := make([]mcp.EndpointSummary, 0, len(endpoints))
		for _, ep := range endpoints {
			summaries = append(summaries, mcp.EndpointSummary{
				Method:   ep.Method,
				Path:     ep.Path,
				Params:   ep.Params,
				Statuses: ep.Statuses,
			})
		}

		inventory = append(inventory, mcp.APIInventory{
			Name:      api.Name,
			Version:   api.Version,
			Endpoints: summaries,
		})
	}
	return inventory, nil
}

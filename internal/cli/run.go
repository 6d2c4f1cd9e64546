package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"specprobe/internal/config"
	"specprobe/internal/engine"
	"specprobe/internal/errors"
	"specprobe/internal/report"
	"specprobe/internal/transport"
	"specprobe/pkg/catalog"
)

// RunHandler handles conformance run commands.
type RunHandler struct {
	logger zerolog.Logger
}

// NewRunHandler creates a new run command handler
func NewRunHandler(logger zerolog.Logger) *RunHandler {
	return &RunHandler{
		logger: logger.With().Str("handler", "run").Logger(),
	}
}

// Execute runs the conformance checks and renders the report.
func (h *RunHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFlags(cmd.Flags())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return err
	}
	if err := cfg.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	ctx := cmd.Context()

	eng, err := buildEngine(ctx, cfg, h.logger)
	if err != nil {
		return err
	}

	rep := report.Begin(describeTarget(cfg))
	h.logger.Info().Str("run_id", rep.RunID).Str("target", rep.Target).Msg("starting conformance run")

	rep.Finish(eng.Run(ctx))

	if err := renderReport(cmd.OutOrStdout(), cfg, rep); err != nil {
		return err
	}

	if cfg.Output.File != "" {
		if err := writeReportFile(cfg.Output.File, rep); err != nil {
			return err
		}
		h.logger.Info().Str("path", cfg.Output.File).Msg("report written")
	}

	if rep.Failed() {
		return fmt.Errorf("%d of %d checks failed", rep.Summary.Fail, rep.Summary.Total())
	}
	return nil
}

// buildEngine assembles the transport, loads every instance's catalog and
// constructs the engine for one run.
func buildEngine(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*engine.Engine, error) {
	opts := []transport.Option{
		transport.WithTimeout(cfg.ProbeTimeout()),
		transport.WithLogger(log),
	}
	switch cfg.Auth.Type {
	case "bearer":
		opts = append(opts, transport.WithBearerToken(cfg.Auth.Token))
	case "sigv4":
		opts = append(opts, transport.WithSigV4(cfg.Auth.Service))
	}

	apis := make([]*engine.APIInstance, 0, len(cfg.APIs))
	for _, a := range cfg.APIs {
		cat, err := loadCatalog(ctx, a.Spec, log)
		if err != nil {
			return nil, err
		}
		apis = append(apis, &engine.APIInstance{
			Name:    a.Name,
			Version: a.Version,
			BaseURL: strings.TrimRight(a.BaseURL, "/"),
			URL:     a.VersionedURL(cfg.Namespace),
			Catalog: cat,
		})
	}

	return engine.New(apis, engine.Options{
		Namespace: cfg.Namespace,
		OmitPaths: cfg.OmitPaths,
		Transport: transport.New(opts...),
		Logger:    log,
	})
}

// loadCatalog reads an OpenAPI description from a file path or an HTTP URL.
func loadCatalog(ctx context.Context, source string, log zerolog.Logger) (*catalog.Catalog, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return catalog.NewFromURL(ctx, source, catalog.WithLogger(log))
	}
	return catalog.NewFromFile(source, catalog.WithLogger(log))
}

func renderReport(w io.Writer, cfg *config.Config, rep *report.Report) error {
	if cfg.Output.Format == "json" {
		return rep.WriteJSON(w)
	}

	results := rep.Results
	if cfg.Output.Sort == "severity" {
		results = report.SortedBySeverity(results)
	}
	report.RenderTable(w, results)
	report.RenderSummary(w, rep)
	return nil
}

func writeReportFile(path string, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to create report file").
			WithContext("path", path)
	}
	defer f.Close()
	return rep.WriteJSON(f)
}

func describeTarget(cfg *config.Config) string {
	names := make([]string, 0, len(cfg.APIs))
	for _, a := range cfg.APIs {
		names = append(names, a.Name+"/"+a.Version)
	}
	base := ""
	if len(cfg.APIs) > 0 {
		base = strings.TrimRight(cfg.APIs[0].BaseURL, "/")
	}
	return fmt.Sprintf("%s%s (%s)", base, cfg.Namespace, strings.Join(names, ", "))
}

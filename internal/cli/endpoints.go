package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"specprobe/internal/config"
	"specprobe/internal/errors"
	"specprobe/pkg/catalog"
)

// EndpointsHandler handles endpoint inventory commands.
type EndpointsHandler struct {
	logger zerolog.Logger
}

// NewEndpointsHandler creates a new endpoints command handler
func NewEndpointsHandler(logger zerolog.Logger) *EndpointsHandler {
	return &EndpointsHandler{
		logger: logger.With().Str("handler", "endpoints").Logger(),
	}
}

// Execute renders the readable endpoint inventory for every configured
// OpenAPI description. Unlike run, this needs no live deployment: only the
// descriptions themselves.
func (h *EndpointsHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFlags(cmd.Flags())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return err
	}
	if len(cfg.APIs) == 0 {
		return errors.New(errors.ErrorTypeConfig, "no OpenAPI description configured").
			WithContext("suggestion", "pass --spec or list apis in a config file")
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	for i, a := range cfg.APIs {
		cat, err := loadCatalog(ctx, a.Spec, h.logger)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, catalog.RenderEndpoints(cat, cat.ReadableEndpoints()))
	}
	return nil
}

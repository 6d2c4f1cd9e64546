// Package engine turns an endpoint catalog and a live deployment into an
// ordered sequence of conformance outcomes. Execution is strictly
// sequential: later checks resolve their URLs from identifiers harvested by
// earlier checks, so one probe is outstanding at a time and reordering would
// change which checks are testable.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"specprobe/internal/errors"
	"specprobe/internal/outcome"
	"specprobe/internal/transport"
)

// Options configures an Engine.
type Options struct {
	// Namespace is the well-known root path segment the API family lives
	// under, e.g. "/x-api". Required.
	Namespace string
	// OmitPaths lists path templates excluded from automatic endpoint
	// checks. Matching is exact against the template.
	OmitPaths []string
	// Transport issues the probes. Defaults to transport.New().
	Transport Transport
	// Logger receives structured progress events. Defaults to a no-op
	// logger.
	Logger zerolog.Logger
	// Checks are named checks layered on top of the endpoint phase,
	// executed last in registration order.
	Checks []NamedCheck
}

// Engine drives one conformance run over a set of API instances.
type Engine struct {
	apis      []*APIInstance
	namespace string
	omit      map[string]bool
	transport Transport
	logger    zerolog.Logger
	checks    []NamedCheck
}

// New validates the instances and builds an engine. The subresource caches
// live inside Run; an Engine holds no state between runs.
func New(apis []*APIInstance, opts Options) (*Engine, error) {
	if len(apis) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "at least one API instance is required")
	}
	for _, inst := range apis {
		if err := inst.validate(); err != nil {
			return nil, err
		}
	}

	namespace := strings.TrimRight(opts.Namespace, "/")
	if namespace == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "namespace is required")
	}
	if !strings.HasPrefix(namespace, "/") {
		namespace = "/" + namespace
	}

	omit := make(map[string]bool, len(opts.OmitPaths))
	for _, path := range opts.OmitPaths {
		omit[path] = true
	}

	tr := opts.Transport
	if tr == nil {
		tr = transport.New()
	}

	return &Engine{
		apis:      apis,
		namespace: namespace,
		omit:      omit,
		transport: tr,
		logger:    opts.Logger.With().Str("component", "engine").Logger(),
		checks:    opts.Checks,
	}, nil
}

// Run executes the conformance sequence and returns every outcome in
// execution order: bootstrap checks for all instances first, then each
// instance's readable endpoints in catalog order, then named checks in
// registration order. Failures never abort the run; each check absorbs its
// own failure into its outcome.
func (e *Engine) Run(ctx context.Context) []outcome.Outcome {
	var results []outcome.Outcome

	for _, inst := range e.apis {
		e.logger.Info().Str("api", inst.Name).Str("base_url", inst.BaseURL).Msg("running bootstrap checks")
		results = append(results,
			e.checkBasePath(ctx, inst.BaseURL, e.namespace, inst.Name+"/"),
			e.checkBasePath(ctx, inst.BaseURL, e.namespace+"/"+inst.Name, inst.Version+"/"),
		)
	}

	for _, inst := range e.apis {
		e.logger.Info().Str("api", inst.Name).Msg("running endpoint checks")
		cache := newSubresourceCache()
		for _, ep := range inst.Catalog.ReadableEndpoints() {
			if result, ok := e.checkEndpoint(ctx, inst, cache, ep); ok {
				e.logger.Debug().Str("check", result.Name).Str("status", string(result.Status)).Msg("endpoint check finished")
				results = append(results, result)
			}
		}
	}

	for _, chk := range e.checks {
		if chk.Run == nil {
			continue
		}
		e.logger.Info().Str("check", chk.Name).Msg("running named check")
		results = append(results, chk.Run(ctx))
	}

	return results
}

// checkName builds the display name for an endpoint check. The path part is
// the concrete probed path for materialized templates and the template
// itself when no probe could be built.
func (e *Engine) checkName(inst *APIInstance, method, path string) string {
	return fmt.Sprintf("%s %s/%s/%s%s", method, e.namespace, inst.Name, inst.Version, path)
}

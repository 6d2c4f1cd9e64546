package engine

import (
	"specprobe/internal/errors"
)

// APIInstance names one deployment of a cataloged API under audit.
type APIInstance struct {
	// Name is the API's name inside the namespace, e.g. "node".
	Name string
	// Version is the API version under test, e.g. "v1.0".
	Version string
	// BaseURL is the service root the bootstrap probes hit, e.g.
	// "http://example.test:8080".
	BaseURL string
	// URL is the versioned API base endpoint templates are appended to,
	// e.g. "http://example.test:8080/x-api/node/v1.0".
	URL string
	// Catalog supplies the endpoint inventory and response schemas.
	Catalog Catalog
}

func (a *APIInstance) validate() error {
	if a == nil {
		return errors.New(errors.ErrorTypeConfig, "API instance must not be nil")
	}
	if a.Name == "" {
		return errors.New(errors.ErrorTypeConfig, "API instance name is required")
	}
	if a.Version == "" {
		return errors.Newf(errors.ErrorTypeConfig, "API instance %s: version is required", a.Name)
	}
	if a.BaseURL == "" {
		return errors.Newf(errors.ErrorTypeConfig, "API instance %s: base URL is required", a.Name)
	}
	if a.URL == "" {
		return errors.Newf(errors.ErrorTypeConfig, "API instance %s: versioned URL is required", a.Name)
	}
	if a.Catalog == nil {
		return errors.Newf(errors.ErrorTypeConfig, "API instance %s: catalog is required", a.Name)
	}
	return nil
}

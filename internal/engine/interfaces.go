package engine

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"specprobe/internal/outcome"
	"specprobe/internal/transport"
	"specprobe/pkg/catalog"
)

// Catalog is the slice of the specification catalog the engine consumes:
// the probeable endpoint inventory and the per-status response schemas.
type Catalog interface {
	ReadableEndpoints() []catalog.Endpoint
	Schema(method, path string, status int) *openapi3.SchemaRef
}

// Transport issues exactly one probe per call. Implementations categorize
// failures; the engine folds them into FAIL outcomes without retrying.
type Transport interface {
	Send(ctx context.Context, method, url string, body interface{}) (*transport.Response, error)
}

// NamedCheck is a higher-level check layered on top of the per-endpoint
// phase. Checks run after every endpoint check, in registration order, and
// produce exactly one outcome each.
type NamedCheck struct {
	Name string
	Run  func(ctx context.Context) outcome.Outcome
}

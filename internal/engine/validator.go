package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"specprobe/internal/errors"
	"specprobe/internal/transport"
)

// validateResponse checks a probe response against the contract in fixed
// precedence: cross-origin headers first, then JSON well-formedness, then
// schema conformance. The first violated contract is the one reported.
func validateResponse(method string, resp *transport.Response, schema *openapi3.SchemaRef) error {
	if err := validateCORS(method, resp.Header); err != nil {
		return err
	}

	var body interface{}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return errors.New(errors.ErrorTypeJSONBody, "Invalid JSON received")
	}

	if schema != nil && schema.Value != nil {
		if err := schema.Value.VisitJSON(body); err != nil {
			return errors.Wrap(err, errors.ErrorTypeSchema, "Response schema validation error")
		}
	}

	return nil
}

// validateCORS checks the cross-origin headers on a response. Every response
// must name an allowed origin; a preflight (OPTIONS) response must also name
// allowed headers and allowed methods, and the allowed methods must contain
// the probed method.
func validateCORS(method string, header http.Header) error {
	if len(header.Values("Access-Control-Allow-Origin")) == 0 {
		return corsError(header)
	}
	if method == http.MethodOptions {
		if len(header.Values("Access-Control-Allow-Headers")) == 0 {
			return corsError(header)
		}
		allowMethods := header.Values("Access-Control-Allow-Methods")
		if len(allowMethods) == 0 {
			return corsError(header)
		}
		if !strings.Contains(strings.Join(allowMethods, ","), method) {
			return corsError(header)
		}
	}
	return nil
}

func corsError(header http.Header) error {
	return errors.Newf(errors.ErrorTypeCORS, "Incorrect CORS headers: %s", renderHeaders(header))
}

// renderHeaders renders headers deterministically for failure messages.
func renderHeaders(header http.Header) string {
	return fmt.Sprintf("%v", map[string][]string(header))
}

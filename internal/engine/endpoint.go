package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"specprobe/internal/outcome"
	"specprobe/pkg/catalog"
)

// checkBasePath probes a well-known index path and verifies it returns a 200
// JSON array containing the expected entry.
func (e *Engine) checkBasePath(ctx context.Context, baseURL, path, expectation string) outcome.Outcome {
	check := outcome.NewCheck("GET " + path)

	resp, err := e.transport.Send(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return check.Fail("Unable to connect to API: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return check.Fail("Incorrect response code: %d", resp.StatusCode)
	}
	if err := validateCORS(http.MethodGet, resp.Header); err != nil {
		return check.Fail("%v", err)
	}

	var parsed interface{}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return check.Fail("Non-JSON response returned")
	}
	list, ok := parsed.([]interface{})
	if !ok || !containsString(list, expectation) {
		return check.Fail("Response is not an array containing '%s'", expectation)
	}

	return check.Pass()
}

// checkEndpoint runs the conformance check for one readable endpoint. The
// second return is false when the endpoint produces no outcome at all:
// omitted endpoints, endpoints that never return 200, and endpoints with
// more than one path parameter, which cannot be resolved automatically.
func (e *Engine) checkEndpoint(ctx context.Context, inst *APIInstance, cache *subresourceCache, ep catalog.Endpoint) (outcome.Outcome, bool) {
	if !ep.HasStatus(http.StatusOK) || e.omit[ep.Path] {
		return outcome.Outcome{}, false
	}

	var check *outcome.Check
	var url string

	switch ep.ParamCount() {
	case 0:
		url = strings.TrimRight(inst.URL, "/") + ep.Path
		check = outcome.NewCheck(e.checkName(inst, ep.Method, strings.TrimRight(ep.Path, "/")))

	case 1:
		parent := parentPath(ep.Path)
		id, ok := cache.First(parent)
		if !ok {
			// Nothing was discovered under the parent path, so there is no
			// URL to probe. Untestable, not a failure.
			check = outcome.NewCheck(e.checkName(inst, ep.Method, strings.TrimRight(ep.Path, "/")))
			return check.NA("No resources found to perform this test"), true
		}
		materialized := materialize(ep.Path, ep.Params[0], id)
		url = strings.TrimRight(inst.URL, "/") + materialized
		check = outcome.NewCheck(e.checkName(inst, ep.Method, materialized))

	default:
		e.logger.Debug().Str("endpoint", ep.String()).Msg("skipping endpoint with multiple path parameters")
		return outcome.Outcome{}, false
	}

	resp, err := e.transport.Send(ctx, ep.Method, url, nil)
	if err != nil {
		return check.Fail("%v", err), true
	}

	if resp.StatusCode != http.StatusOK {
		return check.Fail("Incorrect response code: %d", resp.StatusCode), true
	}

	// Keyed by this endpoint's own template: list endpoints feed the
	// parameterized endpoints nested under them.
	cache.Harvest(ep.Path, resp.Body)

	schema := inst.Catalog.Schema(ep.Method, ep.Path, resp.StatusCode)
	if schema == nil || schema.Value == nil {
		return check.Manual("Test suite unable to locate schema"), true
	}

	if err := validateResponse(ep.Method, resp, schema); err != nil {
		return check.Fail("%v", err), true
	}

	return check.Pass(), true
}

// parentPath strips the trailing templated segment from a path template:
// "/receivers/{receiverId}" becomes "/receivers".
func parentPath(template string) string {
	prefix := template
	if i := strings.IndexByte(template, '{'); i >= 0 {
		prefix = template[:i]
	}
	return strings.TrimRight(prefix, "/")
}

// materialize substitutes an identifier for every occurrence of the named
// placeholder in a path template.
func materialize(template, param, id string) string {
	return strings.ReplaceAll(template, "{"+param+"}", id)
}

func containsString(list []interface{}, want string) bool {
	for _, entry := range list {
		if s, ok := entry.(string); ok && s == want {
			return true
		}
	}
	return false
}

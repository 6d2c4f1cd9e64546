// Package catalog loads an OpenAPI description and exposes the endpoint
// inventory a conformance run probes. Descriptors are extracted and checked
// once at load time so the engine never deals with a malformed endpoint.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	"specprobe/internal/errors"
)

// HTTPClient is the slice of http.Client used to fetch remote descriptions.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Endpoint describes one probeable operation. Params holds the path
// parameter names in template occurrence order; Statuses holds the response
// codes the description declares, ascending.
type Endpoint struct {
	Method   string
	Path     string
	Params   []string
	Statuses []int
}

// HasStatus reports whether the description declares the given response code.
func (e Endpoint) HasStatus(code int) bool {
	for _, s := range e.Statuses {
		if s == code {
			return true
		}
	}
	return false
}

// ParamCount returns the number of path parameters.
func (e Endpoint) ParamCount() int {
	return len(e.Params)
}

// String renders the endpoint as "METHOD /path".
func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// Catalog is a loaded API description.
type Catalog struct {
	doc        *openapi3.T
	endpoints  []Endpoint
	httpClient HTTPClient
	logger     zerolog.Logger
}

// Option configures catalog loading.
type Option func(*Catalog)

// WithHTTPClient injects the client used for http(s) description URLs.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Catalog) {
		c.httpClient = client
	}
}

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

func newCatalog(opts ...Option) *Catalog {
	c := &Catalog{
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "catalog").Logger()
	return c
}

// NewFromBytes loads a catalog from raw YAML or JSON.
func NewFromBytes(data []byte, opts ...Option) (*Catalog, error) {
	c := newCatalog(opts...)
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCatalog, "parsing API description")
	}
	if err := c.index(doc); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromFile loads a catalog from a local file.
func NewFromFile(path string, opts ...Option) (*Catalog, error) {
	c := newCatalog(opts...)
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCatalog, "loading API description").
			WithContext("source", path)
	}
	if err := c.index(doc); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromURL loads a catalog from a file:// or http(s):// URL.
func NewFromURL(ctx context.Context, rawURL string, opts ...Option) (*Catalog, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCatalog, "parsing description URL").
			WithContext("source", rawURL)
	}

	if parsed.Scheme == "file" {
		filePath := parsed.Path
		if parsed.Host != "" {
			filePath = parsed.Host + parsed.Path
		}
		if !filepath.IsAbs(filePath) {
			filePath, err = filepath.Abs(filePath)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeCatalog, "resolving description path")
			}
		}
		return NewFromFile(filePath, opts...)
	}

	c := newCatalog(opts...)
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCatalog, "building description request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCatalog, "fetching API description").
			WithContext("source", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrorTypeCatalog, "fetching API description: unexpected status code %d", resp.StatusCode).
			WithContext("source", rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCatalog, "reading API description")
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromData(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCatalog, "parsing API description").
			WithContext("source", rawURL)
	}
	if err := c.index(doc); err != nil {
		return nil, err
	}
	return c, nil
}

// index extracts and validates every endpoint descriptor from the document.
func (c *Catalog) index(doc *openapi3.T) error {
	c.doc = doc

	var endpoints []Endpoint
	if doc.Paths != nil {
		for path, pathItem := range doc.Paths.Map() {
			for method, op := range pathItem.Operations() {
				endpoint, err := buildEndpoint(strings.ToUpper(method), path, pathItem, op)
				if err != nil {
					return err
				}
				endpoints = append(endpoints, endpoint)
			}
		}
	}

	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return methodOrder(endpoints[i].Method) < methodOrder(endpoints[j].Method)
	})

	c.endpoints = endpoints
	c.logger.Debug().Int("endpoints", len(endpoints)).Msg("catalog indexed")
	return nil
}

// buildEndpoint lifts one operation into a descriptor and checks that its
// template placeholders match the declared path parameters.
func buildEndpoint(method, path string, pathItem *openapi3.PathItem, op *openapi3.Operation) (Endpoint, error) {
	params := templateParams(path)

	declared := make(map[string]bool)
	for _, ref := range mergeParameters(pathItem.Parameters, op.Parameters) {
		if ref.Value != nil && ref.Value.In == openapi3.ParameterInPath {
			declared[ref.Value.Name] = true
		}
	}

	if len(params) != len(declared) {
		return Endpoint{}, errors.Newf(errors.ErrorTypeCatalog,
			"endpoint %s %s: template names %d parameters but %d are declared",
			method, path, len(params), len(declared))
	}
	for _, name := range params {
		if !declared[name] {
			return Endpoint{}, errors.Newf(errors.ErrorTypeCatalog,
				"endpoint %s %s: template parameter {%s} is not declared",
				method, path, name)
		}
	}

	var statuses []int
	if op.Responses != nil {
		for key := range op.Responses.Map() {
			code, err := strconv.Atoi(key)
			if err != nil {
				// "default" and range keys carry no probeable status.
				continue
			}
			statuses = append(statuses, code)
		}
	}
	sort.Ints(statuses)

	return Endpoint{
		Method:   method,
		Path:     path,
		Params:   params,
		Statuses: statuses,
	}, nil
}

// templateParams returns the {name} placeholders in occurrence order.
func templateParams(path string) []string {
	var params []string
	for i := 0; i < len(path); i++ {
		if path[i] != '{' {
			continue
		}
		end := strings.IndexByte(path[i:], '}')
		if end < 0 {
			break
		}
		params = append(params, path[i+1:i+end])
		i += end
	}
	return params
}

// mergeParameters combines path level and operation level parameters, with
// operation level definitions taking precedence.
func mergeParameters(pathParams, opParams openapi3.Parameters) []*openapi3.ParameterRef {
	paramMap := make(map[string]*openapi3.ParameterRef)
	var order []string

	add := func(refs openapi3.Parameters) {
		for _, ref := range refs {
			if ref.Value == nil || ref.Value.Name == "" || ref.Value.In == "" {
				continue
			}
			key := fmt.Sprintf("%s:%s", ref.Value.In, ref.Value.Name)
			if _, seen := paramMap[key]; !seen {
				order = append(order, key)
			}
			paramMap[key] = ref
		}
	}
	add(pathParams)
	add(opParams)

	result := make([]*openapi3.ParameterRef, 0, len(order))
	for _, key := range order {
		result = append(result, paramMap[key])
	}
	return result
}

func methodOrder(method string) int {
	order := map[string]int{
		"GET":     0,
		"POST":    1,
		"PUT":     2,
		"PATCH":   3,
		"DELETE":  4,
		"HEAD":    5,
		"OPTIONS": 6,
	}
	if v, ok := order[method]; ok {
		return v
	}
	return 999
}

// Endpoints returns every endpoint, sorted by path then method.
func (c *Catalog) Endpoints() []Endpoint {
	return c.endpoints
}

// ReadableEndpoints returns the endpoints a conformance run probes: the safe
// methods GET, HEAD and OPTIONS, in deterministic order.
func (c *Catalog) ReadableEndpoints() []Endpoint {
	var reads []Endpoint
	for _, e := range c.endpoints {
		switch e.Method {
		case "GET", "HEAD", "OPTIONS":
			reads = append(reads, e)
		}
	}
	return reads
}

// Schema returns the JSON response schema declared for an endpoint and
// status, or nil when the description carries none.
func (c *Catalog) Schema(method, path string, status int) *openapi3.SchemaRef {
	if c.doc == nil || c.doc.Paths == nil {
		return nil
	}
	pathItem := c.doc.Paths.Map()[path]
	if pathItem == nil {
		return nil
	}
	op := pathItem.GetOperation(strings.ToUpper(method))
	if op == nil || op.Responses == nil {
		return nil
	}
	respRef := op.Responses.Map()[strconv.Itoa(status)]
	if respRef == nil || respRef.Value == nil {
		return nil
	}
	media := respRef.Value.Content.Get("application/json")
	if media == nil {
		return nil
	}
	return media.Schema
}

// Title returns the description's title, if any.
func (c *Catalog) Title() string {
	if c.doc == nil || c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Title
}

// Version returns the description's version, if any.
func (c *Catalog) Version() string {
	if c.doc == nil || c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Version
}

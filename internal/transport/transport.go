// Package transport issues conformance probes. Every probe is exactly one
// HTTP exchange: no retries, no caching, no connection-level cleverness that
// would make a second attempt observable to the deployment under audit.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"specprobe/internal/errors"
)

const (
	// DefaultTimeout bounds a single probe exchange.
	DefaultTimeout = 10 * time.Second

	// redirectCeiling is the number of redirects tolerated before a probe is
	// classified as misbehaving.
	redirectCeiling = 10

	userAgent = "specprobe"
)

// errRedirectCeiling marks a redirect chain that exceeded the ceiling so the
// failure can be categorized after http.Client wraps it.
var errRedirectCeiling = stderrors.New("redirect ceiling exceeded")

// Response is a fully drained probe response. The body is read to completion
// and the connection released before the caller sees it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client sends probes over HTTPS/HTTP, or over AWS Lambda invocation for
// lambda:// URLs. Safe for reuse across probes; construction-time options
// only, no per-call configuration.
type Client struct {
	httpClient   *http.Client
	timeout      time.Duration
	bearerToken  string
	sigv4Service string
	logger       zerolog.Logger

	lambda lambdaDispatcher
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithTimeout overrides the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient injects the underlying HTTP client. The redirect ceiling is
// installed on it; any CheckRedirect already present is replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBearerToken attaches an Authorization header to every probe.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.bearerToken = token
	}
}

// WithSigV4 signs every non-lambda probe with AWS SigV4 for the given
// service name.
func WithSigV4(service string) Option {
	return func(c *Client) {
		c.sigv4Service = service
	}
}

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLambdaInvoker injects the Lambda invocation client, primarily for
// tests. The default client is constructed lazily from the ambient AWS
// configuration on the first lambda:// probe.
func WithLambdaInvoker(inv LambdaInvoker) Option {
	return func(c *Client) {
		c.lambda.invoker = inv
	}
}

// New creates a probe client.
func New(opts ...Option) *Client {
	c := &Client{
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.httpClient.Timeout = c.timeout
	c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= redirectCeiling {
			return errRedirectCeiling
		}
		return nil
	}
	c.logger = c.logger.With().Str("component", "transport").Logger()
	return c
}

// Send performs exactly one probe. A non-nil body is JSON-encoded. The
// returned error is always a categorized *errors.ProbeError; the response is
// non-nil only when the exchange completed.
func (c *Client) Send(ctx context.Context, method, rawURL string, body interface{}) (*Response, error) {
	var reader io.Reader
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeRequest, "Unable to encode request body").
				WithContext("url", rawURL)
		}
		payload = data
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeRequest, "Unable to build request").
			WithContext("url", rawURL)
	}

	// Every probe doubles as a CORS probe so the validator can audit the
	// Access-Control-Allow-* response headers.
	req.Header.Set("Access-Control-Request-Method", method)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	if req.URL.Scheme == "lambda" {
		return c.sendLambda(ctx, req, payload)
	}

	if c.sigv4Service != "" {
		if err := c.signSigV4(ctx, req, payload); err != nil {
			return nil, err
		}
	}

	c.logger.Debug().Str("method", method).Str("url", rawURL).Msg("sending probe")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		perr := categorize(err)
		perr.WithContext("url", rawURL)
		c.logger.Debug().Str("url", rawURL).Str("category", string(perr.Type)).Msg("probe failed")
		return nil, perr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeRequest, "Unable to read response body").
			WithContext("url", rawURL)
	}

	c.logger.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Msg("probe completed")

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// categorize maps a request error onto exactly one failure category. The
// timeout and redirect categories carry fixed descriptions; connection and
// request failures carry the underlying error text.
func categorize(err error) *errors.ProbeError {
	var uerr *url.Error
	if stderrors.As(err, &uerr) {
		switch {
		case stderrors.Is(uerr.Err, errRedirectCeiling):
			return errors.New(errors.ErrorTypeTooManyRedirects, "Too many redirects").
				WithContext("cause", uerr.Err.Error())
		case uerr.Timeout() || stderrors.Is(uerr.Err, context.DeadlineExceeded):
			return errors.New(errors.ErrorTypeTimeout, "Connection timeout").
				WithContext("cause", uerr.Err.Error())
		}
		if isConnectionRefusal(uerr.Err) {
			return errors.Wrap(uerr.Err, errors.ErrorTypeConnection, "Connection error")
		}
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.New(errors.ErrorTypeTimeout, "Connection timeout").
			WithContext("cause", err.Error())
	}
	return errors.Wrap(err, errors.ErrorTypeRequest, "Request error")
}

// isConnectionRefusal reports whether the error is a dial or socket level
// failure rather than a protocol one.
func isConnectionRefusal(err error) bool {
	var operr *net.OpError
	if stderrors.As(err, &operr) {
		return true
	}
	var dnsErr *net.DNSError
	return stderrors.As(err, &dnsErr)
}

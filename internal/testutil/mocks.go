package testutil

import (
	"context"
	"net/http"

	"specprobe/internal/errors"
	"specprobe/internal/transport"
)

// ProbeCall records one probe issued through a RecordingTransport.
type ProbeCall struct {
	Method string
	URL    string
	Body   interface{}
}

// RecordingTransport is a scripted transport double. Responses and failures
// are stubbed per method+URL; every call is recorded so tests can assert
// which probes were (and were not) issued.
type RecordingTransport struct {
	Calls     []ProbeCall
	responses map[string]*transport.Response
	failures  map[string]error
}

// NewRecordingTransport creates an empty recording transport. Unstubbed
// probes fail with a request-category error naming the missing stub.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{
		Calls:     make([]ProbeCall, 0),
		responses: make(map[string]*transport.Response),
		failures:  make(map[string]error),
	}
}

// Stub registers the response returned for a method+URL pair.
func (t *RecordingTransport) Stub(method, url string, resp *transport.Response) *RecordingTransport {
	t.responses[method+" "+url] = resp
	return t
}

// StubError registers a transport failure for a method+URL pair.
func (t *RecordingTransport) StubError(method, url string, err error) *RecordingTransport {
	t.failures[method+" "+url] = err
	return t
}

// Send implements the transport contract against the scripted stubs.
func (t *RecordingTransport) Send(ctx context.Context, method, url string, body interface{}) (*transport.Response, error) {
	t.Calls = append(t.Calls, ProbeCall{Method: method, URL: url, Body: body})

	key := method + " " + url
	if err, ok := t.failures[key]; ok {
		return nil, err
	}
	if resp, ok := t.responses[key]; ok {
		return resp, nil
	}
	return nil, errors.Newf(errors.ErrorTypeRequest, "no stubbed response for %s", key)
}

// Probed reports whether any recorded call matched method and url.
func (t *RecordingTransport) Probed(method, url string) bool {
	for _, call := range t.Calls {
		if call.Method == method && call.URL == url {
			return true
		}
	}
	return false
}

// URLs returns the probed URLs in call order.
func (t *RecordingTransport) URLs() []string {
	urls := make([]string, 0, len(t.Calls))
	for _, call := range t.Calls {
		urls = append(urls, call.URL)
	}
	return urls
}

// CORSHeaders returns the response headers a conforming API attaches to
// every response.
func CORSHeaders() http.Header {
	header := make(http.Header)
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	header.Set("Access-Control-Allow-Methods", "GET, PUT, POST, HEAD, OPTIONS, DELETE")
	header.Set("Content-Type", "application/json")
	return header
}

// JSONResponse builds a response carrying conforming CORS headers and the
// given JSON body.
func JSONResponse(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode: status,
		Header:     CORSHeaders(),
		Body:       []byte(body),
	}
}

// BareResponse builds a response with no CORS headers, for exercising
// header validation failures.
func BareResponse(status int, body string) *transport.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &transport.Response{
		StatusCode: status,
		Header:     header,
		Body:       []byte(body),
	}
}

package engine

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"specprobe/internal/errors"
	"specprobe/internal/testutil"
	"specprobe/internal/transport"
)

func deviceSchemaRef() *openapi3.SchemaRef {
	schema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema())
	schema.Required = []string{"id"}
	return openapi3.NewSchemaRef("", schema)
}

func corsResponse(status int, body string) *transport.Response {
	header := make(http.Header)
	header.Set("Access-Control-Allow-Origin", "*")
	return &transport.Response{StatusCode: status, Header: header, Body: []byte(body)}
}

func TestValidateCORS(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		headers map[string]string
		wantErr bool
	}{
		{
			name:    "origin present",
			method:  http.MethodGet,
			headers: map[string]string{"Access-Control-Allow-Origin": "*"},
		},
		{
			name:    "origin missing",
			method:  http.MethodGet,
			headers: map[string]string{"Content-Type": "application/json"},
			wantErr: true,
		},
		{
			name:   "preflight with all headers",
			method: http.MethodOptions,
			headers: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Headers": "Content-Type",
				"Access-Control-Allow-Methods": "GET, OPTIONS",
			},
		},
		{
			name:   "preflight missing allow-headers",
			method: http.MethodOptions,
			headers: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, OPTIONS",
			},
			wantErr: true,
		},
		{
			name:   "preflight missing allow-methods",
			method: http.MethodOptions,
			headers: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Headers": "Content-Type",
			},
			wantErr: true,
		},
		{
			name:   "preflight method not allowed",
			method: http.MethodOptions,
			headers: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Headers": "Content-Type",
				"Access-Control-Allow-Methods": "GET, POST",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := make(http.Header)
			for key, value := range tt.headers {
				header.Set(key, value)
			}

			err := validateCORS(tt.method, header)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected CORS error, got nil")
				}
				if !strings.HasPrefix(err.Error(), "Incorrect CORS headers: ") {
					t.Fatalf("unexpected message: %q", err.Error())
				}
				if !errors.IsType(err, errors.ErrorTypeCORS) {
					t.Fatalf("expected CORS category, got %v", errors.GetType(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateCORSEmptyValueCountsAsPresent(t *testing.T) {
	// Header presence is what the check asserts; an empty value is still a
	// present header.
	header := http.Header{"Access-Control-Allow-Origin": {""}}

	if err := validateCORS(http.MethodGet, header); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponseReportsCORSBeforeJSON(t *testing.T) {
	resp := &transport.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       []byte(`not json`),
	}

	err := validateResponse(http.MethodGet, resp, deviceSchemaRef())
	if !errors.IsType(err, errors.ErrorTypeCORS) {
		t.Fatalf("expected CORS violation to win, got %v", err)
	}
}

func TestValidateResponseRejectsInvalidJSON(t *testing.T) {
	resp := corsResponse(http.StatusOK, `<html>not json</html>`)

	err := validateResponse(http.MethodGet, resp, deviceSchemaRef())
	if err == nil || err.Error() != "Invalid JSON received" {
		t.Fatalf("want %q, got %v", "Invalid JSON received", err)
	}
	if !errors.IsType(err, errors.ErrorTypeJSONBody) {
		t.Fatalf("expected JSON body category, got %v", errors.GetType(err))
	}
}

func TestValidateResponseSchemaViolation(t *testing.T) {
	resp := corsResponse(http.StatusOK, `{"label": "no id field"}`)

	err := validateResponse(http.MethodGet, resp, deviceSchemaRef())
	if err == nil {
		t.Fatal("expected schema violation")
	}
	if !strings.HasPrefix(err.Error(), "Response schema validation error: ") {
		t.Fatalf("violation message must name the conformance error, got %q", err.Error())
	}
	if !errors.IsType(err, errors.ErrorTypeSchema) {
		t.Fatalf("expected schema category, got %v", errors.GetType(err))
	}
}

func TestValidateResponseConformantBody(t *testing.T) {
	resp := corsResponse(http.StatusOK, `{"id": "alpha", "label": "Device alpha"}`)

	if err := validateResponse(http.MethodGet, resp, deviceSchemaRef()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponseWithoutSchema(t *testing.T) {
	resp := corsResponse(http.StatusOK, `{"anything": true}`)

	if err := validateResponse(http.MethodGet, resp, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponseAgainstLiveMisbehavior(t *testing.T) {
	srv := testutil.NewMisbehavingServer()
	defer srv.Close()

	client := transport.New()

	tests := []struct {
		name     string
		path     string
		wantType errors.ErrorType
	}{
		{name: "missing CORS headers", path: "/nocors", wantType: errors.ErrorTypeCORS},
		{name: "HTML instead of JSON", path: "/notjson", wantType: errors.ErrorTypeJSONBody},
		{name: "body violating the schema", path: "/badshape", wantType: errors.ErrorTypeSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Send(context.Background(), http.MethodGet, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			verr := validateResponse(http.MethodGet, resp, deviceSchemaRef())
			if verr == nil {
				t.Fatal("expected a validation error")
			}
			if !errors.IsType(verr, tt.wantType) {
				t.Errorf("category = %s, want %s (%v)", errors.GetType(verr), tt.wantType, verr)
			}
		})
	}
}

package testutil

import (
	"net/http"
	"net/http/httptest"
)

// NewConformantServer creates a test server implementing the device registry
// API the way a conforming deployment would: namespace and version indexes
// at the well-known paths, CORS headers on every response, and bodies
// matching the schemas in DeviceAPIDoc. The OpenAPI description itself is
// served at /openapi.json.
func NewConformantServer(namespace, name, version string) *httptest.Server {
	base := namespace + "/" + name + "/" + version
	mux := http.NewServeMux()

	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, DeviceAPIDoc)
	})

	mux.HandleFunc(namespace+"/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `["`+name+`/"]`)
	})
	mux.HandleFunc(namespace+"/"+name+"/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `["`+version+`/"]`)
	})

	mux.HandleFunc(base+"/devices", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, DeviceListBody)
	})
	mux.HandleFunc(base+"/devices/alpha", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, DeviceAlphaBody)
	})
	mux.HandleFunc(base+"/devices/beta", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id": "beta", "label": "Device beta"}`)
	})
	mux.HandleFunc(base+"/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthBody)
	})
	mux.HandleFunc(base+"/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, MetricsBody)
	})
	mux.HandleFunc(base+"/queue", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusAccepted, `{"position": 3}`)
	})

	return httptest.NewServer(mux)
}

// NewMisbehavingServer creates a test server exhibiting the conformance
// failures the engine must report: missing CORS headers, non-JSON bodies,
// wrong status codes and bodies violating their schema.
func NewMisbehavingServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/nocors", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "alpha"}`))
	})

	mux.HandleFunc("/notjson", func(w http.ResponseWriter, r *http.Request) {
		setCORS(w)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html><body>device registry</body></html>`))
	})

	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error": "Not Found"}`)
	})

	mux.HandleFunc("/badshape", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id": 12}`)
	})

	return httptest.NewServer(mux)
}

func setCORS(w http.ResponseWriter) {
	for key, values := range CORSHeaders() {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	setCORS(w)
	w.WriteHeader(status)
	w.Write([]byte(body))
}

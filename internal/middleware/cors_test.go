package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func doCORSRequest(allowed []string, method, origin string) *httptest.ResponseRecorder {
	handler := CORS(allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(method, "/api/session", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowedOrigin(t *testing.T) {
	rec := doCORSRequest([]string{"https://planner.example.com"}, http.MethodGet, "https://planner.example.com")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://planner.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("explicit origins must allow credentials, got %q", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	rec := doCORSRequest([]string{"https://planner.example.com"}, http.MethodGet, "https://evil.example.com")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin must get no CORS headers, got %q", got)
	}
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	rec := doCORSRequest([]string{"*"}, http.MethodGet, "https://anywhere.example.com")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("wildcard matches must not allow credentials, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := doCORSRequest([]string{"https://planner.example.com"}, http.MethodOptions, "https://planner.example.com")

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d", rec.Code)
	}
	methods := rec.Header().Get("Access-Control-Allow-Methods")
	if methods == "" {
		t.Error("preflight must advertise allowed methods")
	}
}

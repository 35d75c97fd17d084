package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{name: "listed origin", allowed: []string{"https://app.example.com/"}, origin: "https://app.example.com", wantStatus: http.StatusTeapot, wantOrigin: "https://app.example.com"},
		{name: "unlisted origin", allowed: []string{"https://app.example.com"}, origin: "https://evil.example.com", wantStatus: http.StatusTeapot},
		{name: "wildcard echoes origin", allowed: []string{"*"}, origin: "https://any.example.com", wantStatus: http.StatusTeapot, wantOrigin: "https://any.example.com"},
		{name: "preflight answered", allowed: []string{"*"}, origin: "https://any.example.com", preflight: true, wantStatus: http.StatusNoContent, wantOrigin: "https://any.example.com"},
		{name: "preflight from unlisted origin", allowed: []string{"https://app.example.com"}, origin: "https://evil.example.com", preflight: true, wantStatus: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			method := http.MethodGet
			if tc.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/v1/apps", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("allow-origin %q, want %q", got, tc.wantOrigin)
			}
			if tc.preflight && tc.wantOrigin != "" && rec.Header().Get("Access-Control-Allow-Methods") == "" {
				t.Fatalf("preflight should list allowed methods")
			}
		})
	}
}

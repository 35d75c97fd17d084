package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "propagates caller id", incoming: "abc-123", keep: true},
		{name: "mints when missing"},
		{name: "replaces unsafe id", incoming: "bad id\nwith newline"},
		{name: "replaces oversized id", incoming: strings.Repeat("a", 65)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set("X-Request-ID", tc.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seen == "" || rec.Header().Get("X-Request-ID") != seen {
				t.Fatalf("context id %q and header %q must match", seen, rec.Header().Get("X-Request-ID"))
			}
			if tc.keep != (seen == tc.incoming) {
				t.Fatalf("incoming %q, got %q", tc.incoming, seen)
			}
		})
	}
}

func TestLoggerWritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	h := RequestID(Logger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	})))
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	var inner, outer map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &inner); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &outer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inner["request_id"] != "rid-1" {
		t.Fatalf("handler logger should carry request id, got %v", inner)
	}
	if outer["level"] != "error" || outer["status"] != float64(503) || outer["bytes"] != float64(4) || outer["path"] != "/v1/me" {
		t.Fatalf("unexpected request line %v", outer)
	}
}

func TestLoggerIncludesAuthenticatedUser(t *testing.T) {
	token, err := SignJWT("s", TokenClaims{RegisteredClaims: jwtSubject("u42")}, 0)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	var buf bytes.Buffer
	h := Logger(zerolog.New(&buf))(AuthJWT("s")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["user_id"] != "u42" {
		t.Fatalf("expected user_id on request line, got %v", line)
	}
}

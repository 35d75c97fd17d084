package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func protected(t *testing.T, seen *Identity) http.Handler {
	return AuthJWT(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing from context")
		}
		*seen = id
		if got := LocaleFromContext(r.Context()); got != "id" {
			t.Fatalf("locale claim should override, got %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuthJWTAcceptsValidToken(t *testing.T) {
	token, err := SignJWT(testSecret, TokenClaims{
		Name:             "Ana",
		Email:            "ana@example.com",
		Locale:           "id-ID",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT returned error: %v", err)
	}

	var seen Identity
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected(t, &seen).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if seen.UserID != "u1" || seen.DisplayName != "Ana" || seen.Email != "ana@example.com" {
		t.Fatalf("unexpected identity %+v", seen)
	}
}

func TestAuthJWTRejects(t *testing.T) {
	expired, _ := SignJWT(testSecret, TokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}, 0)
	wrongKey, _ := SignJWT("other-secret", TokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, time.Hour)
	noSubject, _ := SignJWT(testSecret, TokenClaims{}, time.Hour)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"expired":        "Bearer " + expired,
		"wrong key":      "Bearer " + wrongKey,
		"no subject":     "Bearer " + noSubject,
		"alg none":       "Bearer " + none,
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			var seen Identity
			protected(t, &seen).ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			var body map[string]map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"]["code"] != "unauthorized" {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}

func TestWorkerToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	tests := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{name: "match", configured: "s3cret", sent: "s3cret", want: http.StatusNoContent},
		{name: "mismatch", configured: "s3cret", sent: "nope", want: http.StatusUnauthorized},
		{name: "disabled", configured: "", sent: "", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("X-Worker-Token", tt.sent)
			rec := httptest.NewRecorder()
			WorkerToken(tt.configured)(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("got %d want %d", rec.Code, tt.want)
			}
		})
	}
}

func jwtSubject(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{Subject: sub}
}

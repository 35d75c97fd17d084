package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"marketplace/internal/accounts"
	"marketplace/internal/creations"
	"marketplace/internal/domain"
	"marketplace/internal/jobs"
	"marketplace/internal/ledger"
	"marketplace/internal/middleware"
	"marketplace/internal/storage"
)

const maxBodyBytes = 1 << 20

// App bundles the services the HTTP handlers call into.
type App struct {
	Accounts  *accounts.Service
	Ledger    *ledger.Ledger
	Jobs      *jobs.Manager
	Creations *creations.Registry
	Catalog   domain.Catalog
	Media     storage.Resolver
	Logger    zerolog.Logger
	// Ready pings the store for the health endpoint; nil skips the check.
	Ready func(context.Context) error
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body, rejecting unknown fields and trailing data.
func (a *App) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after body", errBadRequest)
	}
	return nil
}

// caller returns the authenticated identity or writes 401.
func (a *App) caller(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		a.fail(w, r, domain.ErrUnauthorized)
		return middleware.Identity{}, false
	}
	return id, true
}

// mediaURL resolves a stored reference; failures are logged and yield "".
func (a *App) mediaURL(ctx context.Context, ref string) string {
	if ref == "" || a.Media == nil {
		return ref
	}
	u, err := a.Media.URL(ctx, ref)
	if err != nil {
		a.Logger.Warn().Err(err).Str("ref", ref).Msg("resolve media url")
		return ""
	}
	return u
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 200 {
		return 0, errors.New("limit must be between 0 and 200")
	}
	return n, nil
}

package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports liveness. When a readiness probe is configured the store is
// pinged too and an unreachable store turns the answer into 503.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	if a.Ready == nil {
		a.json(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.Ready(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("readiness check failed")
		a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "unavailable"})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "store": "ok"})
}

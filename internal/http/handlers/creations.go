package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"marketplace/internal/domain"
)

type startCreationRequest struct {
	AppID string `json:"app_id"`
}

// StartCreation opens a draft for an app; jobs are attached by SubmitJob.
func (a *App) StartCreation(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req startCreationRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.AppID) == "" {
		a.fail(w, r, fmt.Errorf("%w: app_id is required", errBadRequest))
		return
	}
	app, err := a.Catalog.App(r.Context(), req.AppID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.Creations.StartDraft(r.Context(), id.UserID, app.ID, app.Name)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, a.newCreationView(r.Context(), c))
}

func (a *App) ListCreations(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	list, err := a.Creations.ListForOwner(r.Context(), id.UserID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]creationView, 0, len(list))
	for i := range list {
		items = append(items, a.newCreationView(r.Context(), &list[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) GetCreation(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	creationID := chi.URLParam(r, "creationID")
	c, err := a.Creations.Get(r.Context(), creationID)
	if err == nil && c.OwnerID != id.UserID {
		err = fmt.Errorf("creation %s: %w", creationID, domain.ErrNotFound)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.newCreationView(r.Context(), c))
}

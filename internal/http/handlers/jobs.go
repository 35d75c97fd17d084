package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"marketplace/internal/domain"
	"marketplace/internal/jobs"
)

type submitJobRequest struct {
	AppID      string `json:"app_id"`
	CreationID string `json:"creation_id,omitempty"`
	RecipeID   string `json:"recipe_id,omitempty"`
}

// SubmitJob reserves the app's price and queues a job. A short balance is
// answered with 402 and a message naming the cost and the current balance.
func (a *App) SubmitJob(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req submitJobRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.AppID) == "" {
		a.fail(w, r, fmt.Errorf("%w: app_id is required", errBadRequest))
		return
	}
	job, err := a.Jobs.Submit(r.Context(), jobs.SubmitRequest{
		AccountID:  id.UserID,
		AppID:      req.AppID,
		CreationID: req.CreationID,
		RecipeID:   req.RecipeID,
	})
	if errors.Is(err, domain.ErrInsufficientCredits) {
		cost, balance := a.shortfall(r, req.AppID, id.UserID)
		a.fail(w, r, err, cost, balance)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, a.newJobView(r.Context(), job))
}

// shortfall looks up the numbers for the insufficient-credit message. Lookup
// errors leave zeros; the rejection itself already happened.
func (a *App) shortfall(r *http.Request, appID, accountID string) (int64, int64) {
	var cost, balance int64
	if app, err := a.Catalog.App(r.Context(), appID); err == nil {
		cost = app.CreditCost
	}
	if b, err := a.Ledger.Balance(r.Context(), accountID); err == nil {
		balance = b
	}
	return cost, balance
}

func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	list, err := a.Jobs.ListForAccount(r.Context(), id.UserID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]jobView, 0, len(list))
	for i := range list {
		items = append(items, a.newJobView(r.Context(), &list[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GetJob returns a job of the caller. Jobs of other accounts are reported as
// not found.
func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	jobID := chi.URLParam(r, "jobID")
	job, err := a.Jobs.Get(r.Context(), jobID)
	if err == nil && job.AccountID != id.UserID {
		err = fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.newJobView(r.Context(), job))
}

type advanceRequest struct {
	Status   string   `json:"status"`
	Progress *float64 `json:"progress,omitempty"`
	Result   string   `json:"result,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// AdvanceJob is called by the execution backend to move a job through its
// lifecycle.
func (a *App) AdvanceJob(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	status, err := domain.ParseJobStatus(req.Status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	job, err := a.Jobs.Advance(r.Context(), chi.URLParam(r, "jobID"), domain.JobUpdate{
		Status:   status,
		Progress: req.Progress,
		Result:   req.Result,
		Error:    req.Error,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.newJobView(r.Context(), job))
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
}

func (a *App) ReportProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Progress == nil {
		a.fail(w, r, fmt.Errorf("%w: progress is required", errBadRequest))
		return
	}
	job, err := a.Jobs.ReportProgress(r.Context(), chi.URLParam(r, "jobID"), *req.Progress)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.newJobView(r.Context(), job))
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketplace/internal/accounts"
	"marketplace/internal/domain"
)

type sessionResponse struct {
	Account  *accountView `json:"account"`
	Balance  int64        `json:"balance"`
	Created  bool         `json:"created"`
	Degraded bool         `json:"degraded"`
}

func newSessionResponse(s accounts.Session) sessionResponse {
	return sessionResponse{
		Account:  newAccountView(s.Account),
		Balance:  s.Balance(),
		Created:  s.Created,
		Degraded: s.Degraded,
	}
}

// StartSession provisions the caller on first sight. A store outage yields a
// degraded session rather than an error.
func (a *App) StartSession(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	sess, err := a.Accounts.StartSession(r.Context(), accounts.Identity{UserID: id.UserID, ProvisionHints: id.ProvisionHints})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if sess.Created {
		status = http.StatusCreated
	}
	a.json(w, status, newSessionResponse(sess))
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	sess, err := a.Accounts.CurrentSession(r.Context(), id.UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newSessionResponse(sess))
}

func (a *App) MyLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := a.caller(w, r)
	if !ok {
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	entries, err := a.Ledger.History(r.Context(), id.UserID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]ledgerEntryView, 0, len(entries))
	for _, e := range entries {
		items = append(items, ledgerEntryView{
			ID:           e.ID,
			Kind:         string(e.Kind),
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			JobID:        e.JobID,
			Note:         e.Note,
			CreatedAt:    e.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

type grantRequest struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

// Grant tops up an account. Internal route for back-office tooling.
func (a *App) Grant(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	var req grantRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Amount <= 0 {
		a.fail(w, r, fmt.Errorf("grant: %w", domain.ErrInvalidAmount))
		return
	}
	balance, err := a.Ledger.Grant(r.Context(), accountID, req.Amount, req.Note)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"account_id": accountID, "balance": balance})
}

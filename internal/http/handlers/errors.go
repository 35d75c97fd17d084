package handlers

import (
	"errors"
	"net/http"

	"marketplace/internal/domain"
	"marketplace/internal/i18n"
	"marketplace/internal/middleware"
)

var errBadRequest = errors.New("bad request")

type errorMapping struct {
	target error
	status int
	code   string
	key    string
}

// Order matters: ErrAppNotFound is checked before the generic ErrNotFound.
var errorMappings = []errorMapping{
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", i18n.MsgUnauthorized},
	{domain.ErrInsufficientCredits, http.StatusPaymentRequired, "insufficient_credits", i18n.MsgInsufficientCredits},
	{domain.ErrAppNotFound, http.StatusNotFound, "app_not_found", i18n.MsgAppNotFound},
	{domain.ErrNotFound, http.StatusNotFound, "not_found", i18n.MsgNotFound},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition", i18n.MsgInvalidTransition},
	{domain.ErrInvalidProgress, http.StatusUnprocessableEntity, "invalid_progress", i18n.MsgInvalidProgress},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", i18n.MsgInvalidRequest},
	{domain.ErrInvalidIdentity, http.StatusBadRequest, "invalid_identity", i18n.MsgInvalidRequest},
	{errBadRequest, http.StatusBadRequest, "bad_request", i18n.MsgInvalidRequest},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable", i18n.MsgStoreUnavailable},
}

// fail maps err onto a status and a localized message. Unknown errors are
// logged and reported as 500 without detail.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, args ...any) {
	locale := middleware.LocaleFromContext(r.Context())
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "5")
			a.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("store unavailable")
		}
		detail := ""
		if m.status < http.StatusInternalServerError {
			detail = err.Error()
		}
		middleware.WriteError(w, r, m.status, m.code, i18n.Sprintf(locale, m.key, args...), detail)
		return
	}
	a.Logger.Error().Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
	middleware.WriteError(w, r, http.StatusInternalServerError, "internal", i18n.Sprintf(locale, i18n.MsgInternal), "")
}

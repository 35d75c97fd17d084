package middleware

import (
	"encoding/json"
	"net/http"

	"marketplace/internal/i18n"
)

// ErrorDetail is the body of every JSON error response.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError renders {"error": {...}} with an already localized message.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]ErrorDetail{
		"error": {
			Code:      code,
			Message:   message,
			Detail:    detail,
			RequestID: RequestIDFromContext(r.Context()),
		},
	})
}

func writeLocalized(w http.ResponseWriter, r *http.Request, status int, code, key, detail string) {
	WriteError(w, r, status, code, i18n.Sprintf(LocaleFromContext(r.Context()), key), detail)
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	writeLocalized(w, r, http.StatusUnauthorized, "unauthorized", i18n.MsgUnauthorized, detail)
}

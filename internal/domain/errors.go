package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrInvalidProgress     = errors.New("invalid progress")
	ErrAppNotFound         = errors.New("app not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidIdentity     = errors.New("invalid identity")
)

package domain

import "time"

// Account is the per-user record holding the credit balance and usage counters.
// ID is the identity provider's user id.
type Account struct {
	ID               string
	DisplayName      string
	Email            string
	AvatarURL        string
	Balance          int64
	TotalGenerations int64
	TotalRemixes     int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProvisionHints carries optional display fields supplied at session start.
// They only seed a newly created account.
type ProvisionHints struct {
	DisplayName string
	Email       string
	AvatarURL   string
}

// NewAccount builds the initial record for a user seen for the first time.
func NewAccount(userID string, hints ProvisionHints, now time.Time) *Account {
	return &Account{
		ID:          userID,
		DisplayName: hints.DisplayName,
		Email:       hints.Email,
		AvatarURL:   hints.AvatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

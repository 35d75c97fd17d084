package domain

import "time"

// LedgerEntryKind enumerates the reasons a balance changed.
type LedgerEntryKind string

const (
	LedgerEntryReserve LedgerEntryKind = "reserve"
	LedgerEntryRefund  LedgerEntryKind = "refund"
	LedgerEntryGrant   LedgerEntryKind = "grant"
)

// LedgerEntry records a single balance change. Amount is signed: reserves are
// negative, refunds and grants positive.
type LedgerEntry struct {
	ID           string
	AccountID    string
	Kind         LedgerEntryKind
	Amount       int64
	BalanceAfter int64
	JobID        string
	Note         string
	CreatedAt    time.Time
}

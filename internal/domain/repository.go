package domain

import (
	"context"
	"time"
)

// AccountRepository persists accounts.
type AccountRepository interface {
	// CreateIfAbsent inserts acc unless a record with the same id exists and
	// returns the stored record together with whether it was created.
	CreateIfAbsent(ctx context.Context, acc *Account) (*Account, bool, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	// Debit atomically subtracts amount when the balance covers it and returns
	// the new balance, or ErrInsufficientCredits.
	Debit(ctx context.Context, id string, amount int64) (int64, error)
	Credit(ctx context.Context, id string, amount int64) (int64, error)
	IncrementCounters(ctx context.Context, id string, generations, remixes int64) error
}

// JobRepository persists jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	// GetForUpdate reads the job and locks it for the enclosing transaction.
	GetForUpdate(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, job *Job) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Job, error)
	// ListStale returns non-terminal jobs not updated since before.
	ListStale(ctx context.Context, before time.Time, limit int) ([]Job, error)
}

// CreationRepository persists creations together with their attempts.
type CreationRepository interface {
	Create(ctx context.Context, c *Creation) error
	GetByID(ctx context.Context, id string) (*Creation, error)
	GetForUpdate(ctx context.Context, id string) (*Creation, error)
	Update(ctx context.Context, c *Creation) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Creation, error)
}

// LedgerRepository stores the balance audit trail.
type LedgerRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]LedgerEntry, error)
}

// Store groups the repositories owned by the core. WithinTx runs fn against a
// transactional view; calling WithinTx on that view runs fn inline.
type Store interface {
	Accounts() AccountRepository
	Jobs() JobRepository
	Creations() CreationRepository
	Ledger() LedgerRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Catalog is the read-only source of Apps and Recipes.
type Catalog interface {
	App(ctx context.Context, id string) (*App, error)
	Apps(ctx context.Context) ([]App, error)
	Recipe(ctx context.Context, id string) (*Recipe, error)
	Recipes(ctx context.Context, appID string) ([]Recipe, error)
}

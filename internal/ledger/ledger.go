// Package ledger owns account balances. Every balance change is an atomic
// conditional update paired with an audit entry in the same transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace/internal/domain"
	"marketplace/internal/metrics"
)

const defaultHistoryLimit = 50

// Ledger reserves, refunds and grants credits.
type Ledger struct {
	store  domain.Store
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for ledger entries.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns a Ledger operating on store.
func New(store domain.Store, logger zerolog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: logger.With().Str("component", "ledger").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithStore returns a copy of l bound to store. Callers inside a transaction
// use it so the balance change commits with their own writes.
func (l *Ledger) WithStore(store domain.Store) *Ledger {
	cp := *l
	cp.store = store
	return &cp
}

// Balance returns the current balance of an account.
func (l *Ledger) Balance(ctx context.Context, accountID string) (int64, error) {
	acc, err := l.store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", accountID, err)
	}
	return acc.Balance, nil
}

// Reserve debits amount for jobID. It fails with ErrInsufficientCredits
// without touching the balance when the account cannot cover it. A zero
// amount succeeds without writing anything.
func (l *Ledger) Reserve(ctx context.Context, accountID string, amount int64, jobID string) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("reserve %d: %w", amount, domain.ErrInvalidAmount)
	}
	if amount == 0 {
		return l.Balance(ctx, accountID)
	}

	var balance int64
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx domain.Store) error {
		var err error
		balance, err = tx.Accounts().Debit(ctx, accountID, amount)
		if err != nil {
			return err
		}
		return l.append(ctx, tx, accountID, domain.LedgerEntryReserve, -amount, balance, jobID, "")
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			metrics.RecordReserveRejected()
		}
		return 0, fmt.Errorf("reserve %d for %s: %w", amount, accountID, err)
	}
	metrics.RecordCredits(string(domain.LedgerEntryReserve), amount)
	l.logger.Debug().Str("account_id", accountID).Str("job_id", jobID).Int64("amount", amount).Int64("balance", balance).Msg("credits reserved")
	return balance, nil
}

// Refund credits back amount previously reserved for jobID.
func (l *Ledger) Refund(ctx context.Context, accountID string, amount int64, jobID string) (int64, error) {
	balance, err := l.credit(ctx, accountID, amount, domain.LedgerEntryRefund, jobID, "")
	if err != nil {
		return 0, fmt.Errorf("refund %d to %s: %w", amount, accountID, err)
	}
	return balance, nil
}

// Grant adds credits outside the job flow, for example an administrative top-up.
func (l *Ledger) Grant(ctx context.Context, accountID string, amount int64, note string) (int64, error) {
	balance, err := l.credit(ctx, accountID, amount, domain.LedgerEntryGrant, "", note)
	if err != nil {
		return 0, fmt.Errorf("grant %d to %s: %w", amount, accountID, err)
	}
	l.logger.Info().Str("account_id", accountID).Int64("amount", amount).Int64("balance", balance).Str("note", note).Msg("credits granted")
	return balance, nil
}

// History lists the most recent ledger entries of an account.
func (l *Ledger) History(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := l.store.Ledger().ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", accountID, err)
	}
	return entries, nil
}

func (l *Ledger) credit(ctx context.Context, accountID string, amount int64, kind domain.LedgerEntryKind, jobID, note string) (int64, error) {
	if amount < 0 {
		return 0, domain.ErrInvalidAmount
	}
	if amount == 0 {
		return l.Balance(ctx, accountID)
	}
	var balance int64
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx domain.Store) error {
		acc, err := tx.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if amount > math.MaxInt64-acc.Balance {
			return fmt.Errorf("balance %d + %d overflows: %w", acc.Balance, amount, domain.ErrInvalidAmount)
		}
		balance, err = tx.Accounts().Credit(ctx, accountID, amount)
		if err != nil {
			return err
		}
		return l.append(ctx, tx, accountID, kind, amount, balance, jobID, note)
	})
	if err != nil {
		return 0, err
	}
	metrics.RecordCredits(string(kind), amount)
	return balance, nil
}

func (l *Ledger) append(ctx context.Context, tx domain.Store, accountID string, kind domain.LedgerEntryKind, amount, balance int64, jobID, note string) error {
	return tx.Ledger().Append(ctx, &domain.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    accountID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balance,
		JobID:        jobID,
		Note:         note,
		CreatedAt:    l.now(),
	})
}

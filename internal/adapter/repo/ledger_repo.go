package repo

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/infra"
	"marketplace/internal/sqlinline"
)

// LedgerRepositoryPG implements domain.LedgerRepository.
type LedgerRepositoryPG struct {
	db infra.SQLExecutor
}

// NewLedgerRepository creates a new ledger repository backed by PostgreSQL.
func NewLedgerRepository(db infra.SQLExecutor) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{db: db}
}

// Append writes one audit entry.
func (r *LedgerRepositoryPG) Append(ctx context.Context, e *domain.LedgerEntry) error {
	_, err := r.db.Exec(ctx, sqlinline.QLedgerInsert,
		e.ID,
		e.AccountID,
		e.Kind,
		e.Amount,
		e.BalanceAfter,
		e.JobID,
		e.Note,
		e.CreatedAt,
	)
	return classify(err)
}

// ListByAccount returns the newest entries first.
func (r *LedgerRepositoryPG) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, sqlinline.QLedgerByAccount, accountID, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Kind, &e.Amount, &e.BalanceAfter, &e.JobID, &e.Note, &e.CreatedAt); err != nil {
			return nil, classify(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

var _ domain.LedgerRepository = (*LedgerRepositoryPG)(nil)

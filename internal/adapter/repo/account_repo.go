package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"marketplace/internal/domain"
	"marketplace/internal/infra"
	"marketplace/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountRepository backed by PostgreSQL.
type AccountRepositoryPG struct {
	db infra.SQLExecutor
}

// NewAccountRepository creates a new AccountRepositoryPG.
func NewAccountRepository(db infra.SQLExecutor) *AccountRepositoryPG {
	return &AccountRepositoryPG{db: db}
}

// CreateIfAbsent inserts acc with a single conditional insert. When the row
// already exists nothing is written and the stored record is returned.
func (r *AccountRepositoryPG) CreateIfAbsent(ctx context.Context, acc *domain.Account) (*domain.Account, bool, error) {
	row := r.db.QueryRow(ctx, sqlinline.QAccountInsertIfAbsent,
		acc.ID,
		acc.DisplayName,
		acc.Email,
		acc.AvatarURL,
		acc.Balance,
		acc.CreatedAt,
	)
	created, err := scanAccount(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, classify(err)
	}

	existing, err := r.GetByID(ctx, acc.ID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByID fetches an account by user id.
func (r *AccountRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	acc, err := scanAccount(r.db.QueryRow(ctx, sqlinline.QAccountByID, id))
	if err != nil {
		return nil, classify(err)
	}
	return acc, nil
}

// Debit subtracts amount when the balance covers it. A statement that matches
// no row is disambiguated into ErrNotFound or ErrInsufficientCredits.
func (r *AccountRepositoryPG) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, sqlinline.QAccountDebit, id, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, classify(err)
	}
	exists, err := r.exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrInsufficientCredits
}

// Credit adds amount to the balance.
func (r *AccountRepositoryPG) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	if err := r.db.QueryRow(ctx, sqlinline.QAccountCredit, id, amount).Scan(&balance); err != nil {
		return 0, classify(err)
	}
	return balance, nil
}

// IncrementCounters bumps the usage counters.
func (r *AccountRepositoryPG) IncrementCounters(ctx context.Context, id string, generations, remixes int64) error {
	tag, err := r.db.Exec(ctx, sqlinline.QAccountIncrementCounters, id, generations, remixes)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountRepositoryPG) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, sqlinline.QAccountExists, id).Scan(&exists); err != nil {
		return false, classify(err)
	}
	return exists, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	if err := row.Scan(
		&acc.ID,
		&acc.DisplayName,
		&acc.Email,
		&acc.AvatarURL,
		&acc.Balance,
		&acc.TotalGenerations,
		&acc.TotalRemixes,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &acc, nil
}

var _ domain.AccountRepository = (*AccountRepositoryPG)(nil)

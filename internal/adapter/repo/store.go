package repo

import (
	"context"
	"errors"

	crdbpgx "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace/internal/domain"
	"marketplace/internal/infra"
)

// Store implements domain.Store on a pgx pool. Repositories returned by a
// transactional Store run on that transaction.
type Store struct {
	pool   *pgxpool.Pool
	runner *infra.SQLRunner
	inTx   bool
}

// NewStore returns a Store that executes through runner and opens
// transactions on pool.
func NewStore(pool *pgxpool.Pool, runner *infra.SQLRunner) *Store {
	return &Store{pool: pool, runner: runner}
}

func (s *Store) Accounts() domain.AccountRepository   { return NewAccountRepository(s.runner) }
func (s *Store) Jobs() domain.JobRepository           { return NewJobRepository(s.runner) }
func (s *Store) Creations() domain.CreationRepository { return NewCreationRepository(s.runner) }
func (s *Store) Ledger() domain.LedgerRepository      { return NewLedgerRepository(s.runner) }

// WithinTx runs fn in a transaction, retrying it on serialization failures.
// fn may run more than once and must not have side effects outside the store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	if s.pool == nil {
		return errors.New("store has no pool")
	}
	var fnErr error
	err := crdbpgx.ExecuteTx(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		fnErr = fn(ctx, &Store{pool: s.pool, runner: s.runner.WithTx(tx), inTx: true})
		return fnErr
	})
	if err != nil && err == fnErr {
		// Repositories classify their own errors; caller errors pass through.
		return err
	}
	return classify(err)
}

var _ domain.Store = (*Store)(nil)

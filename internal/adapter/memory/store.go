// Package memory provides an in-process domain.Store used for local development
// and tests. All state sits behind one mutex; a transaction holds it for its
// whole duration and restores a snapshot when the callback fails.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"marketplace/internal/domain"
)

type state struct {
	accounts  map[string]domain.Account
	jobs      map[string]domain.Job
	creations map[string]domain.Creation
	ledger    []domain.LedgerEntry
}

func newState() *state {
	return &state{
		accounts:  make(map[string]domain.Account),
		jobs:      make(map[string]domain.Job),
		creations: make(map[string]domain.Creation),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.jobs {
		out.jobs[k] = copyJob(v)
	}
	for k, v := range s.creations {
		out.creations[k] = copyCreation(v)
	}
	out.ledger = append([]domain.LedgerEntry(nil), s.ledger...)
	return out
}

// Store implements domain.Store in memory.
type Store struct {
	mu          *sync.Mutex
	state       *state
	inTx        bool
	unavailable *atomic.Bool
	now         func() time.Time
}

var _ domain.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		mu:          &sync.Mutex{},
		state:       newState(),
		unavailable: &atomic.Bool{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetUnavailable makes every subsequent call fail with domain.ErrStoreUnavailable
// until it is reset. It simulates losing the database.
func (s *Store) SetUnavailable(down bool) {
	s.unavailable.Store(down)
}

func (s *Store) Accounts() domain.AccountRepository   { return accountRepo{s} }
func (s *Store) Jobs() domain.JobRepository           { return jobRepo{s} }
func (s *Store) Creations() domain.CreationRepository { return creationRepo{s} }
func (s *Store) Ledger() domain.LedgerRepository      { return ledgerRepo{s} }

// WithinTx runs fn with exclusive access to the store. Changes made by fn are
// discarded when it returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &Store{mu: s.mu, state: s.state, inTx: true, unavailable: s.unavailable, now: s.now}
	if err := fn(ctx, tx); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}

func (s *Store) check(ctx context.Context) error {
	if s.unavailable.Load() {
		return domain.ErrStoreUnavailable
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) run(ctx context.Context, fn func(st *state) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.state)
}

type accountRepo struct{ s *Store }

func (r accountRepo) CreateIfAbsent(ctx context.Context, acc *domain.Account) (*domain.Account, bool, error) {
	var (
		out     domain.Account
		created bool
	)
	err := r.s.run(ctx, func(st *state) error {
		if existing, ok := st.accounts[acc.ID]; ok {
			out = existing
			return nil
		}
		st.accounts[acc.ID] = *acc
		out, created = *acc, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

func (r accountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var out domain.Account
	err := r.s.run(ctx, func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r accountRepo) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.s.run(ctx, func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		if acc.Balance < amount {
			return domain.ErrInsufficientCredits
		}
		acc.Balance -= amount
		acc.UpdatedAt = r.s.now()
		st.accounts[id] = acc
		balance = acc.Balance
		return nil
	})
	return balance, err
}

func (r accountRepo) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.s.run(ctx, func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		if amount > math.MaxInt64-acc.Balance {
			return domain.ErrInvalidAmount
		}
		acc.Balance += amount
		acc.UpdatedAt = r.s.now()
		st.accounts[id] = acc
		balance = acc.Balance
		return nil
	})
	return balance, err
}

func (r accountRepo) IncrementCounters(ctx context.Context, id string, generations, remixes int64) error {
	return r.s.run(ctx, func(st *state) error {
		acc, ok := st.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		acc.TotalGenerations += generations
		acc.TotalRemixes += remixes
		acc.UpdatedAt = r.s.now()
		st.accounts[id] = acc
		return nil
	})
}

type jobRepo struct{ s *Store }

func copyJob(j domain.Job) domain.Job {
	if j.Progress != nil {
		p := *j.Progress
		j.Progress = &p
	}
	return j
}

func (r jobRepo) Create(ctx context.Context, job *domain.Job) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.jobs[job.ID]; ok {
			return fmt.Errorf("job %s already exists", job.ID)
		}
		st.jobs[job.ID] = copyJob(*job)
		return nil
	})
}

func (r jobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var out domain.Job
	err := r.s.run(ctx, func(st *state) error {
		job, ok := st.jobs[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyJob(job)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is GetByID; the transaction already holds the store lock.
func (r jobRepo) GetForUpdate(ctx context.Context, id string) (*domain.Job, error) {
	return r.GetByID(ctx, id)
}

func (r jobRepo) Update(ctx context.Context, job *domain.Job) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.jobs[job.ID]; !ok {
			return domain.ErrNotFound
		}
		st.jobs[job.ID] = copyJob(*job)
		return nil
	})
}

func (r jobRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Job, error) {
	var out []domain.Job
	err := r.s.run(ctx, func(st *state) error {
		for _, job := range st.jobs {
			if job.AccountID == accountID {
				out = append(out, copyJob(job))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, limit), nil
}

func (r jobRepo) ListStale(ctx context.Context, before time.Time, limit int) ([]domain.Job, error) {
	var out []domain.Job
	err := r.s.run(ctx, func(st *state) error {
		for _, job := range st.jobs {
			if !job.Status.IsTerminal() && job.UpdatedAt.Before(before) {
				out = append(out, copyJob(job))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return truncate(out, limit), nil
}

type creationRepo struct{ s *Store }

func copyCreation(c domain.Creation) domain.Creation {
	c.Attempts = append([]domain.CreationAttempt(nil), c.Attempts...)
	return c
}

func (r creationRepo) Create(ctx context.Context, c *domain.Creation) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.creations[c.ID]; ok {
			return fmt.Errorf("creation %s already exists", c.ID)
		}
		st.creations[c.ID] = copyCreation(*c)
		return nil
	})
}

func (r creationRepo) GetByID(ctx context.Context, id string) (*domain.Creation, error) {
	var out domain.Creation
	err := r.s.run(ctx, func(st *state) error {
		c, ok := st.creations[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = copyCreation(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r creationRepo) GetForUpdate(ctx context.Context, id string) (*domain.Creation, error) {
	return r.GetByID(ctx, id)
}

func (r creationRepo) Update(ctx context.Context, c *domain.Creation) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.creations[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.creations[c.ID] = copyCreation(*c)
		return nil
	})
}

func (r creationRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Creation, error) {
	var out []domain.Creation
	err := r.s.run(ctx, func(st *state) error {
		for _, c := range st.creations {
			if c.OwnerID == ownerID {
				out = append(out, copyCreation(c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return truncate(out, limit), nil
}

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	return r.s.run(ctx, func(st *state) error {
		st.ledger = append(st.ledger, *entry)
		return nil
	})
}

func (r ledgerRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := r.s.run(ctx, func(st *state) error {
		for i := len(st.ledger) - 1; i >= 0; i-- {
			if st.ledger[i].AccountID == accountID {
				out = append(out, st.ledger[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return truncate(out, limit), nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

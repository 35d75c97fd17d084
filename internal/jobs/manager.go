// Package jobs runs the job state machine. Submission reserves credits, a
// failed job gets its reservation back and a completed job is counted and
// recorded on its creation. Each step is one store transaction holding the
// job row lock, so steps on the same job are serialized.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace/internal/creations"
	"marketplace/internal/domain"
	"marketplace/internal/ledger"
	"marketplace/internal/metrics"
)

const (
	defaultListLimit = 50
	// TimeoutError is the error recorded on jobs failed by ExpireStale.
	TimeoutError = "timed out"
)

// SubmitRequest asks to run an App for an account. CreationID attaches the
// job to an existing creation (a regeneration); RecipeID marks it a remix.
type SubmitRequest struct {
	AccountID  string
	AppID      string
	CreationID string
	RecipeID   string
}

// Manager coordinates the ledger, the job store and the creation registry.
type Manager struct {
	store     domain.Store
	catalog   domain.Catalog
	ledger    *ledger.Ledger
	creations *creations.Registry
	logger    zerolog.Logger
	now       func() time.Time
}

// NewManager wires a Manager.
func NewManager(store domain.Store, catalog domain.Catalog, l *ledger.Ledger, registry *creations.Registry, logger zerolog.Logger) *Manager {
	return &Manager{
		store:     store,
		catalog:   catalog,
		ledger:    l,
		creations: registry,
		logger:    logger.With().Str("component", "jobs").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit reserves the app's price and creates a queued job. Nothing is
// written when the reservation fails.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (*domain.Job, error) {
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, domain.ErrInvalidIdentity
	}
	app, err := m.catalog.App(ctx, req.AppID)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if req.RecipeID != "" {
		recipe, err := m.catalog.Recipe(ctx, req.RecipeID)
		if err != nil {
			return nil, fmt.Errorf("submit: %w", err)
		}
		if recipe.AppID != app.ID {
			return nil, fmt.Errorf("submit: recipe %s belongs to app %s: %w", recipe.ID, recipe.AppID, domain.ErrNotFound)
		}
	}

	now := m.now()
	job := &domain.Job{
		ID:         uuid.NewString(),
		AccountID:  req.AccountID,
		AppID:      app.ID,
		CreationID: req.CreationID,
		RecipeID:   req.RecipeID,
		Status:     domain.JobStatusQueued,
		CreditCost: app.CreditCost,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = m.store.WithinTx(ctx, func(ctx context.Context, tx domain.Store) error {
		if job.CreationID != "" {
			c, err := tx.Creations().GetForUpdate(ctx, job.CreationID)
			if err != nil {
				return fmt.Errorf("creation %s: %w", job.CreationID, err)
			}
			if c.OwnerID != job.AccountID || c.AppID != job.AppID {
				return fmt.Errorf("creation %s: %w", job.CreationID, domain.ErrNotFound)
			}
		}
		if _, err := m.ledger.WithStore(tx).Reserve(ctx, job.AccountID, job.CreditCost, job.ID); err != nil {
			return err
		}
		if err := tx.Jobs().Create(ctx, job); err != nil {
			return err
		}
		if job.CreationID != "" {
			if _, err := m.creations.WithStore(tx).AttachJob(ctx, job.CreationID, job.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit %s for %s: %w", app.ID, req.AccountID, err)
	}

	metrics.RecordJobSubmitted(app.ID)
	m.logger.Info().
		Str("job_id", job.ID).
		Str("account_id", job.AccountID).
		Str("app_id", job.AppID).
		Int64("credit_cost", job.CreditCost).
		Msg("job submitted")
	return job, nil
}

// Advance moves a job to u.Status. Failing refunds the job's reserved cost;
// completing bumps the account counters. The attached creation, if any, is
// updated in the same transaction.
func (m *Manager) Advance(ctx context.Context, jobID string, u domain.JobUpdate) (*domain.Job, error) {
	job, err := m.transition(ctx, jobID, func(job *domain.Job) (bool, error) {
		return true, job.Apply(u, m.now())
	})
	if err != nil {
		return nil, fmt.Errorf("advance %s to %s: %w", jobID, u.Status, err)
	}
	return job, nil
}

// ReportProgress records progress on a job that has not finished.
func (m *Manager) ReportProgress(ctx context.Context, jobID string, progress float64) (*domain.Job, error) {
	job, err := m.transition(ctx, jobID, func(job *domain.Job) (bool, error) {
		return true, job.SetProgress(progress, m.now())
	})
	if err != nil {
		return nil, fmt.Errorf("progress %s: %w", jobID, err)
	}
	return job, nil
}

// Get returns a job by id.
func (m *Manager) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := m.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return job, nil
}

// ListForAccount returns an account's jobs, newest first.
func (m *Manager) ListForAccount(ctx context.Context, accountID string, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	jobs, err := m.store.Jobs().ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs of %s: %w", accountID, err)
	}
	return jobs, nil
}

// ExpireStale fails jobs that have not moved for olderThan, refunding them
// like any other failure. It returns how many jobs were expired.
func (m *Manager) ExpireStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	cutoff := m.now().Add(-olderThan)
	stale, err := m.store.Jobs().ListStale(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list stale jobs: %w", err)
	}

	expired := 0
	for _, candidate := range stale {
		_, err := m.transition(ctx, candidate.ID, func(job *domain.Job) (bool, error) {
			// Re-checked under the row lock: the job may have moved since listing.
			if job.Status.IsTerminal() || !job.UpdatedAt.Before(cutoff) {
				return false, nil
			}
			return true, job.Apply(domain.JobUpdate{Status: domain.JobStatusFailed, Error: TimeoutError}, m.now())
		})
		switch {
		case errors.Is(err, errSkipped):
			continue
		case errors.Is(err, domain.ErrStoreUnavailable):
			return expired, fmt.Errorf("expire %s: %w", candidate.ID, err)
		case err != nil:
			m.logger.Error().Err(err).Str("job_id", candidate.ID).Msg("expire stale job")
			continue
		}
		expired++
	}
	if expired > 0 {
		metrics.RecordJobsExpired(expired)
		m.logger.Info().Int("expired", expired).Dur("older_than", olderThan).Msg("stale jobs expired")
	}
	return expired, nil
}

var errSkipped = errors.New("transition skipped")

// transition locks the job, lets mutate change it and applies the side effects
// of the status it ends in. mutate returning false leaves the job untouched.
func (m *Manager) transition(ctx context.Context, jobID string, mutate func(*domain.Job) (bool, error)) (*domain.Job, error) {
	var (
		out  *domain.Job
		from domain.JobStatus
	)
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx domain.Store) error {
		job, err := tx.Jobs().GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		from = job.Status
		proceed, err := mutate(job)
		if err != nil {
			return err
		}
		if !proceed {
			return errSkipped
		}
		if err := tx.Jobs().Update(ctx, job); err != nil {
			return err
		}
		if job.Status != from {
			if err := m.settle(ctx, tx, job); err != nil {
				return err
			}
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Status != from {
		metrics.RecordJobTransition(string(out.Status))
		evt := m.logger.Info()
		if out.Status == domain.JobStatusFailed {
			evt = m.logger.Warn().Str("error", out.Error)
		}
		evt.Str("job_id", out.ID).
			Str("from", string(from)).
			Str("to", string(out.Status)).
			Msg("job transition")
	}
	return out, nil
}

func (m *Manager) settle(ctx context.Context, tx domain.Store, job *domain.Job) error {
	switch job.Status {
	case domain.JobStatusFailed:
		if _, err := m.ledger.WithStore(tx).Refund(ctx, job.AccountID, job.CreditCost, job.ID); err != nil {
			return err
		}
		if job.CreationID != "" {
			if _, err := m.creations.WithStore(tx).OnJobFailed(ctx, job.CreationID, job.ID); err != nil {
				return err
			}
		}
	case domain.JobStatusCompleted:
		var remixes int64
		if job.RecipeID != "" {
			remixes = 1
		}
		if err := tx.Accounts().IncrementCounters(ctx, job.AccountID, 1, remixes); err != nil {
			return err
		}
		if job.CreationID != "" {
			if _, err := m.creations.WithStore(tx).OnJobCompleted(ctx, job.CreationID, job.ID, job.Result); err != nil {
				return err
			}
		}
	}
	return nil
}

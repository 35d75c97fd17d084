// Package creations keeps the durable artifact records users see. A creation
// aggregates every job attempt made for it under one identity.
package creations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace/internal/domain"
)

const defaultListLimit = 50

// Registry creates creations and folds job outcomes into them.
type Registry struct {
	store  domain.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewRegistry returns a Registry on store.
func NewRegistry(store domain.Store, logger zerolog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger.With().Str("component", "creations").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithStore returns a copy of r bound to store.
func (r *Registry) WithStore(store domain.Store) *Registry {
	cp := *r
	cp.store = store
	return &cp
}

// StartDraft records a new creation with no backing job.
func (r *Registry) StartDraft(ctx context.Context, ownerID, appID, appName string) (*domain.Creation, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ErrInvalidIdentity
	}
	c := domain.NewCreation(uuid.NewString(), ownerID, appID, appName, r.now())
	if err := r.store.Creations().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("start draft: %w", err)
	}
	r.logger.Debug().Str("creation_id", c.ID).Str("owner_id", ownerID).Str("app_id", appID).Msg("draft created")
	return c, nil
}

// AttachJob links jobID to the creation. Attaching the same job twice is a
// no-op. A job that already finished is recorded with its outcome.
func (r *Registry) AttachJob(ctx context.Context, creationID, jobID string) (*domain.Creation, error) {
	return r.mutate(ctx, creationID, func(ctx context.Context, tx domain.Store, c *domain.Creation) (bool, error) {
		job, err := tx.Jobs().GetByID(ctx, jobID)
		if err != nil {
			return false, fmt.Errorf("job %s: %w", jobID, err)
		}
		if job.AccountID != c.OwnerID {
			return false, fmt.Errorf("job %s on creation %s: %w", jobID, c.ID, domain.ErrNotFound)
		}
		changed := c.Attach(jobID, r.now())
		switch job.Status {
		case domain.JobStatusCompleted:
			if err := c.RecordOutcome(jobID, domain.AttemptCompleted, r.now()); err != nil {
				return false, err
			}
			if job.Result != "" {
				c.ThumbnailRef = job.Result
			}
			return true, nil
		case domain.JobStatusFailed:
			if err := c.RecordOutcome(jobID, domain.AttemptFailed, r.now()); err != nil {
				return false, err
			}
			return true, nil
		}
		return changed, nil
	})
}

// OnJobCompleted marks the attempt completed and stores thumbnail. Every
// completion after the first only refreshes the thumbnail.
func (r *Registry) OnJobCompleted(ctx context.Context, creationID, jobID, thumbnail string) (*domain.Creation, error) {
	return r.mutate(ctx, creationID, func(_ context.Context, _ domain.Store, c *domain.Creation) (bool, error) {
		if err := c.RecordOutcome(jobID, domain.AttemptCompleted, r.now()); err != nil {
			return false, err
		}
		if thumbnail != "" {
			c.ThumbnailRef = thumbnail
		}
		return true, nil
	})
}

// OnJobFailed marks the attempt failed. A creation that already completed
// stays completed.
func (r *Registry) OnJobFailed(ctx context.Context, creationID, jobID string) (*domain.Creation, error) {
	return r.mutate(ctx, creationID, func(_ context.Context, _ domain.Store, c *domain.Creation) (bool, error) {
		if err := c.RecordOutcome(jobID, domain.AttemptFailed, r.now()); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Get returns a creation by id.
func (r *Registry) Get(ctx context.Context, creationID string) (*domain.Creation, error) {
	c, err := r.store.Creations().GetByID(ctx, creationID)
	if err != nil {
		return nil, fmt.Errorf("get creation %s: %w", creationID, err)
	}
	return c, nil
}

// ListForOwner returns the owner's creations, most recently updated first.
func (r *Registry) ListForOwner(ctx context.Context, ownerID string, limit int) ([]domain.Creation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	list, err := r.store.Creations().ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list creations of %s: %w", ownerID, err)
	}
	return list, nil
}

// mutate loads the creation under lock, applies fn and persists the result
// when fn reports a change.
func (r *Registry) mutate(ctx context.Context, creationID string, fn func(context.Context, domain.Store, *domain.Creation) (bool, error)) (*domain.Creation, error) {
	var out *domain.Creation
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx domain.Store) error {
		c, err := tx.Creations().GetForUpdate(ctx, creationID)
		if err != nil {
			return fmt.Errorf("creation %s: %w", creationID, err)
		}
		changed, err := fn(ctx, tx, c)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Creations().Update(ctx, c); err != nil {
				return err
			}
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

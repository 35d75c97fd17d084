package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"marketplace/internal/domain"
	"marketplace/internal/infra"
	"marketplace/internal/sqlinline"
)

// CreationRepositoryPG implements domain.CreationRepository. Attempts live in
// creation_attempts and are written alongside the creation row.
type CreationRepositoryPG struct {
	db infra.SQLExecutor
}

// NewCreationRepository creates a new creation repository backed by PostgreSQL.
func NewCreationRepository(db infra.SQLExecutor) *CreationRepositoryPG {
	return &CreationRepositoryPG{db: db}
}

func (r *CreationRepositoryPG) Create(ctx context.Context, c *domain.Creation) error {
	if _, err := r.db.Exec(ctx, sqlinline.QCreationInsert,
		c.ID,
		c.OwnerID,
		c.AppID,
		c.AppName,
		c.Status,
		c.ThumbnailRef,
		c.CreatedAt,
		c.UpdatedAt,
	); err != nil {
		return classify(err)
	}
	return r.saveAttempts(ctx, c)
}

func (r *CreationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Creation, error) {
	return r.get(ctx, sqlinline.QCreationByID, id)
}

func (r *CreationRepositoryPG) GetForUpdate(ctx context.Context, id string) (*domain.Creation, error) {
	return r.get(ctx, sqlinline.QCreationByIDForUpdate, id)
}

func (r *CreationRepositoryPG) Update(ctx context.Context, c *domain.Creation) error {
	tag, err := r.db.Exec(ctx, sqlinline.QCreationUpdate, c.ID, c.Status, c.ThumbnailRef, c.UpdatedAt)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.saveAttempts(ctx, c)
}

func (r *CreationRepositoryPG) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Creation, error) {
	rows, err := r.db.Query(ctx, sqlinline.QCreationsByOwner, ownerID, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var creations []domain.Creation
	for rows.Next() {
		c, err := scanCreation(rows)
		if err != nil {
			return nil, classify(err)
		}
		creations = append(creations, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	rows.Close()

	if len(creations) == 0 {
		return nil, nil
	}
	ptrs := make([]*domain.Creation, len(creations))
	for i := range creations {
		ptrs[i] = &creations[i]
	}
	if err := r.loadAttempts(ctx, ptrs...); err != nil {
		return nil, err
	}
	return creations, nil
}

func (r *CreationRepositoryPG) get(ctx context.Context, query, id string) (*domain.Creation, error) {
	c, err := scanCreation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify(err)
	}
	if err := r.loadAttempts(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CreationRepositoryPG) loadAttempts(ctx context.Context, creations ...*domain.Creation) error {
	byID := make(map[string]*domain.Creation, len(creations))
	ids := make([]string, 0, len(creations))
	for _, c := range creations {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	rows, err := r.db.Query(ctx, sqlinline.QCreationAttemptsByCreations, ids)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			creationID string
			a          domain.CreationAttempt
		)
		if err := rows.Scan(&creationID, &a.JobID, &a.Outcome, &a.AttachedAt, &a.UpdatedAt); err != nil {
			return classify(err)
		}
		if c, ok := byID[creationID]; ok {
			c.Attempts = append(c.Attempts, a)
		}
	}
	return classify(rows.Err())
}

func (r *CreationRepositoryPG) saveAttempts(ctx context.Context, c *domain.Creation) error {
	for _, a := range c.Attempts {
		if _, err := r.db.Exec(ctx, sqlinline.QCreationAttemptUpsert, c.ID, a.JobID, a.Outcome, a.AttachedAt, a.UpdatedAt); err != nil {
			return classify(err)
		}
	}
	return nil
}

func scanCreation(row pgx.Row) (*domain.Creation, error) {
	var c domain.Creation
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.AppID,
		&c.AppName,
		&c.Status,
		&c.ThumbnailRef,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ domain.CreationRepository = (*CreationRepositoryPG)(nil)

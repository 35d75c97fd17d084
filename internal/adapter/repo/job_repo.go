package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"marketplace/internal/domain"
	"marketplace/internal/infra"
	"marketplace/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	db infra.SQLExecutor
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(db infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{db: db}
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.db.Exec(ctx, sqlinline.QJobInsert,
		job.ID,
		job.AccountID,
		job.AppID,
		job.CreationID,
		job.RecipeID,
		job.Status,
		job.Progress,
		job.Result,
		job.Error,
		job.CreditCost,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return classify(err)
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, sqlinline.QJobByID, id))
	if err != nil {
		return nil, classify(err)
	}
	return job, nil
}

// GetForUpdate fetches a job and row-locks it until the transaction ends.
func (r *JobRepositoryPG) GetForUpdate(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, sqlinline.QJobByIDForUpdate, id))
	if err != nil {
		return nil, classify(err)
	}
	return job, nil
}

// Update persists the mutable columns of job.
func (r *JobRepositoryPG) Update(ctx context.Context, job *domain.Job) error {
	tag, err := r.db.Exec(ctx, sqlinline.QJobUpdate,
		job.ID,
		job.Status,
		job.Progress,
		job.Result,
		job.Error,
		job.UpdatedAt,
	)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByAccount returns the newest jobs of an account first.
func (r *JobRepositoryPG) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Job, error) {
	return r.list(ctx, sqlinline.QJobsByAccount, accountID, limit)
}

// ListStale returns non-terminal jobs idle since before, oldest first.
func (r *JobRepositoryPG) ListStale(ctx context.Context, before time.Time, limit int) ([]domain.Job, error) {
	return r.list(ctx, sqlinline.QJobsStale, before, limit)
}

func (r *JobRepositoryPG) list(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, classify(err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.AccountID,
		&job.AppID,
		&job.CreationID,
		&job.RecipeID,
		&job.Status,
		&job.Progress,
		&job.Result,
		&job.Error,
		&job.CreditCost,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)

package handlers

import (
	"context"
	"time"

	"marketplace/internal/domain"
)

type accountView struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"display_name,omitempty"`
	Email            string    `json:"email,omitempty"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Balance          int64     `json:"balance"`
	TotalGenerations int64     `json:"total_generations"`
	TotalRemixes     int64     `json:"total_remixes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newAccountView(acc *domain.Account) *accountView {
	if acc == nil {
		return nil
	}
	return &accountView{
		ID:               acc.ID,
		DisplayName:      acc.DisplayName,
		Email:            acc.Email,
		AvatarURL:        acc.AvatarURL,
		Balance:          acc.Balance,
		TotalGenerations: acc.TotalGenerations,
		TotalRemixes:     acc.TotalRemixes,
		CreatedAt:        acc.CreatedAt,
		UpdatedAt:        acc.UpdatedAt,
	}
}

type ledgerEntryView struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	JobID        string    `json:"job_id,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type appView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	CreditCost  int64    `json:"credit_cost"`
	IsNew       bool     `json:"is_new"`
	IsPro       bool     `json:"is_pro"`
}

func newAppView(app domain.App) appView {
	tags := app.Tags
	if tags == nil {
		tags = []string{}
	}
	return appView{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
		Tags:        tags,
		CreditCost:  app.CreditCost,
		IsNew:       app.IsNew,
		IsPro:       app.IsPro,
	}
}

type recipeView struct {
	ID          string    `json:"id"`
	AppID       string    `json:"app_id"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	Title       string    `json:"title,omitempty"`
	MediaURLs   []string  `json:"media_urls"`
	CreditsUsed int64     `json:"credits_used"`
	CreatedAt   time.Time `json:"created_at"`
}

type jobView struct {
	ID         string    `json:"id"`
	AppID      string    `json:"app_id"`
	CreationID string    `json:"creation_id,omitempty"`
	RecipeID   string    `json:"recipe_id,omitempty"`
	Status     string    `json:"status"`
	Progress   *float64  `json:"progress"`
	ResultURL  string    `json:"result_url,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreditCost int64     `json:"credit_cost"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *App) newJobView(ctx context.Context, job *domain.Job) jobView {
	return jobView{
		ID:         job.ID,
		AppID:      job.AppID,
		CreationID: job.CreationID,
		RecipeID:   job.RecipeID,
		Status:     string(job.Status),
		Progress:   job.Progress,
		ResultURL:  a.mediaURL(ctx, job.Result),
		Error:      job.Error,
		CreditCost: job.CreditCost,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}
}

type attemptView struct {
	JobID      string    `json:"job_id"`
	Outcome    string    `json:"outcome"`
	AttachedAt time.Time `json:"attached_at"`
}

type creationView struct {
	ID           string        `json:"id"`
	AppID        string        `json:"app_id"`
	AppName      string        `json:"app_name"`
	Status       string        `json:"status"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	Attempts     []attemptView `json:"attempts"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (a *App) newCreationView(ctx context.Context, c *domain.Creation) creationView {
	attempts := make([]attemptView, 0, len(c.Attempts))
	for _, at := range c.Attempts {
		attempts = append(attempts, attemptView{JobID: at.JobID, Outcome: string(at.Outcome), AttachedAt: at.AttachedAt})
	}
	return creationView{
		ID:           c.ID,
		AppID:        c.AppID,
		AppName:      c.AppName,
		Status:       string(c.Status),
		ThumbnailURL: a.mediaURL(ctx, c.ThumbnailRef),
		Attempts:     attempts,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

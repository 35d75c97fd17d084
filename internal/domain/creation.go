package domain

import (
	"fmt"
	"time"
)

// CreationStatus enumerates the externally visible state of a Creation.
type CreationStatus string

const (
	CreationStatusDraft      CreationStatus = "draft"
	CreationStatusGenerating CreationStatus = "generating"
	CreationStatusCompleted  CreationStatus = "completed"
)

// AttemptOutcome tracks what happened to one backing job.
type AttemptOutcome string

const (
	AttemptPending   AttemptOutcome = "pending"
	AttemptCompleted AttemptOutcome = "completed"
	AttemptFailed    AttemptOutcome = "failed"
)

// CreationAttempt links a Creation to one of its backing jobs.
type CreationAttempt struct {
	JobID      string
	Outcome    AttemptOutcome
	AttachedAt time.Time
	UpdatedAt  time.Time
}

// Creation is the durable artifact a user sees. Regenerating adds attempts but
// the Creation keeps its identity.
type Creation struct {
	ID           string
	OwnerID      string
	AppID        string
	AppName      string
	Status       CreationStatus
	ThumbnailRef string
	Attempts     []CreationAttempt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewCreation returns a draft with no backing jobs.
func NewCreation(id, ownerID, appID, appName string, now time.Time) *Creation {
	return &Creation{
		ID:        id,
		OwnerID:   ownerID,
		AppID:     appID,
		AppName:   appName,
		Status:    CreationStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Attempt returns the attempt for jobID, if attached.
func (c *Creation) Attempt(jobID string) (CreationAttempt, bool) {
	for _, a := range c.Attempts {
		if a.JobID == jobID {
			return a, true
		}
	}
	return CreationAttempt{}, false
}

// Attach adds a pending attempt for jobID. It reports false when the job was
// already attached.
func (c *Creation) Attach(jobID string, now time.Time) bool {
	if _, ok := c.Attempt(jobID); ok {
		return false
	}
	c.Attempts = append(c.Attempts, CreationAttempt{
		JobID:      jobID,
		Outcome:    AttemptPending,
		AttachedAt: now,
		UpdatedAt:  now,
	})
	c.refreshStatus()
	c.UpdatedAt = now
	return true
}

// RecordOutcome sets the outcome of an attached job and re-derives the status.
func (c *Creation) RecordOutcome(jobID string, outcome AttemptOutcome, now time.Time) error {
	for i := range c.Attempts {
		if c.Attempts[i].JobID != jobID {
			continue
		}
		c.Attempts[i].Outcome = outcome
		c.Attempts[i].UpdatedAt = now
		c.refreshStatus()
		c.UpdatedAt = now
		return nil
	}
	return fmt.Errorf("job %s on creation %s: %w", jobID, c.ID, ErrNotFound)
}

// refreshStatus derives the status from the attempts: any completed attempt wins,
// otherwise an in-flight attempt means generating, otherwise draft.
func (c *Creation) refreshStatus() {
	status := CreationStatusDraft
	for _, a := range c.Attempts {
		switch a.Outcome {
		case AttemptCompleted:
			c.Status = CreationStatusCompleted
			return
		case AttemptPending:
			status = CreationStatusGenerating
		}
	}
	c.Status = status
}

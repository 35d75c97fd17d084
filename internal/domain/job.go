package domain

import (
	"fmt"
	"time"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusWarming    JobStatus = "warming"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// MaxProgress is the upper bound of Job.Progress.
const MaxProgress = 100.0

// JobStatuses lists every status in lifecycle order.
var JobStatuses = []JobStatus{
	JobStatusQueued,
	JobStatusWarming,
	JobStatusProcessing,
	JobStatusCompleted,
	JobStatusFailed,
}

// jobTransitions is the forward-only transition table. Failure is reachable from
// every non-terminal state so a job can be aborted before it completes.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusQueued:     {JobStatusWarming, JobStatusProcessing, JobStatusFailed},
	JobStatusWarming:    {JobStatusProcessing, JobStatusFailed},
	JobStatusProcessing: {JobStatusCompleted, JobStatusFailed},
}

// ParseJobStatus converts a wire value into a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown job status %q", ErrInvalidTransition, s)
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s JobStatus) Valid() bool {
	for _, known := range JobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Job tracks one execution attempt of an App on behalf of an Account.
type Job struct {
	ID         string
	AccountID  string
	AppID      string
	CreationID string
	RecipeID   string
	Status     JobStatus
	Progress   *float64
	Result     string
	Error      string
	// CreditCost is the amount reserved at submission; refunds use it rather
	// than the App's current price.
	CreditCost int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// JobUpdate describes a requested state change.
type JobUpdate struct {
	Status   JobStatus
	Progress *float64
	Result   string
	Error    string
}

// Apply validates u against the state machine and the outcome invariants and
// mutates j only when every check passes.
func (j *Job) Apply(u JobUpdate, now time.Time) error {
	if !j.Status.CanTransitionTo(u.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, u.Status)
	}
	switch u.Status {
	case JobStatusCompleted:
		if u.Result == "" || u.Error != "" {
			return fmt.Errorf("%w: completed requires a result and no error", ErrInvalidTransition)
		}
	case JobStatusFailed:
		if u.Error == "" || u.Result != "" {
			return fmt.Errorf("%w: failed requires an error and no result", ErrInvalidTransition)
		}
	default:
		if u.Result != "" || u.Error != "" {
			return fmt.Errorf("%w: result and error belong to terminal states", ErrInvalidTransition)
		}
	}
	if u.Progress != nil {
		if err := j.checkProgress(*u.Progress); err != nil {
			return err
		}
	}

	j.Status = u.Status
	j.Result = u.Result
	j.Error = u.Error
	switch {
	case u.Progress != nil:
		p := *u.Progress
		j.Progress = &p
	case u.Status == JobStatusCompleted:
		p := MaxProgress
		j.Progress = &p
	}
	j.UpdatedAt = now
	return nil
}

// SetProgress records a progress report on a non-terminal job.
func (j *Job) SetProgress(progress float64, now time.Time) error {
	if j.Status.IsTerminal() {
		return fmt.Errorf("%w: job is %s", ErrInvalidTransition, j.Status)
	}
	if err := j.checkProgress(progress); err != nil {
		return err
	}
	j.Progress = &progress
	j.UpdatedAt = now
	return nil
}

func (j *Job) checkProgress(progress float64) error {
	if progress < 0 || progress > MaxProgress || progress != progress {
		return fmt.Errorf("%w: %v is outside [0, %v]", ErrInvalidProgress, progress, MaxProgress)
	}
	if j.Progress != nil && progress < *j.Progress {
		return fmt.Errorf("%w: %v is below current %v", ErrInvalidProgress, progress, *j.Progress)
	}
	return nil
}

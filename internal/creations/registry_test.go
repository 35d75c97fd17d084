package creations

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/adapter/memory"
	"marketplace/internal/domain"
)

func setup(t *testing.T, jobIDs ...string) (*Registry, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	_, _, err := store.Accounts().CreateIfAbsent(ctx, domain.NewAccount("u1", domain.ProvisionHints{}, time.Now()))
	require.NoError(t, err)
	for _, id := range jobIDs {
		require.NoError(t, store.Jobs().Create(ctx, &domain.Job{ID: id, AccountID: "u1", AppID: "a1", Status: domain.JobStatusQueued}))
	}
	return NewRegistry(store, zerolog.Nop()), store
}

func TestCreationLifecycle(t *testing.T) {
	ctx := context.Background()
	reg, _ := setup(t, "j1", "j2")

	c, err := reg.StartDraft(ctx, "u1", "a1", "Portraits")
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusDraft, c.Status)

	c, err = reg.AttachJob(ctx, c.ID, "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusGenerating, c.Status)

	c, err = reg.AttachJob(ctx, c.ID, "j1")
	require.NoError(t, err)
	assert.Len(t, c.Attempts, 1, "attach is idempotent per job")

	c, err = reg.OnJobFailed(ctx, c.ID, "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusDraft, c.Status)

	_, err = reg.AttachJob(ctx, c.ID, "j2")
	require.NoError(t, err)
	c, err = reg.OnJobCompleted(ctx, c.ID, "j2", "media/j2.png")
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusCompleted, c.Status)
	assert.Equal(t, "media/j2.png", c.ThumbnailRef)

	stored, err := reg.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, stored.ID)
	assert.Equal(t, domain.CreationStatusCompleted, stored.Status)

	list, err := reg.ListForOwner(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestLaterCompletionOnlyRefreshesThumbnail(t *testing.T) {
	ctx := context.Background()
	reg, _ := setup(t, "j1", "j2")

	c, err := reg.StartDraft(ctx, "u1", "a1", "Portraits")
	require.NoError(t, err)
	for _, id := range []string{"j1", "j2"} {
		_, err = reg.AttachJob(ctx, c.ID, id)
		require.NoError(t, err)
	}
	_, err = reg.OnJobCompleted(ctx, c.ID, "j1", "first.png")
	require.NoError(t, err)
	c, err = reg.OnJobCompleted(ctx, c.ID, "j2", "second.png")
	require.NoError(t, err)

	assert.Equal(t, domain.CreationStatusCompleted, c.Status)
	assert.Equal(t, "second.png", c.ThumbnailRef)
	assert.Len(t, c.Attempts, 2)
}

func TestUnknownJobOrCreation(t *testing.T) {
	ctx := context.Background()
	reg, store := setup(t, "j1")

	c, err := reg.StartDraft(ctx, "u1", "a1", "Portraits")
	require.NoError(t, err)

	_, err = reg.OnJobCompleted(ctx, c.ID, "j1", "x.png")
	require.ErrorIs(t, err, domain.ErrNotFound, "job not attached")

	_, err = reg.AttachJob(ctx, c.ID, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = reg.AttachJob(ctx, "missing", "j1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Jobs().Create(ctx, &domain.Job{ID: "other", AccountID: "u2", Status: domain.JobStatusQueued}))
	_, err = reg.AttachJob(ctx, c.ID, "other")
	require.ErrorIs(t, err, domain.ErrNotFound, "job of another account")

	stored, err := reg.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusDraft, stored.Status)
	assert.Empty(t, stored.Attempts)
}

func TestFailureWhileAnotherJobRunsKeepsGenerating(t *testing.T) {
	ctx := context.Background()
	reg, _ := setup(t, "j1", "j2")

	c, err := reg.StartDraft(ctx, "u1", "a1", "Portraits")
	require.NoError(t, err)
	for _, id := range []string{"j1", "j2"} {
		_, err = reg.AttachJob(ctx, c.ID, id)
		require.NoError(t, err)
	}

	c, err = reg.OnJobFailed(ctx, c.ID, "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusGenerating, c.Status)

	c, err = reg.OnJobFailed(ctx, c.ID, "j2")
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusDraft, c.Status)
}

func TestAttachFinishedJobRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	reg, store := setup(t)
	require.NoError(t, store.Jobs().Create(ctx, &domain.Job{ID: "done", AccountID: "u1", AppID: "a1", Status: domain.JobStatusCompleted, Result: "media/done.png"}))
	require.NoError(t, store.Jobs().Create(ctx, &domain.Job{ID: "broken", AccountID: "u1", AppID: "a1", Status: domain.JobStatusFailed, Error: "boom"}))

	c, err := reg.StartDraft(ctx, "u1", "a1", "Portraits")
	require.NoError(t, err)

	c, err = reg.AttachJob(ctx, c.ID, "broken")
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusDraft, c.Status)
	attempt, ok := c.Attempt("broken")
	require.True(t, ok)
	assert.Equal(t, domain.AttemptFailed, attempt.Outcome)

	c, err = reg.AttachJob(ctx, c.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, domain.CreationStatusCompleted, c.Status)
	assert.Equal(t, "media/done.png", c.ThumbnailRef)
}

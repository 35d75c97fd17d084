package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"marketplace/internal/domain"
	"marketplace/internal/sqlinline"
)

func TestCreationGetLoadsAttempts(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	exec := newFakeExecutor()
	exec.rows[markerOf(sqlinline.QCreationByID)] = func([]any) pgx.Row {
		return valuesRow("c1", "u1", "a1", "Portraits", domain.CreationStatusGenerating, "", now, now)
	}
	exec.tables[markerOf(sqlinline.QCreationAttemptsByCreations)] = func(args []any) (pgx.Rows, error) {
		ids, ok := args[0].([]string)
		if !ok || len(ids) != 1 || ids[0] != "c1" {
			t.Fatalf("unexpected attempt args: %#v", args)
		}
		return &sliceRows{rows: [][]any{
			{"c1", "j1", domain.AttemptFailed, now, now},
			{"c1", "j2", domain.AttemptPending, now, now},
		}}, nil
	}

	c, err := NewCreationRepository(exec).GetByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if len(c.Attempts) != 2 || c.Attempts[1].JobID != "j2" || c.Attempts[1].Outcome != domain.AttemptPending {
		t.Fatalf("unexpected attempts: %+v", c.Attempts)
	}
}

func TestCreationUpdateUpsertsAttempts(t *testing.T) {
	now := time.Now()
	exec := newFakeExecutor()
	var upserts int
	exec.execs[markerOf(sqlinline.QCreationAttemptUpsert)] = func([]any) (pgconn.CommandTag, error) {
		upserts++
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}

	c := domain.NewCreation("c1", "u1", "a1", "Portraits", now)
	c.Attach("j1", now)
	c.Attach("j2", now)
	if err := NewCreationRepository(exec).Update(context.Background(), c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if upserts != 2 {
		t.Fatalf("expected 2 attempt upserts, got %d", upserts)
	}
	if exec.calls[0] != markerOf(sqlinline.QCreationUpdate) {
		t.Fatalf("creation row should be written first: %v", exec.calls)
	}
}

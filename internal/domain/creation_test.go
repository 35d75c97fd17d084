package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCreationStatusDerivation(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewCreation("c1", "u1", "a1", "Portraits", now)
	if c.Status != CreationStatusDraft {
		t.Fatalf("new creation status = %s", c.Status)
	}

	if !c.Attach("j1", now) {
		t.Fatalf("first attach should report added")
	}
	if c.Attach("j1", now) {
		t.Fatalf("second attach of the same job should be a no-op")
	}
	if len(c.Attempts) != 1 || c.Status != CreationStatusGenerating {
		t.Fatalf("after attach: %+v", c)
	}

	if err := c.RecordOutcome("j1", AttemptFailed, now); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if c.Status != CreationStatusDraft {
		t.Fatalf("only failed attempts should derive draft, got %s", c.Status)
	}

	c.Attach("j2", now)
	c.Attach("j3", now)
	if err := c.RecordOutcome("j2", AttemptCompleted, now); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if c.Status != CreationStatusCompleted {
		t.Fatalf("a completed attempt should derive completed, got %s", c.Status)
	}
	if err := c.RecordOutcome("j3", AttemptFailed, now); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if c.Status != CreationStatusCompleted {
		t.Fatalf("later failure must not undo completion, got %s", c.Status)
	}
}

func TestCreationRecordOutcomeUnknownJob(t *testing.T) {
	c := NewCreation("c1", "u1", "a1", "Portraits", time.Now())
	if err := c.RecordOutcome("missing", AttemptCompleted, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

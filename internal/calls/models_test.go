package calls

import (
	"context"
	"testing"
	"time"
)

func TestCallStatusValuesAreNonEmpty(t *testing.T) {
	statuses := []CallStatus{
		CallStatusInitiated,
		CallStatusRinging,
		CallStatusAnswered,
		CallStatusCompleted,
		CallStatusFailed,
		CallStatusBusy,
		CallStatusNoAnswer,
	}
	for _, s := range statuses {
		if s == "" {
			t.Fatalf("expected non-empty status")
		}
		if !IsValidStatus(s) {
			t.Fatalf("expected %q to validate", s)
		}
	}
	if IsValidStatus("bogus") {
		t.Fatalf("expected bogus to fail validation")
	}
}

func TestMemoryRepo_CreateIfAbsentIsIdempotent(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	first, err := repo.CreateIfAbsent(ctx, Call{ProviderCallID: "pc-1", Phone: "+15551230000", Direction: DirectionInbound})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := repo.CreateIfAbsent(ctx, Call{ProviderCallID: "pc-1", Phone: "+15559999999"})
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same row, got %q vs %q", first.ID, second.ID)
	}
	if second.Phone != "+15551230000" {
		t.Fatalf("expected original row unchanged, got phone %q", second.Phone)
	}
}

func TestMemoryRepo_AttachBeforeInitiatedCreatesPlaceholder(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.AttachRecording(ctx, "pc-2", "https://cdn/rec.mp3"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	c, err := repo.GetByProviderID(ctx, "pc-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.RecordingURL != "https://cdn/rec.mp3" {
		t.Fatalf("expected recording url, got %q", c.RecordingURL)
	}

	// Completion arriving afterwards keeps the recording.
	if _, err := repo.Complete(ctx, "pc-2", CallStatusCompleted, 42, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	c, _ = repo.GetByProviderID(ctx, "pc-2")
	if c.Status != CallStatusCompleted || c.RecordingURL == "" {
		t.Fatalf("expected completed call with recording, got %+v", c)
	}
}

func TestMemoryRepo_ListFiltersAndPaginates(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	for i, pid := range []string{"a", "b", "c"} {
		if _, err := repo.CreateIfAbsent(ctx, Call{ProviderCallID: pid, Direction: DirectionInbound}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := repo.Complete(ctx, "a", CallStatusCompleted, 10, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, total, err := repo.List(ctx, ListFilter{Status: CallStatusCompleted})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ProviderCallID != "a" {
		t.Fatalf("expected one completed call, got total=%d rows=%d", total, len(got))
	}

	got, total, err = repo.List(ctx, ListFilter{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if total != 3 || len(got) != 1 {
		t.Fatalf("expected page 2 with 1 row of 3, got total=%d rows=%d", total, len(got))
	}
}

package notify

import (
	"context"
	"testing"
	"time"
)

func gateAt(repo Repository, now time.Time) *Gate {
	g := NewGate(repo, 24*time.Hour, 22, 8, time.UTC)
	g.clock = func() time.Time { return now }
	return g
}

func TestShouldNotify_NoHistoryOutsideQuietHours(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := gateAt(NewMemoryRepo(), now)

	ok, err := g.ShouldNotify(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	if !ok {
		t.Fatalf("expected notify allowed at hour 9 with no history")
	}
}

func TestShouldNotify_CooldownSuppresses(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_ = repo.Append(context.Background(), NotificationLog{
		ID: "n1", LeadID: "lead-1", Status: StatusSent, SentAt: now.Add(-2 * time.Hour),
	})

	g := gateAt(repo, now)
	ok, err := g.ShouldNotify(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	if ok {
		t.Fatalf("expected suppression within 24h cooldown")
	}
}

func TestShouldNotify_CooldownElapsedAllows(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_ = repo.Append(context.Background(), NotificationLog{
		ID: "n1", LeadID: "lead-1", Status: StatusSent, SentAt: now.Add(-25 * time.Hour),
	})

	g := gateAt(repo, now)
	ok, err := g.ShouldNotify(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	if !ok {
		t.Fatalf("expected notify allowed after cooldown elapsed")
	}
}

func TestShouldNotify_FailedSendsDoNotStartCooldown(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_ = repo.Append(context.Background(), NotificationLog{
		ID: "n1", LeadID: "lead-1", Status: StatusFailed, SentAt: now.Add(-1 * time.Hour),
	})

	g := gateAt(repo, now)
	ok, err := g.ShouldNotify(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	if !ok {
		t.Fatalf("expected failed attempts to be ignored by cooldown")
	}
}

func TestShouldNotify_QuietHours(t *testing.T) {
	cases := []struct {
		hour int
		want bool
	}{
		{23, false}, // inside 22..8
		{22, false}, // start is inclusive
		{7, false},
		{8, true}, // end is exclusive
		{9, true},
		{21, true},
	}
	for _, tc := range cases {
		now := time.Date(2025, 3, 10, tc.hour, 30, 0, 0, time.UTC)
		g := gateAt(NewMemoryRepo(), now)
		ok, err := g.ShouldNotify(context.Background(), "lead-1")
		if err != nil {
			t.Fatalf("hour %d: %v", tc.hour, err)
		}
		if ok != tc.want {
			t.Fatalf("hour %d: expected %v, got %v", tc.hour, tc.want, ok)
		}
	}
}

func TestShouldNotify_RespectsConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 18:00 UTC is 23:00 local: inside quiet hours.
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	g := NewGate(NewMemoryRepo(), 24*time.Hour, 22, 8, loc)
	g.clock = func() time.Time { return now }

	ok, err := g.ShouldNotify(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	if ok {
		t.Fatalf("expected suppression at 23:00 local")
	}
}

package leads

import (
	"context"
	"testing"
	"time"
)

func newTestService(repo Repository, now time.Time) *Service {
	s := NewService(repo)
	current := now
	s.clock = func() time.Time { return current }
	return s
}

func serviceAt(s *Service, now time.Time) {
	s.clock = func() time.Time { return now }
}

func TestCapture_CreatesLeadWithFlagsFromBreakdown(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	s := newTestService(repo, now)

	lead, err := s.Capture(context.Background(), "call-1", "+15551230000", Input{
		DurationSeconds: 200,
		Transcript:      "how much is it? do you take insurance? can I schedule?",
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !lead.MentionedPricing || !lead.MentionedInsurance || !lead.MentionedScheduling {
		t.Fatalf("expected all interest flags set, got %+v", lead)
	}
	if lead.CallCount != 1 {
		t.Fatalf("expected call_count 1, got %d", lead.CallCount)
	}
	if lead.Quality == "" || lead.Score <= 0 {
		t.Fatalf("expected scored lead, got %+v", lead)
	}
	if lead.Notes == "" {
		t.Fatalf("expected qualification notes")
	}
}

func TestCapture_DedupWithinWindowOverwrites(t *testing.T) {
	repo := NewMemoryRepo()
	first := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	s := newTestService(repo, first)

	phone := "+15551230000"
	l1, err := s.Capture(context.Background(), "call-1", phone, Input{
		DurationSeconds: 600,
		Transcript:      "cost? insurance? schedule? more?",
	})
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}

	// Second call two days later scores much lower.
	serviceAt(s, first.Add(2*24*time.Hour))
	l2, err := s.Capture(context.Background(), "call-2", phone, Input{DurationSeconds: 30})
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}

	if l2.ID != l1.ID {
		t.Fatalf("expected dedup onto existing lead, got new id")
	}
	if got := len(repo.All()); got != 1 {
		t.Fatalf("expected exactly one lead row, got %d", got)
	}
	if l2.Score != 3 { // 30s/10 = 3 points, nothing else
		t.Fatalf("expected second call's score to win, got %d", l2.Score)
	}
	if l2.MentionedPricing || l2.MentionedInsurance || l2.MentionedScheduling {
		t.Fatalf("expected flags overwritten by second call, got %+v", l2)
	}
	if l2.CallCount != 2 {
		t.Fatalf("expected call_count 2, got %d", l2.CallCount)
	}
	if l2.CallID != "call-1" {
		t.Fatalf("expected lead to stay anchored to original call, got %q", l2.CallID)
	}
}

func TestCapture_OutsideWindowCreatesNewLead(t *testing.T) {
	repo := NewMemoryRepo()
	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTestService(repo, first)

	phone := "+15551230000"
	if _, err := s.Capture(context.Background(), "call-1", phone, Input{DurationSeconds: 60}); err != nil {
		t.Fatalf("first capture: %v", err)
	}

	// Exactly 8 days later: outside the 7-day trailing window.
	serviceAt(s, first.Add(8*24*time.Hour))
	l2, err := s.Capture(context.Background(), "call-2", phone, Input{DurationSeconds: 60})
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}

	if got := len(repo.All()); got != 2 {
		t.Fatalf("expected two lead rows, got %d", got)
	}
	if l2.CallID != "call-2" || l2.CallCount != 1 {
		t.Fatalf("expected fresh lead for second call, got %+v", l2)
	}
}

func TestCapture_WindowBoundaryIsInclusive(t *testing.T) {
	repo := NewMemoryRepo()
	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTestService(repo, first)

	phone := "+15551230000"
	if _, err := s.Capture(context.Background(), "call-1", phone, Input{DurationSeconds: 60}); err != nil {
		t.Fatalf("first capture: %v", err)
	}

	serviceAt(s, first.Add(DedupWindow))
	if _, err := s.Capture(context.Background(), "call-2", phone, Input{DurationSeconds: 60}); err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if got := len(repo.All()); got != 1 {
		t.Fatalf("expected dedup at exactly 7 days, got %d rows", got)
	}
}

func TestCapture_RejectsMissingIdentifiers(t *testing.T) {
	s := NewService(NewMemoryRepo())
	if _, err := s.Capture(context.Background(), "", "+1555", Input{}); err == nil {
		t.Fatalf("expected error for missing call id")
	}
	if _, err := s.Capture(context.Background(), "call-1", "", Input{}); err == nil {
		t.Fatalf("expected error for missing phone")
	}
}

func TestSetTier_OverridesAndStamps(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	s := newTestService(repo, now)

	lead, err := s.Capture(context.Background(), "call-1", "+1555", Input{DurationSeconds: 30})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	updated, err := s.SetTier(context.Background(), lead.ID, QualityUnqualified)
	if err != nil {
		t.Fatalf("set tier: %v", err)
	}
	if updated.Quality != QualityUnqualified {
		t.Fatalf("expected UNQUALIFIED, got %s", updated.Quality)
	}
	if updated.TierOverriddenAt == nil {
		t.Fatalf("expected override timestamp")
	}

	if _, err := s.SetTier(context.Background(), lead.ID, "LUKEWARM"); err == nil {
		t.Fatalf("expected invalid tier error")
	}
	if _, err := s.SetTier(context.Background(), "missing", QualityHot); err == nil {
		t.Fatalf("expected not found error")
	}
}

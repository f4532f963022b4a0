package notify

import (
	"context"
	"errors"
	"time"
)

// Repository is the persistence contract for notification logs.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, l NotificationLog) error

	// LastSentAt returns the most recent sent_at among rows with status "sent"
	// for the lead, or ok=false if none exists.
	LastSentAt(ctx context.Context, leadID string) (time.Time, bool, error)
}

// Gate decides whether a notification may go out now.
//
// Two predicates, both must pass:
// - cooldown: no "sent" log for the lead within the trailing cooldown period
// - quiet hours: the local wall-clock hour must be outside [start, end)
//
// A suppressed notification is dropped, never queued.
type Gate struct {
	repo     Repository
	cooldown time.Duration

	quietStart int
	quietEnd   int
	loc        *time.Location

	clock func() time.Time
}

func NewGate(repo Repository, cooldown time.Duration, quietStart, quietEnd int, loc *time.Location) *Gate {
	if cooldown <= 0 {
		cooldown = 24 * time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	return &Gate{
		repo:       repo,
		cooldown:   cooldown,
		quietStart: quietStart,
		quietEnd:   quietEnd,
		loc:        loc,
		clock:      time.Now,
	}
}

func (g *Gate) ShouldNotify(ctx context.Context, leadID string) (bool, error) {
	if g.repo == nil {
		return false, errors.New("notify: repository not configured")
	}
	if leadID == "" {
		return false, errors.New("notify: lead id is required")
	}

	now := g.clock()
	if g.inQuietHours(now) {
		return false, nil
	}

	last, ok, err := g.repo.LastSentAt(ctx, leadID)
	if err != nil {
		return false, err
	}
	if ok && now.Sub(last) < g.cooldown {
		return false, nil
	}
	return true, nil
}

func (g *Gate) inQuietHours(now time.Time) bool {
	hour := now.In(g.loc).Hour()
	if g.quietStart == g.quietEnd {
		return false
	}
	if g.quietStart < g.quietEnd {
		return hour >= g.quietStart && hour < g.quietEnd
	}
	// Window wraps midnight, e.g. 22..8.
	return hour >= g.quietStart || hour < g.quietEnd
}

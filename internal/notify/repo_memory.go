package notify

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory append-only repository useful for tests.
// It is not intended for production use.

type MemoryRepo struct {
	mu   sync.Mutex
	logs []NotificationLog
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, l NotificationLog) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
	return nil
}

func (r *MemoryRepo) LastSentAt(ctx context.Context, leadID string) (time.Time, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var last time.Time
	found := false
	for _, l := range r.logs {
		if l.LeadID != leadID || l.Status != StatusSent {
			continue
		}
		if !found || l.SentAt.After(last) {
			last = l.SentAt
			found = true
		}
	}
	return last, found, nil
}

// Logs returns a snapshot of all appended rows.
func (r *MemoryRepo) Logs() []NotificationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]NotificationLog, len(r.logs))
	copy(out, r.logs)
	return out
}

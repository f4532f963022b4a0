package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
//
// NOTE: This is not intended for production; replace with Postgres implementation.
type MemoryRepo struct {
	mu    sync.Mutex
	rows  []Lead
	clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{clock: time.Now}
}

func (r *MemoryRepo) Insert(ctx context.Context, l Lead) (Lead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := r.clock().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	r.rows = append(r.rows, l)
	return l, nil
}

func (r *MemoryRepo) Update(ctx context.Context, l Lead) (Lead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].ID == l.ID {
			l.CreatedAt = r.rows[i].CreatedAt
			l.UpdatedAt = r.clock().UTC()
			r.rows[i] = l
			return l, nil
		}
	}
	return Lead{}, ErrNotFound
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Lead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.rows {
		if l.ID == id {
			return l, nil
		}
	}
	return Lead{}, ErrNotFound
}

func (r *MemoryRepo) GetByCallID(ctx context.Context, callID string) (Lead, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.rows {
		if l.CallID == callID {
			return l, true, nil
		}
	}
	return Lead{}, false, nil
}

func (r *MemoryRepo) FindMostRecentByPhoneSince(ctx context.Context, phone string, since time.Time) (Lead, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var best Lead
	found := false
	for _, l := range r.rows {
		if l.Phone != phone {
			continue
		}
		if l.CapturedAt.Before(since) {
			continue
		}
		if !found || l.CapturedAt.After(best.CapturedAt) {
			best = l
			found = true
		}
	}
	return best, found, nil
}

func (r *MemoryRepo) List(ctx context.Context, from, to time.Time) ([]Lead, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Lead
	for _, l := range r.rows {
		if !from.IsZero() && l.CapturedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !l.CapturedAt.Before(to) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// All returns a snapshot of every lead row, newest insertions last.
func (r *MemoryRepo) All() []Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Lead, len(r.rows))
	copy(out, r.rows)
	return out
}

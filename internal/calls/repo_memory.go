package calls

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
//
// NOTE: This is not intended for production; replace with Postgres implementation.
type MemoryRepo struct {
	mu    sync.Mutex
	byPID map[string]*Call
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byPID: map[string]*Call{}}
}

func (r *MemoryRepo) CreateIfAbsent(ctx context.Context, c Call) (Call, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byPID[c.ProviderCallID]; ok {
		return *existing, nil
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = CallStatusInitiated
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := c
	r.byPID[c.ProviderCallID] = &cp
	return cp, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Call, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byPID {
		if c.ID == id {
			return *c, nil
		}
	}
	return Call{}, ErrNotFound
}

func (r *MemoryRepo) GetByProviderID(ctx context.Context, providerCallID string) (Call, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byPID[providerCallID]; ok {
		return *c, nil
	}
	return Call{}, ErrNotFound
}

func (r *MemoryRepo) MarkAnswered(ctx context.Context, providerCallID string, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byPID[providerCallID]
	if !ok {
		return ErrNotFound
	}
	c.Status = CallStatusAnswered
	c.AnsweredAt = &at
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepo) Complete(ctx context.Context, providerCallID string, status CallStatus, durationSeconds int, endedAt time.Time) (Call, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byPID[providerCallID]
	if !ok {
		return Call{}, ErrNotFound
	}
	c.Status = status
	c.DurationSeconds = durationSeconds
	c.EndedAt = &endedAt
	c.UpdatedAt = time.Now().UTC()
	return *c, nil
}

func (r *MemoryRepo) AttachRecording(ctx context.Context, providerCallID, recordingURL string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.upsertLocked(providerCallID)
	c.RecordingURL = recordingURL
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepo) AttachTranscript(ctx context.Context, providerCallID, transcriptURL, text string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.upsertLocked(providerCallID)
	c.TranscriptURL = transcriptURL
	c.TranscriptText = text
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepo) upsertLocked(providerCallID string) *Call {
	if c, ok := r.byPID[providerCallID]; ok {
		return c
	}
	now := time.Now().UTC()
	c := &Call{
		ID:             uuid.NewString(),
		ProviderCallID: providerCallID,
		Status:         CallStatusInitiated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.byPID[providerCallID] = c
	return c
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Call, int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Call
	for _, c := range r.byPID {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Direction != "" && c.Direction != f.Direction {
			continue
		}
		if !f.From.IsZero() && c.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !c.CreatedAt.Before(f.To) {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	page, perPage := normalizePage(f.Page, f.PerPage)
	start := (page - 1) * perPage
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

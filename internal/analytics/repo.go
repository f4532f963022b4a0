package analytics

import (
	"context"
	"time"

	"prontoplus/internal/calls"
	"prontoplus/internal/leads"
)

// DomainRepo adapts the calls/leads repositories to the analytics contract.
type DomainRepo struct {
	Calls calls.Repository
	Leads leads.Repository
}

func (r DomainRepo) ListCalls(ctx context.Context, from, to time.Time) ([]calls.Call, error) {
	var out []calls.Call
	for page := 1; ; page++ {
		batch, total, err := r.Calls.List(ctx, calls.ListFilter{From: from, To: to, Page: page, PerPage: 100})
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) == 0 || len(out) >= total {
			return out, nil
		}
	}
}

func (r DomainRepo) ListLeads(ctx context.Context, from, to time.Time) ([]leads.Lead, error) {
	return r.Leads.List(ctx, from, to)
}

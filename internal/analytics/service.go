package analytics

import (
	"context"
	"errors"
	"time"

	"prontoplus/internal/calls"
	"prontoplus/internal/leads"
)

var ErrInvalidRequest = errors.New("analytics: invalid request")

// Repository abstracts data access for analytics.
// Implementations should read from the immutable call/lead history.
type Repository interface {
	ListCalls(ctx context.Context, from, to time.Time) ([]calls.Call, error)
	ListLeads(ctx context.Context, from, to time.Time) ([]leads.Lead, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, r TimeRange) (Summary, error) {
	if err := s.check(r); err != nil {
		return Summary{}, err
	}

	rows, err := s.repo.ListCalls(ctx, r.From, r.To)
	if err != nil {
		return Summary{}, err
	}

	var out Summary
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		if c.RecordingURL != "" {
			out.RecordedCalls++
		}
		switch c.Status {
		case calls.CallStatusCompleted:
			out.CompletedCalls++
		case calls.CallStatusFailed:
			out.FailedCalls++
		case calls.CallStatusNoAnswer:
			out.NoAnswerCalls++
		case calls.CallStatusBusy:
			out.BusyCalls++
		case calls.CallStatusAnswered:
			out.AnsweredCalls++
		case calls.CallStatusInitiated, calls.CallStatusRinging:
			// not counted separately
		}
	}
	if out.TotalCalls > 0 {
		out.CompletionRate = float64(out.CompletedCalls) / float64(out.TotalCalls)
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}

func (s *Service) LeadInterest(ctx context.Context, r TimeRange) (InterestBreakdown, error) {
	if err := s.check(r); err != nil {
		return InterestBreakdown{}, err
	}

	rows, err := s.repo.ListLeads(ctx, r.From, r.To)
	if err != nil {
		return InterestBreakdown{}, err
	}

	var out InterestBreakdown
	scoreSum := 0
	for _, l := range rows {
		out.TotalLeads++
		scoreSum += l.Score
		switch l.Quality {
		case leads.QualityHot:
			out.HotLeads++
		case leads.QualityWarm:
			out.WarmLeads++
		case leads.QualityCold:
			out.ColdLeads++
		case leads.QualityUnqualified:
			out.UnqualifiedLeads++
		}
		if l.MentionedPricing {
			out.PricingInterest++
		}
		if l.MentionedInsurance {
			out.InsuranceInterest++
		}
		if l.MentionedScheduling {
			out.SchedulingInterest++
		}
	}
	if out.TotalLeads > 0 {
		out.AverageScore = float64(scoreSum) / float64(out.TotalLeads)
	}
	return out, nil
}

func (s *Service) check(r TimeRange) error {
	if s.repo == nil {
		return errors.New("analytics: repository not configured")
	}
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidRequest
	}
	return nil
}

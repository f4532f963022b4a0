package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRequest = errors.New("leads: invalid request")
	ErrInvalidTier    = errors.New("leads: invalid tier")
)

// Repository is the persistence contract for leads.
type Repository interface {
	Insert(ctx context.Context, l Lead) (Lead, error)
	Update(ctx context.Context, l Lead) (Lead, error)
	GetByID(ctx context.Context, id string) (Lead, error)
	GetByCallID(ctx context.Context, callID string) (Lead, bool, error)

	// FindMostRecentByPhoneSince returns the newest lead for phone captured at
	// or after the since instant. The window is inclusive at its boundary.
	FindMostRecentByPhoneSince(ctx context.Context, phone string, since time.Time) (Lead, bool, error)

	List(ctx context.Context, from, to time.Time) ([]Lead, error)
}

// Service captures and scores leads from completed calls.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Capture scores the call metrics and upserts a lead for the caller.
//
// Deduplication: a lead for the same phone captured within the trailing 7-day
// window is updated in place. Scoring fields are overwritten, not merged; the
// most recent call wins. CallCount still increments so repeat contact is not
// silently invisible. A caller outside the window gets a fresh lead row tied
// to the completing call.
func (s *Service) Capture(ctx context.Context, callID, phone string, metrics Input) (Lead, error) {
	if s.repo == nil {
		return Lead{}, errors.New("leads: repository not configured")
	}
	if callID == "" || phone == "" {
		return Lead{}, ErrInvalidRequest
	}

	now := s.clock().UTC()
	res := Score(metrics)

	lead := Lead{
		CallID:              callID,
		Phone:               phone,
		Score:               res.Score,
		Quality:             res.Quality,
		Sentiment:           metrics.Sentiment,
		Topics:              metrics.Topics,
		MentionedPricing:    res.Breakdown[RulePricing] > 0,
		MentionedInsurance:  res.Breakdown[RuleInsurance] > 0,
		MentionedScheduling: res.Breakdown[RuleScheduling] > 0,
		Notes:               qualificationNotes(res, metrics),
		CallCount:           1,
		CapturedAt:          now,
	}

	existing, found, err := s.repo.FindMostRecentByPhoneSince(ctx, phone, now.Add(-DedupWindow))
	if err != nil {
		return Lead{}, err
	}
	if !found {
		return s.repo.Insert(ctx, lead)
	}

	// Overwrite in place; the lead stays anchored to its original call.
	existing.Score = lead.Score
	existing.Quality = lead.Quality
	existing.Sentiment = lead.Sentiment
	existing.Topics = lead.Topics
	existing.MentionedPricing = lead.MentionedPricing
	existing.MentionedInsurance = lead.MentionedInsurance
	existing.MentionedScheduling = lead.MentionedScheduling
	existing.Notes = lead.Notes
	existing.CallCount++
	existing.CapturedAt = now
	existing.TierOverriddenAt = nil
	return s.repo.Update(ctx, existing)
}

// SetTier manually overrides a lead's quality tier.
func (s *Service) SetTier(ctx context.Context, leadID string, tier Quality) (Lead, error) {
	if s.repo == nil {
		return Lead{}, errors.New("leads: repository not configured")
	}
	if leadID == "" {
		return Lead{}, ErrInvalidRequest
	}
	if !IsValidTier(tier) {
		return Lead{}, ErrInvalidTier
	}

	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return Lead{}, err
	}
	now := s.clock().UTC()
	lead.Quality = tier
	lead.TierOverriddenAt = &now
	return s.repo.Update(ctx, lead)
}

func qualificationNotes(res Result, metrics Input) string {
	var interests []string
	if res.Breakdown[RulePricing] > 0 {
		interests = append(interests, "pricing")
	}
	if res.Breakdown[RuleInsurance] > 0 {
		interests = append(interests, "insurance")
	}
	if res.Breakdown[RuleScheduling] > 0 {
		interests = append(interests, "scheduling")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scored %d (%s) from a %ds call.", res.Score, res.Quality, metrics.DurationSeconds)
	if len(interests) > 0 {
		fmt.Fprintf(&b, " Interest: %s.", strings.Join(interests, ", "))
	}
	if res.Breakdown[RuleEngagement] > 0 {
		b.WriteString(" Caller asked multiple questions.")
	}
	return b.String()
}

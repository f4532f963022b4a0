package leads

import "time"

// Lead is a scored sales prospect derived from at most one call.
//
// Invariants:
// - At most one lead per call.
// - Repeat calls from one phone within the dedup window collapse onto the
//   existing lead row (overwrite; the latest call's scoring wins).
// - Leads are never deleted.

type Lead struct {
	ID     string `json:"id" db:"id"`
	CallID string `json:"call_id" db:"call_id"`
	Phone  string `json:"phone" db:"phone"`

	Score   int     `json:"score" db:"score"`
	Quality Quality `json:"quality" db:"quality"`

	// Sentiment is the 0..1 sentiment score when the provider supplied one.
	Sentiment *float64 `json:"sentiment,omitempty" db:"sentiment"`

	Topics []string `json:"topics,omitempty" db:"topics"`

	MentionedPricing    bool `json:"mentioned_pricing" db:"mentioned_pricing"`
	MentionedInsurance  bool `json:"mentioned_insurance" db:"mentioned_insurance"`
	MentionedScheduling bool `json:"mentioned_scheduling" db:"mentioned_scheduling"`

	Notes string `json:"notes,omitempty" db:"notes"`

	// CallCount tracks how many calls collapsed onto this lead within the
	// dedup window. Scoring still reflects only the most recent call.
	CallCount int `json:"call_count" db:"call_count"`

	CapturedAt time.Time  `json:"captured_at" db:"captured_at"`
	FollowUpAt *time.Time `json:"follow_up_at,omitempty" db:"follow_up_at"`

	// TierOverriddenAt is set when an operator manually overrides Quality.
	TierOverriddenAt *time.Time `json:"tier_overridden_at,omitempty" db:"tier_overridden_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Quality string

const (
	QualityHot         Quality = "HOT"
	QualityWarm        Quality = "WARM"
	QualityCold        Quality = "COLD"
	QualityUnqualified Quality = "UNQUALIFIED"
)

// IsValidTier reports whether q is acceptable as a manual override value.
// UNQUALIFIED exists only for overrides; the scorer never produces it.
func IsValidTier(q Quality) bool {
	switch q {
	case QualityHot, QualityWarm, QualityCold, QualityUnqualified:
		return true
	default:
		return false
	}
}

// DedupWindow is the trailing period within which repeat calls from one phone
// collapse to a single lead.
const DedupWindow = 7 * 24 * time.Hour

package leads

import (
	"math"
	"strings"
)

// Input carries the call metrics the scorer evaluates.
// Transcript and Topics may be empty; Sentiment may be nil. Missing inputs
// contribute zero points rather than erroring.
type Input struct {
	DurationSeconds int
	Transcript      string
	Sentiment       *float64
	Topics          []string
}

// Result is the scorer output. Breakdown maps rule name to awarded points,
// including zero-point entries, so callers can distinguish "rule did not fire"
// from "rule not evaluated".
type Result struct {
	Score     int
	Quality   Quality
	Breakdown map[string]int
}

// Rule names, stable: the capture service derives interest flags from them
// and they are exposed in notification payloads.
const (
	RuleDuration   = "duration"
	RulePricing    = "pricing_interest"
	RuleInsurance  = "insurance_interest"
	RuleScheduling = "scheduling_intent"
	RuleSentiment  = "sentiment"
	RuleEngagement = "engagement"
	RuleLongCall   = "long_call_bonus"
)

// Score maps call metrics to a 0..100 lead score and a quality tier.
// Rules are additive and independently computed; the sum is clamped to
// [0,100] afterwards. The function is pure and deterministic.
func Score(in Input) Result {
	transcript := strings.ToLower(in.Transcript)
	topics := make(map[string]struct{}, len(in.Topics))
	for _, t := range in.Topics {
		topics[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	breakdown := map[string]int{
		RuleDuration:   durationPoints(in.DurationSeconds),
		RulePricing:    interestPoints(transcript, topics, 20, "pricing", "cost", "price", "how much"),
		RuleInsurance:  interestPoints(transcript, topics, 15, "insurance", "insurance", "coverage"),
		RuleScheduling: interestPoints(transcript, topics, 25, "scheduling", "appointment", "schedule", "when can"),
		RuleSentiment:  sentimentPoints(in.Sentiment),
		RuleEngagement: engagementPoints(transcript),
		RuleLongCall:   longCallBonus(in.DurationSeconds),
	}

	sum := 0
	for _, pts := range breakdown {
		sum += pts
	}
	score := clamp(sum, 0, 100)

	return Result{
		Score:     score,
		Quality:   qualityFor(score),
		Breakdown: breakdown,
	}
}

func qualityFor(score int) Quality {
	switch {
	case score >= 75:
		return QualityHot
	case score >= 50:
		return QualityWarm
	default:
		return QualityCold
	}
}

func durationPoints(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	pts := seconds / 10
	if pts > 30 {
		pts = 30
	}
	return pts
}

func interestPoints(transcript string, topics map[string]struct{}, points int, topic string, phrases ...string) int {
	if _, ok := topics[topic]; ok {
		return points
	}
	for _, p := range phrases {
		if transcript != "" && strings.Contains(transcript, p) {
			return points
		}
	}
	return 0
}

func sentimentPoints(s *float64) int {
	if s == nil {
		return 0
	}
	return int(math.Round(*s * 20))
}

func engagementPoints(transcript string) int {
	if strings.Count(transcript, "?") >= 3 {
		return 10
	}
	return 0
}

func longCallBonus(seconds int) int {
	if seconds > 180 {
		return 10
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

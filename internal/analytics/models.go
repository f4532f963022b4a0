package analytics

import "time"

// TimeRange bounds a query; From inclusive, To exclusive.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Summary struct {
	TotalCalls     int `json:"total_calls"`
	CompletedCalls int `json:"completed_calls"`
	FailedCalls    int `json:"failed_calls"`
	NoAnswerCalls  int `json:"no_answer_calls"`
	BusyCalls      int `json:"busy_calls"`
	AnsweredCalls  int `json:"answered_calls"`

	// CompletionRate is completed / total, 0 when no calls.
	CompletionRate float64 `json:"completion_rate"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	RecordedCalls int `json:"recorded_calls"`
}

type InterestBreakdown struct {
	TotalLeads int `json:"total_leads"`

	HotLeads         int `json:"hot_leads"`
	WarmLeads        int `json:"warm_leads"`
	ColdLeads        int `json:"cold_leads"`
	UnqualifiedLeads int `json:"unqualified_leads"`

	PricingInterest    int `json:"pricing_interest"`
	InsuranceInterest  int `json:"insurance_interest"`
	SchedulingInterest int `json:"scheduling_interest"`

	AverageScore float64 `json:"average_score"`
}

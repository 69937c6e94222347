package domain

import "time"

type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewResolved  ReviewStatus = "resolved"
	ReviewDismissed ReviewStatus = "dismissed"
)

// ReviewItem is a stored ReviewQueueEntry together with its review state.
type ReviewItem struct {
	ID             string       `json:"id"`
	Text           string       `json:"text"`
	Intent         *string      `json:"intent"`
	Confidence     float64      `json:"confidence"`
	Status         ReviewStatus `json:"status"`
	ResolvedIntent *string      `json:"resolved_intent,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
}

// TriggerMatch is a trigger phrase ranked against an operator's search query.
type TriggerMatch struct {
	Intent string `json:"intent"`
	Phrase string `json:"phrase"`
	Score  int    `json:"score"`
}

package domain

// ConfidenceBand is the coarse bucket a detection confidence falls into.
type ConfidenceBand string

const (
	BandHigh      ConfidenceBand = "high"
	BandAmbiguous ConfidenceBand = "ambiguous"
	BandUnknown   ConfidenceBand = "unknown"
)

// Slot keys understood by the order handling code.
const (
	SlotQuantity = "adet"
	SlotProduct  = "urun"
)

// MethodScores holds the per-method similarity scores, each in [0,1].
type MethodScores struct {
	Rule      float64 `json:"rule"`
	Fuzzy     float64 `json:"fuzzy"`
	Phonetic  float64 `json:"phonetic"`
	Embedding float64 `json:"embedding"`
}

// DetectionResult is produced fresh for every detection call and never mutated afterwards.
type DetectionResult struct {
	Intent         *string        `json:"intent"`
	MatchedTrigger *string        `json:"matched_trigger"`
	Confidence     float64        `json:"confidence"`
	MethodScores   MethodScores   `json:"method_scores"`
	SuggestedSlot  map[string]any `json:"suggested_slot"`
	ConfidenceBand ConfidenceBand `json:"confidence_band"`
}

// IntentName returns the detected intent or an empty string.
func (r DetectionResult) IntentName() string {
	if r.Intent == nil {
		return ""
	}
	return *r.Intent
}

// Trigger returns the matched trigger phrase or an empty string.
func (r DetectionResult) Trigger() string {
	if r.MatchedTrigger == nil {
		return ""
	}
	return *r.MatchedTrigger
}

// Quantity returns the "adet" slot, defaulting to 1.
func (r DetectionResult) Quantity() int {
	if n, ok := r.SuggestedSlot[SlotQuantity].(int); ok && n >= 1 {
		return n
	}
	return 1
}

// ReviewQueueEntry is appended to a review sink when a detection is not confident enough.
type ReviewQueueEntry struct {
	Text       string  `json:"text"`
	Intent     *string `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Utterance is a conversational turn received from a channel (waiter tablet, chat, kiosk).
type Utterance struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Channel  string `json:"channel,omitempty"`
	Text     string `json:"text"`
}

// DetectionEvent is published once an utterance has been interpreted.
type DetectionEvent struct {
	UtteranceID string          `json:"utterance_id"`
	TenantID    string          `json:"tenant_id"`
	Result      DetectionResult `json:"result"`
	DetectedAt  int64           `json:"detected_at"`
}

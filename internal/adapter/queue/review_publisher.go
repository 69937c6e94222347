package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seu-repo/restoran-pos/internal/domain"
)

// ReviewPublisher is a review sink that forwards entries to the message queue, for review
// tooling living outside this service.
type ReviewPublisher struct {
	mq      MessageQueue
	subject string
}

func NewReviewPublisher(mq MessageQueue, subject string) *ReviewPublisher {
	if subject == "" {
		subject = SubjectReview
	}
	return &ReviewPublisher{mq: mq, subject: subject}
}

type reviewMessage struct {
	domain.ReviewQueueEntry
	QueuedAt int64 `json:"queued_at"`
}

func (p *ReviewPublisher) Append(_ context.Context, entry domain.ReviewQueueEntry) error {
	data, err := json.Marshal(reviewMessage{ReviewQueueEntry: entry, QueuedAt: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("marshal review entry: %w", err)
	}
	return p.mq.Publish(p.subject, data)
}

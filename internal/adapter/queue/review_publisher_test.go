package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/mocks"
)

func TestReviewPublisher_Append(t *testing.T) {
	mq := mocks.NewMockMessageQueue()
	p := NewReviewPublisher(mq, "")
	intent := "siparis_cay"

	err := p.Append(context.Background(), domain.ReviewQueueEntry{Text: "çayy verr", Intent: &intent, Confidence: 0.42})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	msgs := mq.GetPublishedMessages(SubjectReview)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message on %s, got %d", SubjectReview, len(msgs))
	}

	var got map[string]any
	if err := json.Unmarshal(msgs[0], &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["text"] != "çayy verr" || got["intent"] != "siparis_cay" || got["confidence"] != 0.42 {
		t.Errorf("unexpected payload %v", got)
	}
	if _, ok := got["queued_at"]; !ok {
		t.Error("expected queued_at")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New("kafka", "kafka://localhost", nil); err == nil {
		t.Error("expected error for unknown driver")
	}
}

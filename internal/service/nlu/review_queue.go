package nlu

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seu-repo/restoran-pos/internal/domain"
)

// DefaultReviewCapacity bounds the in-memory review queue.
const DefaultReviewCapacity = 1000

// MemoryReviewQueue is an in-process ReviewStore. When full, the oldest entry is dropped.
type MemoryReviewQueue struct {
	mu       sync.RWMutex
	items    []domain.ReviewItem
	capacity int
	now      func() time.Time
}

func NewMemoryReviewQueue(capacity int) *MemoryReviewQueue {
	if capacity <= 0 {
		capacity = DefaultReviewCapacity
	}
	return &MemoryReviewQueue{capacity: capacity, now: time.Now}
}

func (q *MemoryReviewQueue) Append(_ context.Context, entry domain.ReviewQueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, domain.ReviewItem{
		ID:         uuid.NewString(),
		Text:       entry.Text,
		Intent:     copyString(entry.Intent),
		Confidence: entry.Confidence,
		Status:     domain.ReviewPending,
		CreatedAt:  q.now(),
	})
	return nil
}

// Entries returns every stored entry, oldest first, as they were appended.
func (q *MemoryReviewQueue) Entries() []domain.ReviewQueueEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]domain.ReviewQueueEntry, len(q.items))
	for i, item := range q.items {
		out[i] = domain.ReviewQueueEntry{
			Text:       item.Text,
			Intent:     copyString(item.Intent),
			Confidence: item.Confidence,
		}
	}
	return out
}

func (q *MemoryReviewQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

func (q *MemoryReviewQueue) ListPending(_ context.Context, limit int) ([]domain.ReviewItem, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var out []domain.ReviewItem
	for _, item := range q.items {
		if item.Status != domain.ReviewPending {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (q *MemoryReviewQueue) Get(_ context.Context, id string) (*domain.ReviewItem, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	i := q.find(id)
	if i < 0 {
		return nil, domain.ErrReviewNotFound
	}
	item := q.items[i]
	return &item, nil
}

func (q *MemoryReviewQueue) Resolve(_ context.Context, id, intent string) (*domain.ReviewItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.find(id)
	if i < 0 {
		return nil, domain.ErrReviewNotFound
	}
	now := q.now()
	q.items[i].Status = domain.ReviewResolved
	q.items[i].ResolvedIntent = &intent
	q.items[i].ResolvedAt = &now

	item := q.items[i]
	return &item, nil
}

func (q *MemoryReviewQueue) Dismiss(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.find(id)
	if i < 0 {
		return domain.ErrReviewNotFound
	}
	now := q.now()
	q.items[i].Status = domain.ReviewDismissed
	q.items[i].ResolvedAt = &now
	return nil
}

func (q *MemoryReviewQueue) find(id string) int {
	for i, item := range q.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

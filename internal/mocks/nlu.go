package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/restoran-pos/internal/domain"
)

// MockTriggerRepository keeps the trigger set in memory and counts writes.
type MockTriggerRepository struct {
	mu       sync.Mutex
	Set      domain.TriggerSet
	Saves    int
	LoadFunc func(ctx context.Context) (domain.TriggerSet, error)
	SaveFunc func(ctx context.Context, set domain.TriggerSet) error
}

func NewMockTriggerRepository(defs ...domain.IntentDefinition) *MockTriggerRepository {
	return &MockTriggerRepository{Set: domain.NewTriggerSet(defs...)}
}

func (m *MockTriggerRepository) Load(ctx context.Context) (domain.TriggerSet, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Set.Clone(), nil
}

func (m *MockTriggerRepository) Save(ctx context.Context, set domain.TriggerSet) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, set)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Set = set.Clone()
	m.Saves++
	return nil
}

// MockEmbedder returns vectors from a table, or from EmbedFunc when set.
type MockEmbedder struct {
	mu        sync.Mutex
	Vectors   map[string][]float64
	Calls     []string
	EmbedFunc func(ctx context.Context, text string) ([]float64, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return m.Vectors[text], nil
}

// CallCount returns how many times Embed was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockReviewSink records appended entries.
type MockReviewSink struct {
	mu         sync.Mutex
	Entries    []domain.ReviewQueueEntry
	AppendFunc func(ctx context.Context, entry domain.ReviewQueueEntry) error
}

func (m *MockReviewSink) Append(ctx context.Context, entry domain.ReviewQueueEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

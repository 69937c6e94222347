package nlu

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/observability/telemetry"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

// TriggerStore applies administrative edits to a trigger repository. Every mutation reads the
// current set, changes it and writes the whole set back before returning.
type TriggerStore struct {
	repo ports.TriggerRepository
	mu   sync.Mutex
	log  *zap.Logger
}

func NewTriggerStore(repo ports.TriggerRepository, log *zap.Logger) *TriggerStore {
	return &TriggerStore{repo: repo, log: log}
}

// Load returns the persisted set. A missing backing resource yields an empty set.
func (s *TriggerStore) Load(ctx context.Context) (domain.TriggerSet, error) {
	set, err := s.repo.Load(ctx)
	if err != nil {
		return domain.TriggerSet{}, err
	}
	telemetry.TriggerPhrases.Set(float64(set.PhraseCount()))
	return set, nil
}

// Save replaces the persisted set.
func (s *TriggerStore) Save(ctx context.Context, set domain.TriggerSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, set); err != nil {
		telemetry.TriggerMutationsTotal.WithLabelValues("save", "error").Inc()
		return err
	}
	telemetry.TriggerMutationsTotal.WithLabelValues("save", "ok").Inc()
	telemetry.TriggerPhrases.Set(float64(set.PhraseCount()))
	return nil
}

// Add stores phrase under intent. It reports false, without writing, when the exact phrase
// is already there.
func (s *TriggerStore) Add(ctx context.Context, intent, phrase string) (bool, error) {
	if err := validateTrigger(intent, phrase); err != nil {
		return false, err
	}
	return s.mutate(ctx, "add", func(set *domain.TriggerSet) bool {
		return set.AddPhrase(intent, phrase)
	})
}

// Remove deletes phrase from intent. It reports false, without writing, when the phrase is absent.
func (s *TriggerStore) Remove(ctx context.Context, intent, phrase string) (bool, error) {
	if err := validateTrigger(intent, phrase); err != nil {
		return false, err
	}
	return s.mutate(ctx, "remove", func(set *domain.TriggerSet) bool {
		return set.RemovePhrase(intent, phrase)
	})
}

// SetDefaultSlots replaces the slot template of intent. An empty map clears it.
func (s *TriggerStore) SetDefaultSlots(ctx context.Context, intent string, slots map[string]any) error {
	if strings.TrimSpace(intent) == "" {
		return domain.ErrIntentRequired
	}
	_, err := s.mutate(ctx, "slots", func(set *domain.TriggerSet) bool {
		set.SetDefaultSlots(intent, slots)
		return true
	})
	return err
}

func (s *TriggerStore) mutate(ctx context.Context, op string, apply func(*domain.TriggerSet) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.repo.Load(ctx)
	if err != nil {
		telemetry.TriggerMutationsTotal.WithLabelValues(op, "error").Inc()
		return false, err
	}
	if !apply(&set) {
		telemetry.TriggerMutationsTotal.WithLabelValues(op, "noop").Inc()
		return false, nil
	}
	if err := s.repo.Save(ctx, set); err != nil {
		telemetry.TriggerMutationsTotal.WithLabelValues(op, "error").Inc()
		return false, err
	}

	telemetry.TriggerMutationsTotal.WithLabelValues(op, "ok").Inc()
	telemetry.TriggerPhrases.Set(float64(set.PhraseCount()))
	s.log.Info("Trigger set updated",
		zap.String("op", op),
		zap.Int("intents", set.Len()),
		zap.Int("phrases", set.PhraseCount()),
	)
	return true, nil
}

func validateTrigger(intent, phrase string) error {
	if strings.TrimSpace(intent) == "" {
		return domain.ErrIntentRequired
	}
	if strings.TrimSpace(phrase) == "" {
		return domain.ErrPhraseRequired
	}
	return nil
}

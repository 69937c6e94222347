package nlu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

var ErrReviewStoreUnavailable = errors.New("review store not configured")

var _ ports.IntentService = (*Service)(nil)

// Service owns the loaded trigger set. Detection runs against an in-memory snapshot that is
// replaced after every administrative change.
type Service struct {
	store    *TriggerStore
	resolver *Resolver
	reviews  ports.ReviewStore
	log      *zap.Logger

	mu       sync.RWMutex
	triggers domain.TriggerSet
}

// NewService wires the service. reviews may be nil when no review store is configured.
func NewService(store *TriggerStore, resolver *Resolver, reviews ports.ReviewStore, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		reviews:  reviews,
		log:      log,
	}
}

// Reload replaces the snapshot with the persisted trigger set.
func (s *Service) Reload(ctx context.Context) error {
	set, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load triggers: %w", err)
	}

	s.mu.Lock()
	s.triggers = set
	s.mu.Unlock()

	s.log.Info("Trigger set loaded",
		zap.Int("intents", set.Len()),
		zap.Int("phrases", set.PhraseCount()),
	)
	return nil
}

// Detect interprets text against the current snapshot.
func (s *Service) Detect(ctx context.Context, text string) (domain.DetectionResult, error) {
	s.mu.RLock()
	set := s.triggers
	s.mu.RUnlock()

	return s.resolver.Detect(ctx, text, set)
}

// Triggers returns a copy of the current snapshot.
func (s *Service) Triggers() domain.TriggerSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.triggers.Clone()
}

func (s *Service) AddTrigger(ctx context.Context, intent, phrase string) (bool, error) {
	added, err := s.store.Add(ctx, intent, phrase)
	if err != nil || !added {
		return added, err
	}
	return true, s.Reload(ctx)
}

func (s *Service) RemoveTrigger(ctx context.Context, intent, phrase string) (bool, error) {
	removed, err := s.store.Remove(ctx, intent, phrase)
	if err != nil || !removed {
		return removed, err
	}
	return true, s.Reload(ctx)
}

func (s *Service) SetDefaultSlots(ctx context.Context, intent string, slots map[string]any) error {
	if err := s.store.SetDefaultSlots(ctx, intent, slots); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// SearchTriggers ranks every phrase of the snapshot against query, best first. An empty query
// lists phrases in set order. A limit <= 0 means no limit.
func (s *Service) SearchTriggers(query string, limit int) []domain.TriggerMatch {
	s.mu.RLock()
	src := newPhraseSource(s.triggers)
	s.mu.RUnlock()

	var out []domain.TriggerMatch
	if strings.TrimSpace(query) == "" {
		for i := 0; i < src.Len(); i++ {
			out = append(out, domain.TriggerMatch{Intent: src.intents[i], Phrase: src.phrases[i]})
		}
	} else {
		for _, m := range fuzzy.FindFrom(query, src) {
			out = append(out, domain.TriggerMatch{
				Intent: src.intents[m.Index],
				Phrase: m.Str,
				Score:  m.Score,
			})
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ResolveReview teaches the engine from a reviewed entry: its original text becomes a trigger
// phrase of intent, then the entry is marked resolved.
func (s *Service) ResolveReview(ctx context.Context, id, intent string) (*domain.ReviewItem, error) {
	if s.reviews == nil {
		return nil, ErrReviewStoreUnavailable
	}
	if strings.TrimSpace(intent) == "" {
		return nil, domain.ErrIntentRequired
	}

	item, err := s.reviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.AddTrigger(ctx, intent, item.Text); err != nil {
		return nil, fmt.Errorf("add reviewed phrase: %w", err)
	}

	resolved, err := s.reviews.Resolve(ctx, id, intent)
	if err != nil {
		return nil, err
	}
	s.log.Info("Review entry resolved",
		zap.String("id", id),
		zap.String("intent", intent),
		zap.String("text", item.Text),
	)
	return resolved, nil
}

func (s *Service) DismissReview(ctx context.Context, id string) error {
	if s.reviews == nil {
		return ErrReviewStoreUnavailable
	}
	return s.reviews.Dismiss(ctx, id)
}

// PendingReviews lists entries still waiting for an operator.
func (s *Service) PendingReviews(ctx context.Context, limit int) ([]domain.ReviewItem, error) {
	if s.reviews == nil {
		return nil, ErrReviewStoreUnavailable
	}
	return s.reviews.ListPending(ctx, limit)
}

// phraseSource flattens a trigger set for fuzzy.FindFrom.
type phraseSource struct {
	intents []string
	phrases []string
}

func newPhraseSource(set domain.TriggerSet) phraseSource {
	var src phraseSource
	for _, def := range set.Intents {
		for _, p := range def.Triggers {
			src.intents = append(src.intents, def.Name)
			src.phrases = append(src.phrases, p)
		}
	}
	return src
}

func (p phraseSource) String(i int) string { return p.phrases[i] }
func (p phraseSource) Len() int            { return len(p.phrases) }

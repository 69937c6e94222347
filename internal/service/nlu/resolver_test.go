package nlu

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/mocks"
)

func teaTriggers() domain.TriggerSet {
	return domain.NewTriggerSet(domain.IntentDefinition{
		Name:     domain.CanonicalTeaIntent,
		Triggers: []string{"çay ver", "bir çay", "çay alalım", "çay"},
	})
}

func newTestResolver(cfg ResolverConfig) *Resolver {
	return NewResolver(cfg, zap.NewNop())
}

func TestDetect_ExactMatch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	triggers := domain.NewTriggerSet(domain.IntentDefinition{
		Name:     domain.CanonicalTeaIntent,
		Triggers: []string{"çay ver"},
	})
	r := newTestResolver(ResolverConfig{})

	// Act
	result, err := r.Detect(ctx, "çay ver", triggers)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.IntentName() != domain.CanonicalTeaIntent {
		t.Errorf("expected intent %q, got %q", domain.CanonicalTeaIntent, result.IntentName())
	}
	if result.Trigger() != "çay ver" {
		t.Errorf("expected matched trigger 'çay ver', got %q", result.Trigger())
	}
	if result.MethodScores.Rule != 1 {
		t.Errorf("expected rule score 1, got %v", result.MethodScores.Rule)
	}
	// rule + fuzzy + shingle without an embedding signal
	if result.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", result.Confidence)
	}
	if result.ConfidenceBand != domain.BandHigh {
		t.Errorf("expected band high, got %s", result.ConfidenceBand)
	}
}

func TestDetect_ExactMatchWithEmbeddings(t *testing.T) {
	embedder := &mocks.MockEmbedder{
		EmbedFunc: func(ctx context.Context, text string) ([]float64, error) {
			return []float64{0.5, 0.5, 0.1}, nil
		},
	}
	r := newTestResolver(ResolverConfig{Embedder: embedder})

	result, err := r.Detect(context.Background(), "çay ver", domain.NewTriggerSet(domain.IntentDefinition{
		Name:     domain.CanonicalTeaIntent,
		Triggers: []string{"çay ver"},
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", result.Confidence)
	}
	if math.Abs(result.MethodScores.Embedding-1) > 1e-9 {
		t.Errorf("expected embedding score 1, got %v", result.MethodScores.Embedding)
	}
	// input once plus one phrase
	if embedder.CallCount() != 2 {
		t.Errorf("expected 2 embed calls, got %d", embedder.CallCount())
	}
}

func TestDetect_SubstringContainment(t *testing.T) {
	r := newTestResolver(ResolverConfig{})

	result, err := r.Detect(context.Background(), "çok sıcak bir çay", domain.NewTriggerSet(domain.IntentDefinition{
		Name:     domain.CanonicalTeaIntent,
		Triggers: []string{"çay"},
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.MethodScores.Rule != 0.9 {
		t.Errorf("expected rule score 0.9, got %v", result.MethodScores.Rule)
	}
	if result.Confidence < 0.6 {
		t.Errorf("expected confidence >= 0.6, got %v", result.Confidence)
	}
	if result.ConfidenceBand == domain.BandUnknown {
		t.Errorf("expected high or ambiguous band, got %s", result.ConfidenceBand)
	}
}

func TestDetect_NoisyInput(t *testing.T) {
	r := newTestResolver(ResolverConfig{})

	result, err := r.Detect(context.Background(), "çaaay vrsn", teaTriggers())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Confidence < DefaultLowThreshold {
		t.Errorf("expected confidence >= %v, got %v", DefaultLowThreshold, result.Confidence)
	}
	if result.ConfidenceBand != domain.BandAmbiguous && result.ConfidenceBand != domain.BandHigh {
		t.Errorf("expected ambiguous or high band, got %s", result.ConfidenceBand)
	}
	if result.IntentName() != domain.CanonicalTeaIntent {
		t.Errorf("expected tea intent, got %q", result.IntentName())
	}
}

func TestDetect_UnrelatedInput(t *testing.T) {
	r := newTestResolver(ResolverConfig{})

	result, err := r.Detect(context.Background(), "Pastan var mı?", teaTriggers())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Confidence >= 0.4 {
		t.Errorf("expected confidence < 0.4, got %v", result.Confidence)
	}
	if result.ConfidenceBand != domain.BandUnknown {
		t.Errorf("expected band unknown, got %s", result.ConfidenceBand)
	}
}

func TestDetect_EmptyInput(t *testing.T) {
	sink := &mocks.MockReviewSink{}
	r := newTestResolver(ResolverConfig{ReviewSink: sink})

	for _, text := range []string{"", "  ", "?!"} {
		result, err := r.Detect(context.Background(), text, teaTriggers())
		if err != nil {
			t.Fatalf("%q: expected no error, got %v", text, err)
		}
		if result.Intent != nil || result.MatchedTrigger != nil {
			t.Errorf("%q: expected null intent and trigger, got %v / %v", text, result.Intent, result.MatchedTrigger)
		}
		if result.Confidence != 0 || result.MethodScores != (domain.MethodScores{}) {
			t.Errorf("%q: expected zero scores, got %v %+v", text, result.Confidence, result.MethodScores)
		}
		if result.ConfidenceBand != domain.BandUnknown {
			t.Errorf("%q: expected band unknown, got %s", text, result.ConfidenceBand)
		}
		if len(result.SuggestedSlot) != 1 || result.SuggestedSlot[domain.SlotQuantity] != 1 {
			t.Errorf("%q: expected slot {adet: 1}, got %v", text, result.SuggestedSlot)
		}
	}
	if len(sink.Entries) != 0 {
		t.Errorf("empty input must not be queued for review, got %d entries", len(sink.Entries))
	}
}

func TestDetect_EmptyTriggerSet(t *testing.T) {
	r := newTestResolver(ResolverConfig{})

	result, err := r.Detect(context.Background(), "iki çay ver", domain.TriggerSet{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Intent != nil {
		t.Errorf("expected null intent, got %q", *result.Intent)
	}
	if result.Confidence != 0 || result.ConfidenceBand != domain.BandUnknown {
		t.Errorf("expected 0/unknown, got %v/%s", result.Confidence, result.ConfidenceBand)
	}
	if result.Quantity() != 2 {
		t.Errorf("expected quantity 2 even without a match, got %d", result.Quantity())
	}
}

func TestDetect_PhrasesNormalizingToEmptyAreSkipped(t *testing.T) {
	r := newTestResolver(ResolverConfig{})

	result, err := r.Detect(context.Background(), "çay", domain.NewTriggerSet(domain.IntentDefinition{
		Name:     "noise",
		Triggers: []string{"!!!", "   "},
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Intent != nil {
		t.Errorf("expected null intent, got %q", *result.Intent)
	}
}

func TestDetect_TieGoesToFirstIntent(t *testing.T) {
	r := newTestResolver(ResolverConfig{})
	triggers := domain.NewTriggerSet(
		domain.IntentDefinition{Name: "birinci", Triggers: []string{"çay ver"}},
		domain.IntentDefinition{Name: "ikinci", Triggers: []string{"çay ver"}},
	)

	result, err := r.Detect(context.Background(), "çay ver", triggers)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.IntentName() != "birinci" {
		t.Errorf("expected first intent to win the tie, got %q", result.IntentName())
	}
}

func TestDetect_PicksBestIntent(t *testing.T) {
	r := newTestResolver(ResolverConfig{})
	triggers := domain.NewTriggerSet(
		domain.IntentDefinition{Name: domain.CanonicalTeaIntent, Triggers: []string{"çay ver", "bir çay"}},
		domain.IntentDefinition{Name: "hesap_iste", Triggers: []string{"hesap lütfen", "hesap"}},
	)

	result, err := r.Detect(context.Background(), "Hesap lütfen!", triggers)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.IntentName() != "hesap_iste" {
		t.Errorf("expected hesap_iste, got %q", result.IntentName())
	}
	if result.Trigger() != "hesap lütfen" {
		t.Errorf("expected matched trigger 'hesap lütfen', got %q", result.Trigger())
	}
	if _, ok := result.SuggestedSlot[domain.SlotProduct]; ok {
		t.Errorf("non-tea intent must not suggest a product, got %v", result.SuggestedSlot)
	}
}

func TestDetect_MatchedTriggerIsBestCombinedPhrase(t *testing.T) {
	r := newTestResolver(ResolverConfig{})
	triggers := domain.NewTriggerSet(domain.IntentDefinition{
		Name:     domain.CanonicalTeaIntent,
		Triggers: []string{"kahve", "çay ver", "çay"},
	})

	result, err := r.Detect(context.Background(), "çay ver", triggers)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Trigger() != "çay ver" {
		t.Errorf("expected matched trigger 'çay ver', got %q", result.Trigger())
	}
}

func TestDetect_SuggestedSlots(t *testing.T) {
	r := newTestResolver(ResolverConfig{})
	triggers := domain.NewTriggerSet(
		domain.IntentDefinition{Name: domain.CanonicalTeaIntent, Triggers: []string{"çay ver"}},
		domain.IntentDefinition{
			Name:         "siparis_kahve",
			Triggers:     []string{"kahve ver"},
			DefaultSlots: map[string]any{domain.SlotProduct: "Türk Kahvesi", domain.SlotQuantity: 9},
		},
	)

	tea, err := r.Detect(context.Background(), "iki çay ver", triggers)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tea.SuggestedSlot[domain.SlotProduct] != "Çay" {
		t.Errorf("expected urun=Çay, got %v", tea.SuggestedSlot)
	}
	if tea.SuggestedSlot[domain.SlotQuantity] != 2 {
		t.Errorf("expected adet=2, got %v", tea.SuggestedSlot)
	}

	coffee, err := r.Detect(context.Background(), "3 kahve ver", triggers)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if coffee.SuggestedSlot[domain.SlotProduct] != "Türk Kahvesi" {
		t.Errorf("expected declared product slot, got %v", coffee.SuggestedSlot)
	}
	if coffee.SuggestedSlot[domain.SlotQuantity] != 3 {
		t.Errorf("extracted quantity must override the template, got %v", coffee.SuggestedSlot)
	}
}

func TestDetect_ReviewQueue(t *testing.T) {
	queue := NewMemoryReviewQueue(10)
	r := newTestResolver(ResolverConfig{ReviewSink: queue})

	low, err := r.Detect(context.Background(), "Pastan var mı?", teaTriggers())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := r.Detect(context.Background(), "çay ver", teaTriggers()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	entries := queue.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 review entry, got %d", len(entries))
	}
	if entries[0].Text != "Pastan var mı?" {
		t.Errorf("expected original text, got %q", entries[0].Text)
	}
	if entries[0].Confidence != low.Confidence {
		t.Errorf("expected confidence %v, got %v", low.Confidence, entries[0].Confidence)
	}
}

func TestDetect_ReviewSinkFailureDoesNotChangeResult(t *testing.T) {
	sink := &mocks.MockReviewSink{
		AppendFunc: func(ctx context.Context, entry domain.ReviewQueueEntry) error {
			return errors.New("queue full")
		},
	}
	withSink := newTestResolver(ResolverConfig{ReviewSink: sink})
	without := newTestResolver(ResolverConfig{})

	got, err := withSink.Detect(context.Background(), "Pastan var mı?", teaTriggers())
	if err != nil {
		t.Fatalf("sink failure must not surface, got %v", err)
	}
	want, _ := without.Detect(context.Background(), "Pastan var mı?", teaTriggers())
	if got.Confidence != want.Confidence || got.ConfidenceBand != want.ConfidenceBand {
		t.Errorf("result changed by sink failure: %+v vs %+v", got, want)
	}
}

func TestDetect_EmbedderErrorPropagatesUnchanged(t *testing.T) {
	embedErr := errors.New("embedding backend down")
	r := newTestResolver(ResolverConfig{Embedder: &mocks.MockEmbedder{
		EmbedFunc: func(ctx context.Context, text string) ([]float64, error) {
			return nil, embedErr
		},
	}})

	_, err := r.Detect(context.Background(), "çay ver", teaTriggers())
	if err != embedErr {
		t.Fatalf("expected the embedder's own error, got %v", err)
	}
}

func TestDetect_CustomThresholds(t *testing.T) {
	r := newTestResolver(ResolverConfig{Thresholds: Thresholds{High: 0.95, Low: 0.5}})

	result, err := r.Detect(context.Background(), "çay ver", teaTriggers())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ConfidenceBand != domain.BandAmbiguous {
		t.Errorf("expected ambiguous band at 0.9 with high=0.95, got %s", result.ConfidenceBand)
	}
}

func TestDetect_ConfidenceAlwaysInUnitRange(t *testing.T) {
	r := newTestResolver(ResolverConfig{Embedder: &mocks.MockEmbedder{
		EmbedFunc: func(ctx context.Context, text string) ([]float64, error) {
			return []float64{float64(len(text)), -1}, nil
		},
	}})
	inputs := []string{"çay", "bir çay bir çay bir çay", "x", "\xff\xfe", "Pastan var mı?", "ÇAAAAY VEEER"}

	for _, in := range inputs {
		result, err := r.Detect(context.Background(), in, teaTriggers())
		if err != nil {
			t.Fatalf("%q: expected no error, got %v", in, err)
		}
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Errorf("%q: confidence out of range: %v", in, result.Confidence)
		}
		if result.Quantity() < 1 {
			t.Errorf("%q: quantity below 1: %d", in, result.Quantity())
		}
	}
}

func TestDetect_EmitsDetectionLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewResolver(ResolverConfig{}, zap.New(core))

	result, err := r.Detect(context.Background(), "çay ver", teaTriggers())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	entries := logs.FilterMessage("Intent detected").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 detection log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["intent"] != domain.CanonicalTeaIntent {
		t.Errorf("expected intent field, got %v", fields["intent"])
	}
	if fields["text"] != "çay ver" {
		t.Errorf("expected original text field, got %v", fields["text"])
	}
	if fields["confidence"] != result.Confidence {
		t.Errorf("expected confidence %v, got %v", result.Confidence, fields["confidence"])
	}
	if _, ok := fields["method_scores"]; !ok {
		t.Error("expected method_scores field")
	}
}

func TestFuse(t *testing.T) {
	if got := Fuse(domain.MethodScores{Rule: 1, Fuzzy: 1, Phonetic: 1, Embedding: 1}); got != 1 {
		t.Errorf("all ones: got %v, want 1", got)
	}
	if got := Fuse(domain.MethodScores{}); got != 0 {
		t.Errorf("all zeros: got %v, want 0", got)
	}
	if got := Fuse(domain.MethodScores{Rule: 0.9, Fuzzy: 1, Phonetic: 0.375}); got != 0.735 {
		t.Errorf("got %v, want 0.735", got)
	}
	if WeightRule+WeightFuzzy+WeightPhonetic+WeightEmbedding-1 > 1e-12 {
		t.Error("weights must sum to 1")
	}
}

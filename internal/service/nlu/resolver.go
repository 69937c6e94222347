package nlu

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/domain"
	"github.com/seu-repo/restoran-pos/internal/observability/telemetry"
	"github.com/seu-repo/restoran-pos/internal/ports"
)

// Fusion weights, summing to 1.0.
const (
	WeightRule      = 0.4
	WeightFuzzy     = 0.3
	WeightPhonetic  = 0.2
	WeightEmbedding = 0.1
)

const (
	DefaultHighThreshold = 0.9
	DefaultLowThreshold  = 0.6
)

// Thresholds split confidence into bands: >= High is "high", >= Low is "ambiguous".
type Thresholds struct {
	High float64
	Low  float64
}

// DefaultThresholds returns the (0.9, 0.6) pair.
func DefaultThresholds() Thresholds {
	return Thresholds{High: DefaultHighThreshold, Low: DefaultLowThreshold}
}

// Band classifies a confidence value.
func (t Thresholds) Band(confidence float64) domain.ConfidenceBand {
	switch {
	case confidence >= t.High:
		return domain.BandHigh
	case confidence >= t.Low:
		return domain.BandAmbiguous
	default:
		return domain.BandUnknown
	}
}

// ResolverConfig holds the optional collaborators of a Resolver.
type ResolverConfig struct {
	Thresholds Thresholds
	Embedder   ports.Embedder   // nil disables the embedding signal
	ReviewSink ports.ReviewSink // nil disables review queueing
}

// Resolver fuses the per-method scores into one confidence per intent and picks the best
// intent for an utterance. It keeps no state between calls.
type Resolver struct {
	thresholds Thresholds
	embedder   ports.Embedder
	sink       ports.ReviewSink
	log        *zap.Logger
}

// NewResolver creates a resolver. Zero thresholds fall back to the defaults.
func NewResolver(cfg ResolverConfig, log *zap.Logger) *Resolver {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	return &Resolver{
		thresholds: cfg.Thresholds,
		embedder:   cfg.Embedder,
		sink:       cfg.ReviewSink,
		log:        log,
	}
}

// Thresholds returns the band thresholds in use.
func (r *Resolver) Thresholds() Thresholds {
	return r.thresholds
}

// Fuse combines method scores with the fixed weights. The result is rounded to four
// decimals so that band boundaries are stable.
func Fuse(s domain.MethodScores) float64 {
	v := WeightRule*s.Rule +
		WeightFuzzy*s.Fuzzy +
		WeightPhonetic*s.Phonetic +
		WeightEmbedding*s.Embedding
	return math.Round(clamp01(v)*1e4) / 1e4
}

type intentCandidate struct {
	intent     string
	phrase     string
	found      bool
	scores     domain.MethodScores
	confidence float64
}

// Detect interprets text against triggers. It only fails when the embedder fails, in which
// case the embedder's error is returned as is.
func (r *Resolver) Detect(ctx context.Context, text string, triggers domain.TriggerSet) (domain.DetectionResult, error) {
	start := time.Now()
	defer func() {
		telemetry.DetectionLatency.Observe(time.Since(start).Seconds())
	}()

	ctx, span := telemetry.Tracer().Start(ctx, "nlu.Detect")
	defer span.End()

	normalized := Normalize(text)
	if normalized == "" {
		telemetry.DetectionsTotal.WithLabelValues(string(domain.BandUnknown)).Inc()
		return emptyResult(), nil
	}

	var inputVec []float64
	vectors := make(map[string][]float64)
	if r.embedder != nil && triggers.PhraseCount() > 0 {
		v, err := r.embedder.Embed(ctx, normalized)
		if err != nil {
			span.RecordError(err)
			return domain.DetectionResult{}, err
		}
		inputVec = v
	}

	var best intentCandidate
	for _, def := range triggers.Intents {
		var (
			maxima       domain.MethodScores
			bestCombined float64
			bestPhrase   string
			matched      bool
		)

		for _, phrase := range def.Triggers {
			np := Normalize(phrase)
			if np == "" {
				continue
			}

			var phraseVec []float64
			if r.embedder != nil {
				v, ok := vectors[np]
				if !ok {
					var err error
					if v, err = r.embedder.Embed(ctx, np); err != nil {
						span.RecordError(err)
						return domain.DetectionResult{}, err
					}
					vectors[np] = v
				}
				phraseVec = v
			}

			s := ScorePair(normalized, np, inputVec, phraseVec)
			maxima.Rule = math.Max(maxima.Rule, s.Rule)
			maxima.Fuzzy = math.Max(maxima.Fuzzy, s.Fuzzy)
			maxima.Phonetic = math.Max(maxima.Phonetic, s.Phonetic)
			maxima.Embedding = math.Max(maxima.Embedding, s.Embedding)

			if combined := Fuse(maxima); combined > bestCombined {
				bestCombined = combined
				bestPhrase = phrase
				matched = true
			}
		}

		confidence := Fuse(maxima)
		if confidence > best.confidence {
			best = intentCandidate{
				intent:     def.Name,
				phrase:     bestPhrase,
				found:      matched,
				scores:     maxima,
				confidence: confidence,
			}
		}
	}

	result := r.buildResult(text, triggers, best)

	span.SetAttributes(
		attribute.String("nlu.intent", result.IntentName()),
		attribute.Float64("nlu.confidence", result.Confidence),
		attribute.String("nlu.band", string(result.ConfidenceBand)),
	)
	telemetry.DetectionsTotal.WithLabelValues(string(result.ConfidenceBand)).Inc()
	telemetry.DetectionConfidence.Observe(result.Confidence)

	if r.sink != nil && result.Confidence < r.thresholds.Low {
		r.queueForReview(ctx, text, result)
	}

	r.log.Info("Intent detected",
		zap.String("intent", result.IntentName()),
		zap.String("matched_trigger", result.Trigger()),
		zap.Float64("confidence", result.Confidence),
		zap.String("band", string(result.ConfidenceBand)),
		zap.Any("method_scores", result.MethodScores),
		zap.String("text", text),
	)

	return result, nil
}

func (r *Resolver) buildResult(text string, triggers domain.TriggerSet, best intentCandidate) domain.DetectionResult {
	slots := map[string]any{}
	result := domain.DetectionResult{
		Confidence:     best.confidence,
		MethodScores:   best.scores,
		ConfidenceBand: r.thresholds.Band(best.confidence),
	}

	if best.intent != "" {
		intent := best.intent
		result.Intent = &intent
		slots = triggers.SlotsFor(intent)
		if best.found {
			phrase := best.phrase
			result.MatchedTrigger = &phrase
		}
	}
	slots[domain.SlotQuantity] = ExtractQuantity(text)
	result.SuggestedSlot = slots

	return result
}

func (r *Resolver) queueForReview(ctx context.Context, text string, result domain.DetectionResult) {
	entry := domain.ReviewQueueEntry{
		Text:       text,
		Intent:     result.Intent,
		Confidence: result.Confidence,
	}
	if err := r.sink.Append(ctx, entry); err != nil {
		telemetry.ReviewEntriesTotal.WithLabelValues("failed").Inc()
		r.log.Warn("Failed to queue detection for review",
			zap.String("text", text),
			zap.Error(err),
		)
		return
	}
	telemetry.ReviewEntriesTotal.WithLabelValues("queued").Inc()
}

func emptyResult() domain.DetectionResult {
	return domain.DetectionResult{
		SuggestedSlot:  map[string]any{domain.SlotQuantity: 1},
		ConfidenceBand: domain.BandUnknown,
	}
}

package nlu

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/seu-repo/restoran-pos/internal/domain"
)

const (
	exactMatchScore     = 1.0
	substringMatchScore = 0.9
	shingleSize         = 3
)

// RuleScore is 1.0 for identical strings, 0.9 when phrase occurs inside input, 0 otherwise.
func RuleScore(input, phrase string) float64 {
	if input == phrase {
		return exactMatchScore
	}
	if input == "" || phrase == "" {
		return 0
	}
	if strings.Contains(input, phrase) {
		return substringMatchScore
	}
	return 0
}

// FuzzyScore is the larger of the whole-string edit similarity and the best partial
// similarity of the shorter string against equal-length windows of the longer one.
func FuzzyScore(input, phrase string) float64 {
	full := editRatio([]rune(input), []rune(phrase))
	if full == 1 {
		return full
	}
	return math.Max(full, partialRatio(input, phrase))
}

// ShingleScore is the Jaccard similarity of the 3-character shingle sets of a and b.
func ShingleScore(a, b string) float64 {
	sa, sb := shingles(a), shingles(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	inter := 0
	for s := range sa {
		if _, ok := sb[s]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// CosineSimilarity compares two embedding vectors. Missing or mismatched vectors score 0,
// and negative similarities are floored at 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// ScorePair computes all four method scores between a normalized input and a normalized
// trigger phrase. Vectors may be nil when no embedder is configured.
func ScorePair(input, phrase string, inputVec, phraseVec []float64) domain.MethodScores {
	return domain.MethodScores{
		Rule:      RuleScore(input, phrase),
		Fuzzy:     FuzzyScore(input, phrase),
		Phonetic:  ShingleScore(input, phrase),
		Embedding: CosineSimilarity(inputVec, phraseVec),
	}
}

// editRatio is 1 - levenshtein(a, b) / max(len(a), len(b)).
func editRatio(a, b []rune) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(string(a), string(b))
	return clamp01(1 - float64(d)/float64(longest))
}

func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := editRatio(short, long[i:i+len(short)])
		if r > best {
			best = r
			if best == 1 {
				break
			}
		}
	}
	return best
}

func shingles(s string) map[string]struct{} {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) < shingleSize {
		return map[string]struct{}{s: {}}
	}

	set := make(map[string]struct{}, len(runes)-shingleSize+1)
	for i := 0; i+shingleSize <= len(runes); i++ {
		set[string(runes[i:i+shingleSize])] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/cognicore/keyphrase/pkg/keyphrase/chunk"
	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
)

// Weights defines the ranking parameters
type Weights struct {
	Threshold float64 `json:"threshold"` // keep weight > Threshold
	Exponent  float64 `json:"exponent"`  // chunk length exponent
}

// DefaultWeights returns threshold 0.001 and exponent 1
func DefaultWeights() Weights {
	return Weights{Threshold: 0.001, Exponent: 1}
}

// Ranker scores chunks against the lemma frequencies of their text
type Ranker struct {
	weights Weights
}

// NewRanker creates a new ranker with the given weights
func NewRanker(w Weights) *Ranker {
	return &Ranker{weights: w}
}

// Weights returns the ranker's parameters
func (r *Ranker) Weights() Weights { return r.weights }

// Keyword is a ranked chunk
type Keyword struct {
	Text      string  `json:"text"`
	Lemma     string  `json:"lemma"`
	Words     int     `json:"words"`
	Frequency int     `json:"frequency"`
	Weight    float64 `json:"weight"`
}

// ScoreBreakdown provides detailed scoring information
type ScoreBreakdown struct {
	Frequency    int     `json:"frequency"`     // summed lemma counts
	LengthFactor float64 `json:"length_factor"` // words^exponent
	Tokens       int     `json:"tokens"`
	Weight       float64 `json:"weight"`
}

// Score calculates the weight of one chunk
//
// weight = Σ count(lemma) · words^exponent / tokens
func (r *Ranker) Score(c chunk.Chunk, freq *chunk.Frequencies, totalTokens int) float64 {
	return r.ScoreWithBreakdown(c, freq, totalTokens).Weight
}

// ScoreWithBreakdown calculates the weight with its components
func (r *Ranker) ScoreWithBreakdown(c chunk.Chunk, freq *chunk.Frequencies, totalTokens int) ScoreBreakdown {
	f := freq.Sum(c.Lemmas)
	lf := math.Pow(float64(c.Words), r.weights.Exponent)
	b := ScoreBreakdown{Frequency: f, LengthFactor: lf, Tokens: totalTokens}
	if totalTokens > 0 {
		b.Weight = float64(f) * lf / float64(totalTokens)
	}
	return b
}

// Rank weights every distinct chunk, drops those at or below the
// threshold and orders the rest by descending weight. Chunks are
// deduplicated by surface text: a repeated text takes the lemmas of its
// last occurrence but keeps the position of its first, so equal weights
// keep first-seen order.
func (r *Ranker) Rank(chunks []chunk.Chunk, freq *chunk.Frequencies, totalTokens int) ([]Keyword, error) {
	if totalTokens <= 0 {
		return nil, fmt.Errorf("%w: total token count %d", internalerr.ErrInvalidInput, totalTokens)
	}

	seen := make(map[string]int, len(chunks))
	distinct := make([]chunk.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if i, dup := seen[c.Text]; dup {
			distinct[i] = c
			continue
		}
		seen[c.Text] = len(distinct)
		distinct = append(distinct, c)
	}

	out := make([]Keyword, 0, len(distinct))
	for _, c := range distinct {
		b := r.ScoreWithBreakdown(c, freq, totalTokens)
		if b.Weight <= r.weights.Threshold {
			continue
		}
		out = append(out, Keyword{
			Text:      c.Text,
			Lemma:     c.Lemma,
			Words:     c.Words,
			Frequency: b.Frequency,
			Weight:    b.Weight,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out, nil
}

// Breakdown explains the weight of every distinct chunk, keyed by surface
// text, including those the threshold would drop. A repeated text is
// scored by its last occurrence, as in Rank.
func (r *Ranker) Breakdown(chunks []chunk.Chunk, freq *chunk.Frequencies, totalTokens int) map[string]ScoreBreakdown {
	out := make(map[string]ScoreBreakdown, len(chunks))
	for _, c := range chunks {
		out[c.Text] = r.ScoreWithBreakdown(c, freq, totalTokens)
	}
	return out
}

// Top returns the first k keywords, or all of them when k <= 0.
func Top(keywords []Keyword, k int) []Keyword {
	if k <= 0 || k >= len(keywords) {
		return keywords
	}
	return keywords[:k]
}

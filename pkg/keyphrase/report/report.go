package report

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/keyphrase/pkg/keyphrase/rank"
)

// Builder constructs keyphrase reports
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a new report builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Report is the result of processing one document
type Report struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	Weights   rank.Weights   `json:"weights"`
	Keywords  []rank.Keyword `json:"keywords"`
	Stats     Stats          `json:"stats"`
}

// Stats summarises the pipeline run behind a report
type Stats struct {
	Sentences int `json:"sentences"`
	Tokens    int `json:"tokens"`
	Fallbacks int `json:"fallbacks"` // sentences decoded by analyzer ranking
	Chunks    int `json:"chunks"`    // before deduplication and threshold
	Lemmas    int `json:"lemmas"`    // distinct
}

// Build creates a report with a fresh ULID
func (b *Builder) Build(source string, weights rank.Weights, keywords []rank.Keyword, stats Stats) Report {
	b.mu.Lock()
	now := b.now()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()

	if keywords == nil {
		keywords = []rank.Keyword{}
	}
	return Report{
		ID:        id,
		Source:    source,
		CreatedAt: now.UTC(),
		Weights:   weights,
		Keywords:  keywords,
		Stats:     stats,
	}
}

// Top returns the k highest weighted keywords, or all when k <= 0.
func (r Report) Top(k int) []rank.Keyword {
	return rank.Top(r.Keywords, k)
}

// Texts lists keyword surface texts in rank order.
func (r Report) Texts() []string {
	out := make([]string, len(r.Keywords))
	for i, kw := range r.Keywords {
		out[i] = kw.Text
	}
	return out
}

package store

import (
	"context"
	"sort"

	"github.com/cognicore/keyphrase/pkg/keyphrase/report"
)

// Store persists keyphrase reports and aggregates phrases across them
type Store interface {
	Close() error

	// Reports
	SaveReport(ctx context.Context, r report.Report) error
	GetReport(ctx context.Context, id string) (report.Report, error)
	ListReports(ctx context.Context, source string, limit int) ([]report.Report, error)

	// Aggregates
	TopPhrases(ctx context.Context, k int) ([]Phrase, error)
}

// Phrase is a keyphrase aggregated over every stored report
type Phrase struct {
	Text      string  `json:"text"`
	Lemma     string  `json:"lemma"`
	Weight    float64 `json:"weight"`    // summed over reports
	Documents int     `json:"documents"` // reports containing the phrase
}

// DefaultLimit applies when a list call passes limit <= 0.
const DefaultLimit = 20

// SortPhrases orders by weight, then document count, then text.
func SortPhrases(ps []Phrase) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Weight != ps[j].Weight {
			return ps[i].Weight > ps[j].Weight
		}
		if ps[i].Documents != ps[j].Documents {
			return ps[i].Documents > ps[j].Documents
		}
		return ps[i].Text < ps[j].Text
	})
}

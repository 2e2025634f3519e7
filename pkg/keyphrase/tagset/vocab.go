package tagset

import (
	"fmt"
	"strings"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
)

// GrammemeSet is a set of grammatical tags.
type GrammemeSet map[string]struct{}

func newSet(items ...string) GrammemeSet {
	s := make(GrammemeSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s GrammemeSet) Has(g string) bool {
	_, ok := s[g]
	return ok
}

var (
	// composablePOS need a number and case suffix in rule keys.
	composablePOS = newSet("NOUN", "ADJF", "PRTF", "NPRO", "NUMR")

	// simplePOS stand alone in rule keys.
	simplePOS = newSet("ADJS", "COMP", "VERB", "INFN", "PRTS", "GRND", "ADVB", "PRED", "PREP", "CONJ", "PRCL", "INTJ")

	numbers = newSet("sing", "plur")

	cases = newSet("nomn", "gent", "datv", "accs", "ablt", "loct", "voct", "gen1", "gen2", "acc2", "loc1", "loc2")
)

// IsComposable reports whether pos takes a number/case suffix.
func IsComposable(pos string) bool { return composablePOS.Has(pos) }

// IsSimple reports whether pos is a bare rule tag.
func IsSimple(pos string) bool { return simplePOS.Has(pos) }

// InvalidTagError identifies a rule term outside the known vocabularies.
type InvalidTagError struct {
	Term   string
	Reason string
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("invalid tag %q: %s", e.Term, e.Reason)
}

func (e *InvalidTagError) Unwrap() error { return internalerr.ErrInvalidRuleToken }

// ValidateRuleKey checks a single rule term. Composable terms have exactly
// three underscore-joined parts (POS_number_case); anything else must be a
// simple POS.
func ValidateRuleKey(term string) error {
	if !strings.Contains(term, "_") {
		if !IsSimple(term) {
			return &InvalidTagError{Term: term, Reason: "unknown simple part of speech"}
		}
		return nil
	}

	parts := strings.Split(term, "_")
	switch {
	case len(parts) != 3:
		return &InvalidTagError{Term: term, Reason: "composable tag needs POS_number_case"}
	case !IsComposable(parts[0]):
		return &InvalidTagError{Term: term, Reason: "unknown composable part of speech"}
	case !numbers.Has(parts[1]):
		return &InvalidTagError{Term: term, Reason: "unknown number"}
	case !cases.Has(parts[2]):
		return &InvalidTagError{Term: term, Reason: "unknown case"}
	}
	return nil
}

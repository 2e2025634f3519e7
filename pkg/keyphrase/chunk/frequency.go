package chunk

import "golang.org/x/text/unicode/norm"

// Frequencies counts lemma occurrences over one text. A table belongs to a
// single extraction call and must not be shared between texts.
type Frequencies struct {
	counts map[string]int
	total  int
}

// NewFrequencies returns an empty table.
func NewFrequencies() *Frequencies {
	return &Frequencies{counts: make(map[string]int)}
}

func normalize(lemma string) string {
	return norm.NFC.String(lemma)
}

// Add records one occurrence of lemma.
func (f *Frequencies) Add(lemma string) {
	f.counts[normalize(lemma)]++
	f.total++
}

// Count returns how many times lemma was seen.
func (f *Frequencies) Count(lemma string) int {
	if f == nil {
		return 0
	}
	return f.counts[normalize(lemma)]
}

// Sum adds up the counts of lemmas.
func (f *Frequencies) Sum(lemmas []string) int {
	sum := 0
	for _, l := range lemmas {
		sum += f.Count(l)
	}
	return sum
}

// Total returns the number of recorded occurrences.
func (f *Frequencies) Total() int {
	if f == nil {
		return 0
	}
	return f.total
}

// Distinct returns the number of distinct lemmas.
func (f *Frequencies) Distinct() int {
	if f == nil {
		return 0
	}
	return len(f.counts)
}

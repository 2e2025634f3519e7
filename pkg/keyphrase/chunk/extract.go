// Package chunk finds keyphrase candidates in disambiguated sentences.
package chunk

import (
	"strings"

	"github.com/cognicore/keyphrase/pkg/keyphrase/grammar"
	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
)

// Chunk is a run of words matched by a grammar rule, in natural order.
type Chunk struct {
	Text   string   `json:"text"`
	Lemma  string   `json:"lemma"`
	Lemmas []string `json:"lemmas"`
	Words  int      `json:"words"`
}

// Extractor matches sentences against a grammar trie.
type Extractor struct {
	trie *grammar.Trie
}

// NewExtractor creates an extractor over trie.
func NewExtractor(trie *grammar.Trie) *Extractor {
	return &Extractor{trie: trie}
}

// Extract returns the chunks of one sentence and records every resolved
// word's lemma in freq.
//
// The sentence is walked from its last word to its first. From each word
// whose rule key opens a reversed rule, the match is extended over the
// preceding words while the trie allows it, and a chunk is emitted at each
// step where a rule may end. Literal words are never counted and never part
// of a chunk.
func (e *Extractor) Extract(sentence []tagset.Word, freq *Frequencies) []Chunk {
	n := len(sentence)
	rev := make([]tagset.Word, n)
	for i, w := range sentence {
		rev[n-1-i] = w
	}

	var chunks []Chunk
	for i := 0; i < n; i++ {
		w := rev[i]
		if w.IsLiteral() {
			continue
		}
		if freq != nil {
			freq.Add(w.Analysis.Lemma)
		}

		key := w.Analysis.RuleKey()
		set, ok := e.trie.Continuations(key)
		if !ok {
			continue
		}

		// span holds the matched words reversed.
		span := []tagset.Analysis{w.Analysis}
		for c := 1; ; c++ {
			if set.Terminal() {
				chunks = append(chunks, newChunk(span))
			}
			if i+c >= n || rev[i+c].IsLiteral() {
				break
			}
			next := rev[i+c].Analysis.RuleKey()
			if !set.Contains(next) {
				break
			}
			key = grammar.Key(key, next)
			if set, ok = e.trie.Continuations(key); !ok {
				break
			}
			span = append(span, rev[i+c].Analysis)
		}
	}
	return chunks
}

// ExtractText runs Extract over every sentence of a text with one shared
// frequency table.
func (e *Extractor) ExtractText(sentences [][]tagset.Word) ([]Chunk, *Frequencies) {
	freq := NewFrequencies()
	var chunks []Chunk
	for _, s := range sentences {
		chunks = append(chunks, e.Extract(s, freq)...)
	}
	return chunks, freq
}

func newChunk(reversed []tagset.Analysis) Chunk {
	n := len(reversed)
	surfaces := make([]string, n)
	lemmas := make([]string, n)
	for i, a := range reversed {
		surfaces[n-1-i] = a.Surface
		lemmas[n-1-i] = a.Lemma
	}
	return Chunk{
		Text:   strings.Join(surfaces, " "),
		Lemma:  strings.Join(lemmas, " "),
		Lemmas: lemmas,
		Words:  n,
	}
}

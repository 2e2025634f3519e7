package hmm

import (
	"sort"

	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
)

// Indexed is a token together with its position in the original sentence.
type Indexed struct {
	Pos   int
	Token tagset.Token
}

// Separate partitions a sentence into the tokens the decoder sees and a
// position → token side table of punctuation.
func Separate(s tagset.Sentence) ([]Indexed, map[int]tagset.Token) {
	words := make([]Indexed, 0, len(s))
	punct := make(map[int]tagset.Token)
	for i, tok := range s {
		if tok.IsPunct() {
			punct[i] = tok
			continue
		}
		words = append(words, Indexed{Pos: i, Token: tok})
	}
	return words, punct
}

// Reunite merges the two halves produced by Separate back into the original
// order.
func Reunite(words []Indexed, punct map[int]tagset.Token) tagset.Sentence {
	all := make([]Indexed, 0, len(words)+len(punct))
	all = append(all, words...)
	for pos, tok := range punct {
		all = append(all, Indexed{Pos: pos, Token: tok})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Pos < all[j].Pos })

	out := make(tagset.Sentence, len(all))
	for i, it := range all {
		out[i] = it.Token
	}
	return out
}

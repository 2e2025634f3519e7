// Package tagset defines the morphological data model shared by the decoder,
// the grammar trie and the chunk extractor: candidate analyses as produced by
// an external analyzer, tokens, sentences and the resolved per-position words.
package tagset

import (
	"fmt"
	"strings"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
)

// Reserved tag keys.
const (
	PreStart = "<*>"  // context slot before the sentence start
	Start    = "<S>"  // sentence start
	End      = "<E>"  // synthetic end-of-sentence token
	Unknown  = "UNKN" // backpointer of a state no path reached
	Punct    = "PNCT" // punctuation tag emitted by the analyzer

	// ContextSep joins the two previous tags of a context key.
	ContextSep = "_"
)

// ContextKey returns the transition-table context for a tag two positions
// back and one position back.
func ContextKey(twoBack, oneBack string) string {
	return twoBack + ContextSep + oneBack
}

// Analysis is one candidate interpretation of a surface token.
type Analysis struct {
	Surface string  `json:"surface" msgpack:"surface"`
	Lemma   string  `json:"lemma" msgpack:"lemma"`
	Score   float64 `json:"score" msgpack:"score"`
	TagKey  string  `json:"tag" msgpack:"tag"`
	POS     string  `json:"pos" msgpack:"pos"`
	Number  string  `json:"number,omitempty" msgpack:"number,omitempty"`
	Case    string  `json:"case,omitempty" msgpack:"case,omitempty"`
}

// RuleKey returns the key the grammar rules use for this analysis:
// POS_number_case for composable parts of speech, the bare POS otherwise.
func (a Analysis) RuleKey() string {
	if IsComposable(a.POS) {
		return strings.Join([]string{a.POS, a.Number, a.Case}, "_")
	}
	return a.POS
}

// Token is one surface token with the analyzer's ranked candidates.
// Candidates[0] is the analyzer's own best guess.
type Token struct {
	Candidates []Analysis `json:"candidates"`
	Punct      bool       `json:"punct,omitempty"`
}

// PunctToken builds a punctuation token carrying its literal text.
func PunctToken(text string) Token {
	return Token{
		Candidates: []Analysis{{Surface: text, Lemma: text, Score: 1, TagKey: Punct, POS: Punct}},
		Punct:      true,
	}
}

// Top returns the analyzer's top-ranked candidate.
func (t Token) Top() Analysis {
	if len(t.Candidates) == 0 {
		return Analysis{}
	}
	return t.Candidates[0]
}

// Text returns the literal surface text of the token.
func (t Token) Text() string {
	return t.Top().Surface
}

// IsPunct reports whether the token is punctuation, either flagged
// explicitly or tagged PNCT by the analyzer.
func (t Token) IsPunct() bool {
	return t.Punct || t.Top().TagKey == Punct
}

// Sentence is an ordered run of tokens.
type Sentence []Token

// Validate checks that every token carries at least one candidate.
func (s Sentence) Validate() error {
	for i, tok := range s {
		if len(tok.Candidates) == 0 {
			return fmt.Errorf("%w: token %d has no candidate analyses", internalerr.ErrInvalidInput, i)
		}
	}
	return nil
}

// Kind distinguishes the two variants of Word.
type Kind uint8

const (
	Resolved Kind = iota // a chosen Analysis
	Literal              // raw literal text (punctuation)
)

func (k Kind) String() string {
	if k == Literal {
		return "literal"
	}
	return "resolved"
}

// Word is one position of a disambiguated sentence.
type Word struct {
	Kind     Kind
	Analysis Analysis // set when Kind == Resolved
	Text     string   // surface text for both kinds
}

// ResolvedWord wraps a chosen analysis.
func ResolvedWord(a Analysis) Word {
	return Word{Kind: Resolved, Analysis: a, Text: a.Surface}
}

// LiteralWord wraps literal text.
func LiteralWord(text string) Word {
	return Word{Kind: Literal, Text: text}
}

// IsLiteral reports whether the word carries only literal text.
func (w Word) IsLiteral() bool { return w.Kind == Literal }

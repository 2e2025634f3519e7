// Package hmm picks one analysis per token with a trigram hidden Markov
// model.
//
// The lattice keeps a single state per tag. Each state stores its best
// predecessor, and the transition context for the next position is built
// from that predecessor and the state's own tag, so every step still sees
// the two previous tags without materialising tag pairs.
//
// Ties are deterministic: predecessors are visited in the order their tags
// first appeared among the previous token's candidates, and a later
// predecessor only replaces the current best when its probability is
// strictly greater.
package hmm

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cognicore/keyphrase/internal/logger"
	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
)

// Transitions is the lookup the decoder needs from a transition table.
type Transitions interface {
	Lookup(tag, contextKey string) (float64, error)
}

// Result is the disambiguation of one sentence. Words has the same length
// and order as the input sentence.
type Result struct {
	Words []tagset.Word

	// Tags is the resolved tag path of the non-punctuation tokens; nil when
	// the decoder fell back.
	Tags []string

	// Probability of the best path ending in the end sentinel.
	Probability float64

	// Fallback is set when no path reached the end sentinel and every token
	// took the analyzer's top-ranked candidate instead.
	Fallback bool
}

// Decoder runs the trigram Viterbi search.
type Decoder struct {
	table  Transitions
	logger *log.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *log.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDecoder creates a decoder over a transition table.
func NewDecoder(table Transitions, opts ...Option) *Decoder {
	d := &Decoder{table: table, logger: logger.Discard()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// state is one lattice cell.
type state struct {
	tag  string
	prob float64
	prev string
}

// layer maps tag → state and remembers insertion order.
type layer struct {
	states []state
	index  map[string]int
}

func newLayer(capacity int) *layer {
	return &layer{
		states: make([]state, 0, capacity),
		index:  make(map[string]int, capacity),
	}
}

// set stores s. A tag seen before keeps its position and takes the new
// state.
func (l *layer) set(s state) {
	if i, ok := l.index[s.tag]; ok {
		l.states[i] = s
		return
	}
	l.index[s.tag] = len(l.states)
	l.states = append(l.states, s)
}

func (l *layer) get(tag string) (state, bool) {
	i, ok := l.index[tag]
	if !ok {
		return state{}, false
	}
	return l.states[i], true
}

var endToken = tagset.Token{Candidates: []tagset.Analysis{{TagKey: tagset.End, Score: 1}}}

// Decode disambiguates one sentence. Punctuation is taken out before
// decoding and put back as literal words at its original positions. When
// the search cannot reach the end sentinel the whole sentence falls back to
// the analyzer's top-ranked candidates.
func (d *Decoder) Decode(s tagset.Sentence) Result {
	words, punct := Separate(s)
	if len(words) == 0 {
		return Result{Words: literals(s)}
	}

	tags, prob, err := d.search(words)
	if err != nil {
		d.logger.Debug("falling back to analyzer ranking", "tokens", len(s), "err", err)
		return Result{Words: Fallback(s), Fallback: true}
	}

	out := make([]tagset.Word, len(s))
	for pos, tok := range punct {
		out[pos] = tagset.LiteralWord(tok.Text())
	}
	for i, w := range words {
		out[w.Pos] = tagset.ResolvedWord(pick(w.Token, tags[i]))
	}
	return Result{Words: out, Tags: tags, Probability: prob}
}

// search returns the best tag for each word. The error wraps
// internalerr.ErrDecodeUnreachable when backtracking hits a tag absent from
// a layer.
func (d *Decoder) search(words []Indexed) ([]string, float64, error) {
	first := newLayer(1)
	first.set(state{tag: tagset.Start, prob: 1, prev: tagset.PreStart})
	layers := []*layer{first}

	steps := make([]tagset.Token, 0, len(words)+1)
	for _, w := range words {
		steps = append(steps, w.Token)
	}
	steps = append(steps, endToken)

	for _, tok := range steps {
		prev := layers[len(layers)-1]
		cur := newLayer(len(tok.Candidates))
		for _, cand := range tok.Candidates {
			best := state{tag: cand.TagKey, prob: 0, prev: tagset.Unknown}
			for _, p := range prev.states {
				tr, err := d.table.Lookup(cand.TagKey, tagset.ContextKey(p.prev, p.tag))
				if errors.Is(err, internalerr.ErrMissingTransition) {
					continue
				}
				if err != nil {
					return nil, 0, err
				}
				prob := p.prob * cand.Score * tr
				if prob > best.prob {
					best.prob = prob
					best.prev = p.tag
				}
			}
			cur.set(best)
		}
		layers = append(layers, cur)
	}

	end, _ := layers[len(layers)-1].get(tagset.End)

	// Walk back from the end sentinel. The collected path is
	// [t_n … t_1, <S>, <*>].
	path := make([]string, 0, len(layers))
	sought := tagset.End
	for i := len(layers) - 1; i >= 0; i-- {
		st, ok := layers[i].get(sought)
		if !ok {
			return nil, 0, fmt.Errorf("%w: tag %q absent at position %d", internalerr.ErrDecodeUnreachable, sought, i)
		}
		sought = st.prev
		path = append(path, sought)
	}

	tags := make([]string, 0, len(words))
	for i := len(path) - 3; i >= 0; i-- {
		tags = append(tags, path[i])
	}
	return tags, end.prob, nil
}

// pick returns the first candidate carrying tag.
func pick(tok tagset.Token, tag string) tagset.Analysis {
	for _, c := range tok.Candidates {
		if c.TagKey == tag {
			return c
		}
	}
	return tok.Top()
}

// Fallback resolves every token to the analyzer's top-ranked candidate;
// punctuation stays literal.
func Fallback(s tagset.Sentence) []tagset.Word {
	out := make([]tagset.Word, len(s))
	for i, tok := range s {
		if tok.IsPunct() {
			out[i] = tagset.LiteralWord(tok.Text())
			continue
		}
		out[i] = tagset.ResolvedWord(tok.Top())
	}
	return out
}

func literals(s tagset.Sentence) []tagset.Word {
	out := make([]tagset.Word, len(s))
	for i, tok := range s {
		out[i] = tagset.LiteralWord(tok.Text())
	}
	return out
}

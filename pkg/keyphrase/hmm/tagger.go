package hmm

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
)

// Tagger decodes every sentence of a text. Sentences are independent, so
// they are decoded concurrently up to a fixed number of workers; the
// decoder's table is only read.
type Tagger struct {
	dec     *Decoder
	workers int64
}

// NewTagger wraps a decoder. workers <= 0 means one.
func NewTagger(dec *Decoder, workers int) *Tagger {
	if workers <= 0 {
		workers = 1
	}
	return &Tagger{dec: dec, workers: int64(workers)}
}

// TagText returns one Result per sentence, in input order. It stops
// scheduling new sentences once ctx is done and returns ctx.Err().
func (t *Tagger) TagText(ctx context.Context, sentences []tagset.Sentence) ([]Result, error) {
	results := make([]Result, len(sentences))
	sem := semaphore.NewWeighted(t.workers)

	var wg sync.WaitGroup
	var err error
	for i, s := range sentences {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, s tagset.Sentence) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = t.dec.Decode(s)
		}(i, s)
	}
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return results, nil
}

package memory_test

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/habiliai/spoar/errors"
)

// tableEmbedder maps texts to fixed vectors. Stored contents
// ("Question: q\nAnswer: a", newlines flattened) embed like their question.
type tableEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	calls   int
	err     error
}

func newTableEmbedder(vectors map[string][]float32) *tableEmbedder {
	return &tableEmbedder{vectors: vectors}
}

func (e *tableEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	if e.err != nil {
		return nil, e.err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		key := text
		if q, ok := strings.CutPrefix(text, "Question: "); ok {
			key, _, _ = strings.Cut(q, " Answer: ")
		}
		v, ok := e.vectors[key]
		if !ok {
			return nil, errors.Errorf("no vector for %q", key)
		}
		out[i] = v
	}
	return out, nil
}

// unitAt returns a 2-d unit vector whose cosine with (1, 0) is cos.
func unitAt(cos float64) []float32 {
	return []float32{float32(cos), float32(math.Sqrt(1 - cos*cos))}
}

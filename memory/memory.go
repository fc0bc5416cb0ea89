// Package memory stores question/answer pairs with their embeddings and
// retrieves them by cosine similarity.
package memory

import (
	"context"
	"time"
)

type (
	// Record is a persisted memory.
	Record struct {
		ID        string         `json:"id"`
		Content   string         `json:"content"`
		Embedding []float32      `json:"-"`
		Metadata  map[string]any `json:"metadata,omitempty"`
		CreatedAt time.Time      `json:"created_at"`
	}

	// ScoredRecord holds a record with its cosine similarity to a query.
	ScoredRecord struct {
		Record
		Similarity float64 `json:"similarity"`
	}

	// Store persists records and answers nearest-neighbor queries.
	Store interface {
		Insert(ctx context.Context, record Record) error
		// Match returns up to limit records whose similarity to vec is at
		// least threshold, most similar first.
		Match(ctx context.Context, vec []float32, threshold float64, limit int) ([]ScoredRecord, error)
		List(ctx context.Context) ([]Record, error)
		Delete(ctx context.Context, ids ...string) error
		Close() error
	}
)

// Content renders a question/answer pair the way it is stored.
func Content(question, answer string) string {
	return "Question: " + question + "\nAnswer: " + answer
}

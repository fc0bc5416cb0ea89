package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/habiliai/spoar/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// InMemoryStore keeps records in process memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	dimension int
	records   []Record
}

var (
	_ Store = (*InMemoryStore)(nil)
)

// NewInMemoryStore creates a store. A dimension of 0 accepts the dimension
// of the first inserted record.
func NewInMemoryStore(dimension int) *InMemoryStore {
	return &InMemoryStore{
		dimension: dimension,
	}
}

func (s *InMemoryStore) Insert(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(record.Embedding) == 0 {
		return errors.Wrapf(errors.ErrInvalidParams, "record embedding is empty")
	}
	if s.dimension == 0 {
		s.dimension = len(record.Embedding)
	}
	if len(record.Embedding) != s.dimension {
		return errors.Wrapf(errors.ErrDimensionMismatch, "expected %d, got %d", s.dimension, len(record.Embedding))
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if slices.ContainsFunc(s.records, func(r Record) bool { return r.ID == record.ID }) {
		return errors.Errorf("memory with id '%s' already exists", record.ID)
	}

	s.records = append(s.records, record)
	return nil
}

func (s *InMemoryStore) Match(ctx context.Context, vec []float32, threshold float64, limit int) ([]ScoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(vec) == 0 {
		return nil, errors.New("query embedding is empty")
	}
	if len(s.records) == 0 {
		return nil, nil
	}
	if len(vec) != s.dimension {
		return nil, errors.Wrapf(errors.ErrDimensionMismatch, "expected %d, got %d", s.dimension, len(vec))
	}

	n, dim := len(s.records), len(vec)
	data := make([]float64, n*dim)
	norms := make([]float64, n)
	for i, r := range s.records {
		row := data[i*dim : (i+1)*dim]
		for j, v := range r.Embedding {
			row[j] = float64(v)
		}
		norms[i] = floats.Norm(row, 2)
	}

	query := toFloat64(vec)
	queryNorm := floats.Norm(query, 2)

	// records (n x d) * query (d) = dot products
	var dots mat.VecDense
	dots.MulVec(mat.NewDense(n, dim, data), mat.NewVecDense(dim, query))

	results := make([]ScoredRecord, 0, n)
	for i, r := range s.records {
		sim := 0.0
		if norms[i] != 0 && queryNorm != 0 {
			sim = dots.AtVec(i) / (norms[i] * queryNorm)
		}
		if sim < threshold {
			continue
		}
		results = append(results, ScoredRecord{Record: r, Similarity: sim})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.records), nil
}

func (s *InMemoryStore) Delete(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = slices.DeleteFunc(s.records, func(r Record) bool {
		return slices.Contains(ids, r.ID)
	})
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

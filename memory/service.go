package memory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/spoar/errors"
	"github.com/samber/lo"
)

const (
	DefaultRetrievalThreshold = 0.75
	DefaultDedupThreshold     = 0.90
	DefaultMatchCount         = 3
)

type InsertResult int

const (
	InsertStored InsertResult = iota
	InsertSkipped
	InsertFailed
)

func (r InsertResult) String() string {
	switch r {
	case InsertStored:
		return "stored"
	case InsertSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

type (
	// Service wraps an Embedder and a Store. Query and Insert are best-effort
	// and never return errors; Embed does.
	Service struct {
		embedder Embedder
		store    Store
		logger   *slog.Logger
		now      func() time.Time
	}

	Option func(*Service)
)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(embedder Embedder, store Store, opts ...Option) *Service {
	s := &Service{
		embedder: embedder,
		store:    store,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed computes the embedding of text. Failures are *EmbeddingError.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.embedder.Embed(ctx, prepareEmbeddingText(text))
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, &EmbeddingError{Err: errors.New("embedder returned no vector")}
	}
	return vecs[0], nil
}

// Query returns the contents of up to limit memories whose similarity to
// text is at least threshold, most similar first. Failures yield nil.
func (s *Service) Query(ctx context.Context, text string, threshold float64, limit int) []string {
	vec, err := s.Embed(ctx, text)
	if err != nil {
		s.logger.WarnContext(ctx, "memory query skipped", "err", err)
		return nil
	}

	matches, err := s.store.Match(ctx, vec, threshold, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "memory search failed", "err", err)
		return nil
	}

	s.logger.DebugContext(ctx, "memory search", "matches", len(matches), "threshold", threshold)
	return lo.Map(matches, func(m ScoredRecord, _ int) string {
		return m.Content
	})
}

// Insert stores the question/answer pair unless a memory at least
// dedupThreshold similar to the question already exists.
func (s *Service) Insert(ctx context.Context, question, answer string, dedupThreshold float64) InsertResult {
	if existing := s.Query(ctx, question, dedupThreshold, 1); len(existing) > 0 {
		s.logger.InfoContext(ctx, "similar memory exists, skipping", "question", question)
		return InsertSkipped
	}

	content := Content(question, answer)
	vec, err := s.Embed(ctx, content)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to store memory", "err", err)
		return InsertFailed
	}

	record := Record{
		ID:        uuid.NewString(),
		Content:   content,
		Embedding: vec,
		Metadata: map[string]any{
			"type":     "qa_pair",
			"question": question,
		},
		CreatedAt: s.now(),
	}
	if err := s.store.Insert(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "failed to store memory", "err", err)
		return InsertFailed
	}

	s.logger.InfoContext(ctx, "memory stored", "id", record.ID)
	return InsertStored
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	records, err := s.store.List(ctx)
	return records, errors.Wrapf(err, "failed to list memories")
}

// Delete removes the given memories. Nothing is deleted when any id is
// unknown; the error then wraps errors.ErrNotFound.
func (s *Service) Delete(ctx context.Context, ids ...string) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}

	known := lo.SliceToMap(records, func(r Record) (string, struct{}) {
		return r.ID, struct{}{}
	})
	if missing := lo.Reject(ids, func(id string, _ int) bool {
		_, ok := known[id]
		return ok
	}); len(missing) > 0 {
		return errors.Wrapf(errors.ErrNotFound, "memories %s", strings.Join(missing, ", "))
	}

	return errors.Wrapf(s.store.Delete(ctx, ids...), "failed to delete memories")
}

func (s *Service) Close() error {
	return s.store.Close()
}

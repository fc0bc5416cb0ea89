//go:build !without_sqlite

package memory_test

import (
	"testing"
	"time"

	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/internal/mytesting"
	"github.com/habiliai/spoar/memory"
	"github.com/stretchr/testify/suite"
)

type SqliteStoreTestSuite struct {
	mytesting.Suite

	store *memory.SqliteStore
}

func (s *SqliteStoreTestSuite) SetupTest() {
	s.Suite.SetupTest()

	store, err := memory.NewSqliteStore(s.TempPath("memory.db"), 2)
	s.Require().NoError(err)
	s.store = store
}

func (s *SqliteStoreTestSuite) TearDownTest() {
	s.NoError(s.store.Close())
	s.Suite.TearDownTest()
}

func TestSqliteStore(t *testing.T) {
	suite.Run(t, new(SqliteStoreTestSuite))
}

func (s *SqliteStoreTestSuite) TestInsertAndMatch() {
	s.Require().NoError(s.store.Insert(s, memory.Record{
		ID:        "near",
		Content:   memory.Content("What is an AI agent?", "An autonomous system."),
		Embedding: unitAt(0.95),
		Metadata:  map[string]any{"type": "qa_pair"},
	}))
	s.Require().NoError(s.store.Insert(s, memory.Record{
		ID:        "far",
		Content:   "unrelated",
		Embedding: []float32{0, 1},
	}))

	got, err := s.store.Match(s, unitAt(1), 0.75, 3)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("near", got[0].ID)
	s.Equal("qa_pair", got[0].Metadata["type"])
	s.InDelta(0.95, got[0].Similarity, 1e-4)

	_, err = s.store.Match(s, []float32{1, 0, 0}, 0, 3)
	s.True(errors.Is(err, errors.ErrDimensionMismatch))
}

func (s *SqliteStoreTestSuite) TestListAndDelete() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Insert(s, memory.Record{ID: "a", Content: "a", Embedding: unitAt(1), CreatedAt: base}))
	s.Require().NoError(s.store.Insert(s, memory.Record{ID: "b", Content: "b", Embedding: unitAt(0.5), CreatedAt: base.Add(time.Minute)}))

	records, err := s.store.List(s)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("a", records[0].ID)
	s.InDeltaSlice([]float32{1, 0}, records[0].Embedding, 1e-6)

	s.Require().NoError(s.store.Delete(s, "a"))

	records, err = s.store.List(s)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("b", records[0].ID)

	got, err := s.store.Match(s, unitAt(1), 0.9, 3)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *SqliteStoreTestSuite) TestServiceOnSqlite() {
	embedder := newTableEmbedder(map[string][]float32{
		"What is RAG?":           unitAt(1),
		"Explain RAG please":     unitAt(0.93),
		"How do I reset my pin?": {0, 1},
	})
	service := memory.NewService(embedder, s.store)

	s.Equal(memory.InsertStored, service.Insert(s, "What is RAG?", "Retrieval augmented generation.", memory.DefaultDedupThreshold))
	s.Equal(memory.InsertSkipped, service.Insert(s, "Explain RAG please", "Same thing.", memory.DefaultDedupThreshold))

	answers := service.Query(s, "How do I reset my pin?", memory.DefaultRetrievalThreshold, memory.DefaultMatchCount)
	s.Empty(answers)
}

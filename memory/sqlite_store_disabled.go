//go:build without_sqlite

package memory

import (
	"context"

	"github.com/habiliai/spoar/errors"
)

// SqliteStore is unavailable in builds tagged without_sqlite.
type SqliteStore struct{}

var (
	_ Store = (*SqliteStore)(nil)
)

func NewSqliteStore(dbPath string, dimension int) (*SqliteStore, error) {
	return nil, errors.Wrapf(errors.ErrUnsupportedProvider, "sqlite memory store is not compiled in")
}

func (s *SqliteStore) Insert(ctx context.Context, record Record) error {
	return errors.ErrUnsupportedProvider
}

func (s *SqliteStore) Match(ctx context.Context, vec []float32, threshold float64, limit int) ([]ScoredRecord, error) {
	return nil, errors.ErrUnsupportedProvider
}

func (s *SqliteStore) List(ctx context.Context) ([]Record, error) {
	return nil, errors.ErrUnsupportedProvider
}

func (s *SqliteStore) Delete(ctx context.Context, ids ...string) error {
	return errors.ErrUnsupportedProvider
}

func (s *SqliteStore) Close() error {
	return nil
}

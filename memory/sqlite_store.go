//go:build !without_sqlite

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	"github.com/habiliai/spoar/errors"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteStore implements Store using SQLite with the sqlite-vec extension.
type SqliteStore struct {
	db     *gorm.DB
	vecDim int
}

var (
	_ Store = (*SqliteStore)(nil)
)

type sqliteMemoryRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Content   string
	Metadata  datatypes.JSONType[map[string]any]
}

func (sqliteMemoryRecord) TableName() string {
	return "memories"
}

func NewSqliteStore(dbPath string, dimension int) (*SqliteStore, error) {
	if dimension <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "dimension must be positive")
	}

	sqlite_vec.Auto()

	db, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", dbPath)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database")
	}

	store := &SqliteStore{
		db:     db,
		vecDim: dimension,
	}

	if err := db.AutoMigrate(&sqliteMemoryRecord{}); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate memories table")
	}

	if err := store.createVectorTable(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SqliteStore) createVectorTable() error {
	var sqliteVersion, vecVersion string
	err := s.db.Raw("SELECT sqlite_version(), vec_version()").Row().Scan(&sqliteVersion, &vecVersion)
	if err != nil {
		return errors.Wrapf(err, "sqlite-vec extension not properly loaded")
	}

	createTableSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS memory_vectors USING vec0(
			memory_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, s.vecDim)

	if err := s.db.Exec(createTableSQL).Error; err != nil {
		return errors.Wrapf(err, "failed to create memory_vectors table")
	}

	return nil
}

func (s *SqliteStore) Insert(ctx context.Context, record Record) error {
	if len(record.Embedding) != s.vecDim {
		return errors.Wrapf(errors.ErrDimensionMismatch, "expected %d, got %d", s.vecDim, len(record.Embedding))
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	serialized, err := sqlite_vec.SerializeFloat32(record.Embedding)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize embedding")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := sqliteMemoryRecord{
			ID:        record.ID,
			CreatedAt: record.CreatedAt,
			Content:   record.Content,
			Metadata:  datatypes.NewJSONType(record.Metadata),
		}
		if err := tx.Create(&row).Error; err != nil {
			return errors.Wrapf(err, "failed to save memory record")
		}

		if err := tx.Exec("INSERT INTO memory_vectors (memory_id, embedding) VALUES (?, ?)", record.ID, serialized).Error; err != nil {
			return errors.Wrapf(err, "failed to insert memory vector")
		}

		return nil
	})
}

func (s *SqliteStore) Match(ctx context.Context, vec []float32, threshold float64, limit int) ([]ScoredRecord, error) {
	if len(vec) == 0 {
		return nil, errors.New("query embedding is empty")
	}
	if len(vec) != s.vecDim {
		return nil, errors.Wrapf(errors.ErrDimensionMismatch, "expected %d, got %d", s.vecDim, len(vec))
	}
	if limit <= 0 {
		limit = DefaultMatchCount
	}

	serializedQuery, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize query embedding")
	}

	rows, err := s.db.WithContext(ctx).Raw(`
		SELECT memory_id, distance
		FROM memory_vectors
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, serializedQuery, limit).Rows()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute search query")
	}
	defer rows.Close()

	var ids []string
	similarity := make(map[string]float64)
	for rows.Next() {
		var (
			id       string
			distance float64
		)
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, errors.Wrapf(err, "failed to scan result row")
		}
		// cosine distance is 1 - similarity
		if sim := 1 - distance; sim >= threshold {
			ids = append(ids, id)
			similarity[id] = sim
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var records []sqliteMemoryRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to fetch memory records")
	}
	byID := make(map[string]sqliteMemoryRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	results := make([]ScoredRecord, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}
		results = append(results, ScoredRecord{
			Record: Record{
				ID:        r.ID,
				Content:   r.Content,
				Metadata:  r.Metadata.Data(),
				CreatedAt: r.CreatedAt,
			},
			Similarity: similarity[id],
		})
	}

	return results, nil
}

func (s *SqliteStore) List(ctx context.Context) ([]Record, error) {
	var records []sqliteMemoryRecord
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list memory records")
	}

	rows, err := s.db.WithContext(ctx).Raw("SELECT memory_id, vec_to_json(embedding) FROM memory_vectors").Rows()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list memory vectors")
	}
	defer rows.Close()

	embeddings := make(map[string][]float32, len(records))
	for rows.Next() {
		var id, vecJSON string
		if err := rows.Scan(&id, &vecJSON); err != nil {
			return nil, errors.Wrapf(err, "failed to scan vector row")
		}
		var vec []float32
		if err := json.Unmarshal([]byte(vecJSON), &vec); err != nil {
			return nil, errors.Wrapf(err, "failed to decode vector of %s", id)
		}
		embeddings[id] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	result := make([]Record, 0, len(records))
	for _, r := range records {
		result = append(result, Record{
			ID:        r.ID,
			Content:   r.Content,
			Embedding: embeddings[r.ID],
			Metadata:  r.Metadata.Data(),
			CreatedAt: r.CreatedAt,
		})
	}
	return result, nil
}

func (s *SqliteStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM memory_vectors WHERE memory_id IN ?", ids).Error; err != nil {
			return errors.Wrapf(err, "failed to delete vectors")
		}
		if err := tx.Delete(&sqliteMemoryRecord{}, "id IN ?", ids).Error; err != nil {
			return errors.Wrapf(err, "failed to delete memory records")
		}
		return nil
	})
}

func (s *SqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

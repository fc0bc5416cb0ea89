package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/spoar/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore implements Store on PostgreSQL with the pgvector extension.
type PostgresStore struct {
	db     *sql.DB
	table  string
	vecDim int
}

var (
	_ Store = (*PostgresStore)(nil)
)

func NewPostgresStore(ctx context.Context, dsn, table string, dimension int) (*PostgresStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "invalid table name %q", table)
	}
	if dimension <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "dimension must be positive")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open postgres")
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to connect to postgres")
	}

	s := &PostgresStore{db: db, table: table, vecDim: dimension}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table, s.vecDim),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to migrate %s", s.table)
		}
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, record Record) error {
	if len(record.Embedding) != s.vecDim {
		return errors.Wrapf(errors.ErrDimensionMismatch, "expected %d, got %d", s.vecDim, len(record.Embedding))
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	metadata, err := json.Marshal(nonNilMetadata(record.Metadata))
	if err != nil {
		return errors.Wrapf(err, "failed to encode metadata")
	}

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, content, metadata, embedding, created_at) VALUES ($1, $2, $3::jsonb, $4::vector, $5)`, s.table),
		record.ID, record.Content, string(metadata), vectorToString(record.Embedding), record.CreatedAt,
	)
	return errors.Wrapf(err, "failed to insert memory")
}

func (s *PostgresStore) Match(ctx context.Context, vec []float32, threshold float64, limit int) ([]ScoredRecord, error) {
	if len(vec) == 0 {
		return nil, errors.New("query embedding is empty")
	}
	if len(vec) != s.vecDim {
		return nil, errors.Wrapf(errors.ErrDimensionMismatch, "expected %d, got %d", s.vecDim, len(vec))
	}
	if limit <= 0 {
		limit = DefaultMatchCount
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, content, metadata, created_at, 1 - (embedding <=> $1::vector) AS similarity
		FROM %s
		WHERE 1 - (embedding <=> $1::vector) >= $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3`, s.table),
		vectorToString(vec), threshold, limit,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search memories")
	}
	defer rows.Close()

	var results []ScoredRecord
	for rows.Next() {
		var (
			r        ScoredRecord
			metadata []byte
		)
		if err := rows.Scan(&r.ID, &r.Content, &metadata, &r.CreatedAt, &r.Similarity); err != nil {
			return nil, errors.Wrapf(err, "failed to scan memory")
		}
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			return nil, errors.Wrapf(err, "failed to decode metadata of %s", r.ID)
		}
		results = append(results, r)
	}
	return results, errors.WithStack(rows.Err())
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, content, metadata, embedding::text, created_at FROM %s ORDER BY created_at ASC`, s.table))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list memories")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			metadata  []byte
			embedding string
		)
		if err := rows.Scan(&r.ID, &r.Content, &metadata, &embedding, &r.CreatedAt); err != nil {
			return nil, errors.Wrapf(err, "failed to scan memory")
		}
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			return nil, errors.Wrapf(err, "failed to decode metadata of %s", r.ID)
		}
		if r.Embedding, err = parseVector(embedding); err != nil {
			return nil, errors.Wrapf(err, "failed to decode embedding of %s", r.ID)
		}
		records = append(records, r)
	}
	return records, errors.WithStack(rows.Err())
}

func (s *PostgresStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}

	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id IN (%s)`, s.table, strings.Join(placeholders, ", ")),
		args...,
	)
	return errors.Wrapf(err, "failed to delete memories")
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// vectorToString formats a vector in pgvector's text form, e.g. [0.1,0.2].
func vectorToString(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errors.Errorf("malformed vector %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, nil
	}

	parts := strings.Split(body, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed vector element %q", p)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func nonNilMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

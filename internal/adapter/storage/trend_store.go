// internal/adapter/storage/trend_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendradar/internal/config"
	"trendradar/internal/domain/trend"
)

const schema = `
	CREATE TABLE IF NOT EXISTS trend_records (
		key          TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		signal_score INTEGER NOT NULL,
		lifecycle    TEXT NOT NULL,
		category     TEXT NOT NULL,
		platforms    JSONB NOT NULL,
		document     JSONB NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS trend_records_score_idx ON trend_records (signal_score DESC);
	CREATE TABLE IF NOT EXISTS trend_index (
		id           INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		files        JSONB NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL
	);
`

// TrendStore implements storage for trend documents in Postgres
type TrendStore struct {
	db *pgxpool.Pool
}

// NewTrendStore creates a new trend store
func NewTrendStore(db *pgxpool.Pool) *TrendStore {
	return &TrendStore{
		db: db,
	}
}

// Connect opens and pings a connection pool
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(min(cfg.MaxIdleConns, cfg.MaxOpenConns))
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the tables if they do not exist
func (s *TrendStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// Save upserts a document under its key
func (s *TrendStore) Save(ctx context.Context, doc trend.Document) error {
	query := `
		INSERT INTO trend_records (
			key, name, signal_score, lifecycle, category, platforms, document, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (key) DO UPDATE
		SET
			name = $2,
			signal_score = $3,
			lifecycle = $4,
			category = $5,
			platforms = $6,
			document = $7,
			updated_at = $8
	`

	platformsJSON, err := json.Marshal(doc.Platforms)
	if err != nil {
		return fmt.Errorf("error marshaling platforms: %w", err)
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling document: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		doc.Key,
		doc.Trend,
		doc.SignalScore,
		string(doc.Lifecycle),
		doc.Category,
		platformsJSON,
		docJSON,
		doc.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// Get retrieves a document by key
func (s *TrendStore) Get(ctx context.Context, key string) (*trend.Document, error) {
	var docJSON []byte
	err := s.db.QueryRow(ctx, `SELECT document FROM trend_records WHERE key = $1`, key).Scan(&docJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, trend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying trend: %w", err)
	}

	var doc trend.Document
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("error unmarshaling trend %s: %w", key, err)
	}
	return &doc, nil
}

// Keys lists every stored key
func (s *TrendStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT key FROM trend_records ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return keys, nil
}

// WriteIndex replaces the single index row
func (s *TrendStore) WriteIndex(ctx context.Context, index trend.Index) error {
	filesJSON, err := json.Marshal(index.Files)
	if err != nil {
		return fmt.Errorf("error marshaling index: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO trend_index (id, files, generated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET files = $1, generated_at = $2
	`, filesJSON, index.GeneratedAt)
	if err != nil {
		return fmt.Errorf("error writing index: %w", err)
	}
	return nil
}

// FindTrends finds documents matching the filter
func (s *TrendStore) FindTrends(ctx context.Context, filter trend.Filter) ([]trend.Document, error) {
	query, args := findTrendsQuery(filter)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var docs []trend.Document
	for rows.Next() {
		var docJSON []byte
		if err := rows.Scan(&docJSON); err != nil {
			return nil, fmt.Errorf("error scanning trend: %w", err)
		}

		var doc trend.Document
		if err := json.Unmarshal(docJSON, &doc); err != nil {
			return nil, fmt.Errorf("error unmarshaling trend: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trends: %w", err)
	}

	return docs, nil
}

// findTrendsQuery builds the listing query with one numbered placeholder per set criterion
func findTrendsQuery(filter trend.Filter) (string, []interface{}) {
	query := `
		SELECT document
		FROM trend_records
		WHERE signal_score >= $1
	`

	args := []interface{}{filter.MinScore}
	argIndex := 2

	if filter.Lifecycle != "" {
		query += fmt.Sprintf(" AND lifecycle = $%d", argIndex)
		args = append(args, string(filter.Lifecycle))
		argIndex++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	// Platform flags may be stored as false, so the key alone is not enough
	if filter.Platform != "" {
		query += fmt.Sprintf(" AND (platforms ->> $%d)::boolean IS TRUE", argIndex)
		args = append(args, string(filter.Platform))
		argIndex++
	}

	query += " ORDER BY signal_score DESC, key ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	return query, args
}

package lookuprepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
)

const schema = `
CREATE TABLE IF NOT EXISTS aqi_lookups (
	id           UUID PRIMARY KEY,
	query        TEXT NOT NULL,
	city         TEXT NOT NULL,
	aqi          DOUBLE PRECISION,
	category     TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	looked_up_at TIMESTAMPTZ NOT NULL
);
ALTER TABLE aqi_lookups ALTER COLUMN aqi TYPE DOUBLE PRECISION;
CREATE INDEX IF NOT EXISTS aqi_lookups_looked_up_at_idx ON aqi_lookups (looked_up_at DESC);
`

// PostgresRepository implements aqi.HistoryRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the lookup table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure aqi_lookups schema: %w", err)
	}
	return nil
}

// Record inserts one lookup row.
func (r *PostgresRepository) Record(ctx context.Context, record aqi.LookupRecord) error {
	var index any
	if record.AQI != nil {
		index = *record.AQI
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO aqi_lookups (id, query, city, aqi, category, source, looked_up_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.Query, record.City, index, record.Category, record.Source, record.LookedUpAt)
	return err
}

// Recent returns the newest lookups first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]aqi.LookupRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, query, city, aqi, category, source, looked_up_at
		FROM aqi_lookups
		ORDER BY looked_up_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []aqi.LookupRecord
	for rows.Next() {
		record, err := scanLookupRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLookupRecord(row rowScanner) (aqi.LookupRecord, error) {
	var (
		record aqi.LookupRecord
		index  sql.NullFloat64
	)
	if err := row.Scan(&record.ID, &record.Query, &record.City, &index, &record.Category, &record.Source, &record.LookedUpAt); err != nil {
		return aqi.LookupRecord{}, err
	}
	if index.Valid {
		v := index.Float64
		record.AQI = &v
	}
	return record, nil
}

var _ aqi.HistoryRepository = (*PostgresRepository)(nil)

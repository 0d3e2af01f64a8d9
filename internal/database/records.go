package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ankitdev/price-radar/internal/models"
)

// schema is applied idempotently at startup. The records table is
// append-only: rows are never updated or read back during ingestion.
const schema = `
CREATE TABLE IF NOT EXISTS price_records (
	id BIGSERIAL PRIMARY KEY,
	product_name VARCHAR(255) NOT NULL,
	source_site VARCHAR(50) NOT NULL,
	title VARCHAR(500) NOT NULL,
	price DOUBLE PRECISION,
	currency VARCHAR(10) NOT NULL,
	availability VARCHAR(100) NOT NULL,
	rating DOUBLE PRECISION,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_price_records_product_name
	ON price_records (product_name);

CREATE TABLE IF NOT EXISTS outbox_event (
	id UUID PRIMARY KEY,
	aggregate_type VARCHAR(50) NOT NULL,
	aggregate_id VARCHAR(255) NOT NULL,
	event_type VARCHAR(100) NOT NULL,
	payload JSONB NOT NULL,
	target_stream VARCHAR(100) NOT NULL,
	status VARCHAR(20) NOT NULL,
	retry_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ,
	next_retry_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_outbox_event_status
	ON outbox_event (status, next_retry_at);
`

// RecordRepository persists normalized scrape observations.
type RecordRepository struct {
	db *DB
}

func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// EnsureSchema creates the tables and indexes if absent. Safe to call
// on every startup.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Insert appends one observation in its own transaction. The
// identifier and capture timestamp are assigned by the database.
func (r *RecordRepository) Insert(ctx context.Context, rec *models.NormalizedRecord) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		return r.InsertWithTx(ctx, tx, rec)
	})
}

// InsertWithTx appends one observation within an existing transaction,
// so callers can commit the record together with its outbox event.
func (r *RecordRepository) InsertWithTx(ctx context.Context, tx pgx.Tx, rec *models.NormalizedRecord) error {
	query := `
		INSERT INTO price_records
			(product_name, source_site, title, price, currency, availability, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, scraped_at`

	err := tx.QueryRow(ctx, query,
		rec.ProductName, rec.Source, rec.Title, rec.Price,
		rec.Currency, rec.Availability, rec.Rating,
	).Scan(&rec.ID, &rec.ScrapedAt)

	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// List returns every stored record in insertion order.
func (r *RecordRepository) List(ctx context.Context) ([]*models.NormalizedRecord, error) {
	query := `
		SELECT id, product_name, source_site, title, price, currency, availability, rating, scraped_at
		FROM price_records
		ORDER BY id`

	return r.queryRecords(ctx, query)
}

// Search returns records whose product_name contains the substring.
func (r *RecordRepository) Search(ctx context.Context, name string) ([]*models.NormalizedRecord, error) {
	query := `
		SELECT id, product_name, source_site, title, price, currency, availability, rating, scraped_at
		FROM price_records
		WHERE product_name LIKE '%' || $1 || '%'
		ORDER BY id`

	return r.queryRecords(ctx, query, name)
}

// Comparison is one (source, price) pair for a matching record.
type Comparison struct {
	Source models.Source `json:"source_site"`
	Price  *float64      `json:"price"`
}

// Compare returns only the (source_site, price) projection for records
// whose product_name contains the substring.
func (r *RecordRepository) Compare(ctx context.Context, name string) ([]Comparison, error) {
	query := `
		SELECT source_site, price
		FROM price_records
		WHERE product_name LIKE '%' || $1 || '%'
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	comparisons := make([]Comparison, 0)
	for rows.Next() {
		var c Comparison
		if err := rows.Scan(&c.Source, &c.Price); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		comparisons = append(comparisons, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return comparisons, nil
}

func (r *RecordRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*models.NormalizedRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.NormalizedRecord, 0)
	for rows.Next() {
		rec := &models.NormalizedRecord{}
		err := rows.Scan(
			&rec.ID, &rec.ProductName, &rec.Source, &rec.Title, &rec.Price,
			&rec.Currency, &rec.Availability, &rec.Rating, &rec.ScrapedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertScrapeEvent(t *testing.T, db *DB, repo *OutboxRepository, event *OutboxEvent) {
	t.Helper()
	err := db.WithTx(context.Background(), func(tx pgx.Tx) error {
		return repo.InsertWithTx(context.Background(), tx, event)
	})
	require.NoError(t, err)
}

func outboxTestDB(t *testing.T) *DB {
	t.Helper()
	db := testDB(t)
	_, err := db.Exec(context.Background(), schema)
	require.NoError(t, err)
	_, err = db.Exec(context.Background(), "TRUNCATE outbox_event")
	require.NoError(t, err)
	return db
}

func TestOutboxRepositoryInsertWithTx(t *testing.T) {
	ctx := context.Background()
	db := outboxTestDB(t)
	repo := NewOutboxRepository(db)

	t.Run("insert assigns defaults", func(t *testing.T) {
		event := &OutboxEvent{
			AggregateType: "price_record",
			AggregateID:   "iPhone 15",
			EventType:     "RECORD_SCRAPED",
			Payload:       json.RawMessage(`{"product_name":"iPhone 15","source_site":"amazon"}`),
		}

		insertScrapeEvent(t, db, repo, event)

		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, OutboxStatusPending, event.Status)
		assert.Equal(t, DefaultTargetStream, event.TargetStream)
		assert.Zero(t, event.RetryCount)
		assert.False(t, event.CreatedAt.IsZero())
	})

	t.Run("rollback leaves no row behind", func(t *testing.T) {
		event := &OutboxEvent{
			AggregateType: "price_record",
			AggregateID:   "Rolled Back",
			EventType:     "RECORD_SCRAPED",
			Payload:       json.RawMessage(`{}`),
		}

		err := db.WithTx(ctx, func(tx pgx.Tx) error {
			if err := repo.InsertWithTx(ctx, tx, event); err != nil {
				return err
			}
			return pgx.ErrTxClosed
		})
		assert.Error(t, err)

		events, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		for _, e := range events {
			assert.NotEqual(t, "Rolled Back", e.AggregateID)
		}
	})
}

func TestOutboxRepositoryGetPending(t *testing.T) {
	ctx := context.Background()
	db := outboxTestDB(t)
	repo := NewOutboxRepository(db)

	now := time.Now()
	for _, event := range []*OutboxEvent{
		{AggregateType: "price_record", AggregateID: "A", EventType: "RECORD_SCRAPED", Payload: json.RawMessage(`{}`), Status: OutboxStatusPending, NextRetryAt: &now},
		{AggregateType: "price_record", AggregateID: "B", EventType: "RECORD_SCRAPED", Payload: json.RawMessage(`{}`), Status: OutboxStatusProcessed, NextRetryAt: &now},
		{AggregateType: "price_record", AggregateID: "C", EventType: "RECORD_SCRAPED", Payload: json.RawMessage(`{}`), Status: OutboxStatusFailed, RetryCount: 2, NextRetryAt: &now},
	} {
		insertScrapeEvent(t, db, repo, event)
	}

	t.Run("returns pending and failed only", func(t *testing.T) {
		pending, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		for _, e := range pending {
			assert.Contains(t, []string{OutboxStatusPending, OutboxStatusFailed}, e.Status)
		}
	})

	t.Run("respects next_retry_at", func(t *testing.T) {
		future := time.Now().Add(1 * time.Hour)
		_, err := db.Exec(ctx,
			"UPDATE outbox_event SET next_retry_at = $1 WHERE aggregate_id = $2",
			future, "C")
		require.NoError(t, err)

		pending, err := repo.GetPending(ctx, 10)
		require.NoError(t, err)
		for _, e := range pending {
			assert.NotEqual(t, "C", e.AggregateID)
		}
	})
}

func TestOutboxRepositoryMarkProcessed(t *testing.T) {
	ctx := context.Background()
	db := outboxTestDB(t)
	repo := NewOutboxRepository(db)

	event := &OutboxEvent{
		AggregateType: "price_record",
		AggregateID:   "iPhone 15",
		EventType:     "RECORD_SCRAPED",
		Payload:       json.RawMessage(`{}`),
	}
	insertScrapeEvent(t, db, repo, event)

	t.Run("mark as processed", func(t *testing.T) {
		require.NoError(t, repo.MarkProcessed(ctx, event.ID))

		var status string
		var processedAt *time.Time
		err := db.QueryRow(ctx,
			"SELECT status, processed_at FROM outbox_event WHERE id = $1",
			event.ID).Scan(&status, &processedAt)
		require.NoError(t, err)

		assert.Equal(t, OutboxStatusProcessed, status)
		assert.NotNil(t, processedAt)
	})

	t.Run("mark non-existent event", func(t *testing.T) {
		assert.Error(t, repo.MarkProcessed(ctx, uuid.New()))
	})
}

func TestOutboxRepositoryMarkFailed(t *testing.T) {
	ctx := context.Background()
	db := outboxTestDB(t)
	repo := NewOutboxRepository(db)

	t.Run("increments retry count and sets backoff", func(t *testing.T) {
		event := &OutboxEvent{
			AggregateType: "price_record",
			AggregateID:   "iPhone 15",
			EventType:     "RECORD_SCRAPED",
			Payload:       json.RawMessage(`{}`),
		}
		insertScrapeEvent(t, db, repo, event)

		require.NoError(t, repo.MarkFailed(ctx, event.ID, assert.AnError))

		var status string
		var retryCount int
		var errorMsg *string
		var nextRetry *time.Time
		err := db.QueryRow(ctx,
			"SELECT status, retry_count, error_message, next_retry_at FROM outbox_event WHERE id = $1",
			event.ID).Scan(&status, &retryCount, &errorMsg, &nextRetry)
		require.NoError(t, err)

		assert.Equal(t, OutboxStatusFailed, status)
		assert.Equal(t, 1, retryCount)
		require.NotNil(t, errorMsg)
		assert.NotEmpty(t, *errorMsg)
		require.NotNil(t, nextRetry)
		assert.True(t, nextRetry.After(time.Now()))
	})

	t.Run("moves to dead letter after max retries", func(t *testing.T) {
		event := &OutboxEvent{
			AggregateType: "price_record",
			AggregateID:   "Galaxy S24",
			EventType:     "RECORD_SCRAPED",
			Payload:       json.RawMessage(`{}`),
			RetryCount:    MaxRetryCount - 1,
		}
		insertScrapeEvent(t, db, repo, event)

		require.NoError(t, repo.MarkFailed(ctx, event.ID, assert.AnError))

		var status string
		var retryCount int
		err := db.QueryRow(ctx,
			"SELECT status, retry_count FROM outbox_event WHERE id = $1",
			event.ID).Scan(&status, &retryCount)
		require.NoError(t, err)

		assert.Equal(t, OutboxStatusDeadLetter, status)
		assert.Equal(t, MaxRetryCount, retryCount)
	})
}

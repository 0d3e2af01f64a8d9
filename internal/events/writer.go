package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ankitdev/price-radar/internal/database"
	"github.com/ankitdev/price-radar/internal/models"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeRecordScraped is published for every stored observation
	EventTypeRecordScraped EventType = "RECORD_SCRAPED"
)

// RecordScrapedPayload is the payload for RECORD_SCRAPED events.
// Downstream consumers (alerting, price history) read it from the
// Redis stream the relay feeds.
type RecordScrapedPayload struct {
	EventID      string        `json:"event_id"`
	EventType    string        `json:"event_type"`
	Timestamp    time.Time     `json:"timestamp"`
	RecordID     int64         `json:"record_id"`
	ProductName  string        `json:"product_name"`
	SourceSite   models.Source `json:"source_site"`
	Title        string        `json:"title"`
	Price        *float64      `json:"price,omitempty"`
	Currency     string        `json:"currency"`
	Availability string        `json:"availability"`
	Rating       *float64      `json:"rating,omitempty"`
}

// TxRunner runs a function within one database transaction (for testing)
type TxRunner interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

// RecordStore inserts records within a transaction (for testing)
type RecordStore interface {
	InsertWithTx(ctx context.Context, tx pgx.Tx, rec *models.NormalizedRecord) error
}

// OutboxStore inserts outbox events within a transaction (for testing)
type OutboxStore interface {
	InsertWithTx(ctx context.Context, tx pgx.Tx, event *database.OutboxEvent) error
}

// RecordWriter persists a normalized record and its RECORD_SCRAPED
// outbox event in one transaction: the observation and its
// announcement commit together or not at all.
type RecordWriter struct {
	db      TxRunner
	records RecordStore
	outbox  OutboxStore
	logger  *slog.Logger
}

func NewRecordWriter(db *database.DB, records *database.RecordRepository, logger *slog.Logger) *RecordWriter {
	return &RecordWriter{
		db:      db,
		records: records,
		outbox:  database.NewOutboxRepository(db),
		logger:  logger.With("component", "record_writer"),
	}
}

// Insert stores the record and enqueues its event for the relay. On
// any failure neither row is committed.
func (w *RecordWriter) Insert(ctx context.Context, rec *models.NormalizedRecord) error {
	var outboxEvent *database.OutboxEvent

	err := w.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := w.records.InsertWithTx(ctx, tx, rec); err != nil {
			return err
		}

		payload := &RecordScrapedPayload{
			EventID:      uuid.New().String(),
			EventType:    string(EventTypeRecordScraped),
			Timestamp:    time.Now(),
			RecordID:     rec.ID,
			ProductName:  rec.ProductName,
			SourceSite:   rec.Source,
			Title:        rec.Title,
			Price:        rec.Price,
			Currency:     rec.Currency,
			Availability: rec.Availability,
			Rating:       rec.Rating,
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		outboxEvent = &database.OutboxEvent{
			AggregateType: "price_record",
			AggregateID:   rec.ProductName,
			EventType:     string(EventTypeRecordScraped),
			Payload:       data,
			TargetStream:  database.DefaultTargetStream,
		}

		return w.outbox.InsertWithTx(ctx, tx, outboxEvent)
	})
	if err != nil {
		return fmt.Errorf("failed to store record with event: %w", err)
	}

	w.logger.Info("record stored with event",
		"record_id", rec.ID,
		"product", rec.ProductName,
		"source", rec.Source,
		"outbox_id", outboxEvent.ID,
	)

	return nil
}

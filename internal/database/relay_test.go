package database

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient is a mock for Redis client
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	mockArgs := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if mockArgs.Get(0) != nil {
		cmd.SetErr(mockArgs.Error(0))
	} else {
		cmd.SetVal("1234567890-0")
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockOutboxRepository is a mock for OutboxRepository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, err error) error {
	args := m.Called(ctx, id, err)
	return args.Error(0)
}

func scrapeEvent(name string) *OutboxEvent {
	payload, _ := json.Marshal(map[string]interface{}{
		"product_name": name,
		"source_site":  "amazon",
		"price":        61999.0,
	})
	return &OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "price_record",
		AggregateID:   name,
		EventType:     "RECORD_SCRAPED",
		Payload:       payload,
		TargetStream:  DefaultTargetStream,
		CreatedAt:     time.Now(),
	}
}

func TestRelay_ProcessEvents(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successfully process and publish events", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)

		relay := &Relay{
			redis:     mockRedis,
			outbox:    mockOutbox,
			logger:    logger,
			batchSize: 10,
		}

		events := []*OutboxEvent{
			scrapeEvent("iPhone 15"),
			scrapeEvent("Galaxy S24"),
		}

		mockOutbox.On("GetPending", ctx, 10).Return(events, nil)

		for _, event := range events {
			event := event // per-iteration copy: matchers outlive the loop and go.mod is below 1.22
			mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
				vals := args.Values.(map[string]interface{})
				return args.Stream == event.TargetStream &&
					vals["event_type"] == event.EventType &&
					vals["aggregate_id"] == event.AggregateID
			})).Return(nil)

			mockOutbox.On("MarkProcessed", ctx, event.ID).Return(nil)
		}

		err := relay.processEvents(ctx)
		require.NoError(t, err)

		mockRedis.AssertExpectations(t)
		mockOutbox.AssertExpectations(t)
	})

	t.Run("handle Redis publish failure", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)

		relay := &Relay{
			redis:     mockRedis,
			outbox:    mockOutbox,
			logger:    logger,
			batchSize: 10,
		}

		event := scrapeEvent("iPhone 15")

		mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{event}, nil)

		redisErr := errors.New("redis connection failed")
		mockRedis.On("XAdd", ctx, mock.Anything).Return(redisErr)

		mockOutbox.On("MarkFailed", ctx, event.ID, mock.MatchedBy(func(err error) bool {
			return err.Error() == "failed to publish to redis: redis connection failed"
		})).Return(nil)

		err := relay.processEvents(ctx)
		assert.NoError(t, err) // individual event errors never fail the batch

		mockRedis.AssertExpectations(t)
		mockOutbox.AssertExpectations(t)
	})

	t.Run("handle empty event batch", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)

		relay := &Relay{
			redis:     mockRedis,
			outbox:    mockOutbox,
			logger:    logger,
			batchSize: 10,
		}

		mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{}, nil)

		err := relay.processEvents(ctx)
		require.NoError(t, err)

		mockRedis.AssertNotCalled(t, "XAdd", mock.Anything, mock.Anything)
		mockOutbox.AssertExpectations(t)
	})

	t.Run("continue processing on individual event failure", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)

		relay := &Relay{
			redis:     mockRedis,
			outbox:    mockOutbox,
			logger:    logger,
			batchSize: 10,
		}

		events := []*OutboxEvent{
			scrapeEvent("iPhone 15"),
			scrapeEvent("Galaxy S24"),
		}

		mockOutbox.On("GetPending", ctx, 10).Return(events, nil)

		// First event fails
		mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
			return args.Values.(map[string]interface{})["aggregate_id"] == "iPhone 15"
		})).Return(errors.New("redis error"))
		mockOutbox.On("MarkFailed", ctx, events[0].ID, mock.Anything).Return(nil)

		// Second event succeeds
		mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
			return args.Values.(map[string]interface{})["aggregate_id"] == "Galaxy S24"
		})).Return(nil)
		mockOutbox.On("MarkProcessed", ctx, events[1].ID).Return(nil)

		err := relay.processEvents(ctx)
		require.NoError(t, err)

		mockRedis.AssertExpectations(t)
		mockOutbox.AssertExpectations(t)
	})
}

func TestRelay_PublishToRedis(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("correct stream data format", func(t *testing.T) {
		mockRedis := new(MockRedisClient)

		relay := &Relay{
			redis:  mockRedis,
			outbox: new(MockOutboxRepository),
			logger: logger,
		}

		event := scrapeEvent("iPhone 15")

		mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
			val, ok := args.Values.(map[string]interface{})["data"].(string)
			if !ok {
				return false
			}

			var data map[string]interface{}
			if err := json.Unmarshal([]byte(val), &data); err != nil {
				return false
			}

			return data["id"] != nil &&
				data["type"] == "RECORD_SCRAPED" &&
				data["aggregate_type"] == "price_record" &&
				data["aggregate_id"] == "iPhone 15" &&
				data["payload"] != nil &&
				data["timestamp"] != nil
		})).Return(nil)

		err := relay.publishToRedis(ctx, event)
		require.NoError(t, err)

		mockRedis.AssertExpectations(t)
	})

	t.Run("include metadata in stream data", func(t *testing.T) {
		mockRedis := new(MockRedisClient)

		relay := &Relay{
			redis:  mockRedis,
			outbox: new(MockOutboxRepository),
			logger: logger,
		}

		event := scrapeEvent("iPhone 15")

		mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
			val, ok := args.Values.(map[string]interface{})["data"].(string)
			if !ok {
				return false
			}

			var data map[string]interface{}
			if err := json.Unmarshal([]byte(val), &data); err != nil {
				return false
			}

			metadata, ok := data["metadata"].(map[string]interface{})
			if !ok {
				return false
			}

			return metadata["source"] == "price-radar"
		})).Return(nil)

		err := relay.publishToRedis(ctx, event)
		require.NoError(t, err)

		mockRedis.AssertExpectations(t)
	})
}

func TestRelay_Start(t *testing.T) {
	logger := slog.Default()

	t.Run("stop on context cancellation", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)

		relay := &Relay{
			redis:     mockRedis,
			outbox:    mockOutbox,
			logger:    logger,
			interval:  50 * time.Millisecond,
			batchSize: 10,
		}

		mockOutbox.On("GetPending", mock.Anything, 10).Return([]*OutboxEvent{}, nil).Maybe()

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error)
		go func() {
			done <- relay.Start(ctx)
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(1 * time.Second):
			t.Fatal("relay did not stop on context cancellation")
		}
	})
}

func TestCalculateNextRetryTime(t *testing.T) {
	before := time.Now()

	first := calculateNextRetryTime(1)
	assert.True(t, first.After(before.Add(1*time.Second)))
	assert.True(t, first.Before(before.Add(5*time.Second)))

	// Backoff is capped at 5 minutes for large retry counts.
	capped := calculateNextRetryTime(20)
	assert.True(t, capped.Before(before.Add(301*time.Second)))
}

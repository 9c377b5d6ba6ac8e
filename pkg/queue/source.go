// Package queue consumes domain events a host pushes onto a Redis list and
// feeds them to the event bus.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
	"github.com/taskdeck/taskdeck/pkg/events"
)

const popTimeout = 1 * time.Second

// Source drains one Redis list of JSON-encoded domain events. Hosts that
// cannot speak Kafka push here instead; the source normalizes and republishes
// onto the bus.
type Source struct {
	queue     string
	client    redis.UniversalClient
	publisher eventbus.EventPublisher
	logger    *slog.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func NewSource(redisURL, queue string, publisher eventbus.EventPublisher, logger *slog.Logger) (*Source, error) {
	if queue == "" {
		return nil, errors.New("queue name is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Source{
		queue:     queue,
		client:    redis.NewClient(opts),
		publisher: publisher,
		logger: logger.With(
			"module", "queue_source",
			"queue", queue,
		),
		stopCh: make(chan struct{}),
	}, nil
}

func (s *Source) Start(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s.logger.InfoContext(ctx, "Starting queue source")
	s.wg.Add(1)

	go s.consume(ctx)

	return nil
}

func (s *Source) consume(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			s.logger.InfoContext(ctx, "Queue source stopped")

			return
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Context cancelled, stopping queue source")

			return
		default:
			err := s.processMessage(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (s *Source) processMessage(ctx context.Context) error {
	result, err := s.client.BLPop(ctx, popTimeout, s.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	var event events.DomainEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		return fmt.Errorf("failed to decode domain event: %w", err)
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := s.publisher.Publish(ctx, event.TaskID, event); err != nil {
		return fmt.Errorf("failed to publish domain event: %w", err)
	}

	return nil
}

func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping queue source")

	close(s.stopCh)
	s.wg.Wait()

	if s.client != nil {
		err := s.client.Close()
		if err != nil {
			s.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}

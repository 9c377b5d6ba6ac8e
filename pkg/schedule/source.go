// Package schedule emits the date-arrival domain events (due date arrives,
// start date arrives, scheduled recurrence) on a cron cadence.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/models"
)

// Arrival is one date crossing found by a scan: a task whose due or start
// date has been reached since the previous tick.
type Arrival struct {
	Trigger     models.TriggerType `json:"trigger"`
	WorkspaceID string             `json:"workspace_id"`
	TaskID      string             `json:"task_id"`
	ListID      string             `json:"list_id"`
}

// Scanner is the host-side lookup for date crossings. The engine does not own
// task dates, so it asks on every tick.
type Scanner interface {
	ScanArrivals(ctx context.Context, now time.Time) ([]Arrival, error)
}

type Source struct {
	cronExpr  string
	cron      *cron.Cron
	scanner   Scanner
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewSource(cronExpr string, scanner Scanner, publisher eventbus.EventPublisher, logger *slog.Logger) (*Source, error) {
	if cronExpr == "" {
		cronExpr = "* * * * *"
	}

	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	if scanner == nil {
		return nil, errors.New("schedule source requires a scanner")
	}

	return &Source{
		cronExpr:  cronExpr,
		scanner:   scanner,
		publisher: publisher,
		logger: logger.With(
			"module", "schedule_source",
			"cron", cronExpr,
		),
	}, nil
}

func (s *Source) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting schedule source")

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(s.cronExpr, func() { s.tick(ctx) })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()

	return nil
}

func (s *Source) tick(ctx context.Context) {
	now := time.Now().UTC()

	arrivals, err := s.scanner.ScanArrivals(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to scan date arrivals", "error", err)

		return
	}

	for _, arrival := range arrivals {
		event := events.DomainEvent{
			ID:          uuid.NewString(),
			Trigger:     arrival.Trigger,
			WorkspaceID: arrival.WorkspaceID,
			TaskID:      arrival.TaskID,
			ListID:      arrival.ListID,
			Timestamp:   now,
		}

		if err := s.publisher.Publish(ctx, event.TaskID, event); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish date arrival",
				"task_id", arrival.TaskID,
				"trigger", arrival.Trigger,
				"error", err)
		}
	}
}

func (s *Source) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping schedule source")

	if s.cron != nil {
		s.cron.Stop()
	}

	return nil
}

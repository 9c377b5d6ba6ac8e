package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskdeck/taskdeck/pkg/actions"
	"github.com/taskdeck/taskdeck/pkg/engine"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
	"github.com/taskdeck/taskdeck/pkg/hierarchy"
	"github.com/taskdeck/taskdeck/pkg/host"
	"github.com/taskdeck/taskdeck/pkg/otelhelper"
	"github.com/taskdeck/taskdeck/pkg/persistence"
	"github.com/taskdeck/taskdeck/pkg/queue"
	"github.com/taskdeck/taskdeck/pkg/rules"
	"github.com/taskdeck/taskdeck/pkg/schedule"
)

type WorkerConfig struct {
	HostAPIURL     string
	QueueURL       string
	QueueName      string
	ScheduleCron   string
	TracingEnabled bool
}

// Worker assembles the engine against the host API and keeps it attached to
// the event bus until the context ends.
type Worker struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	config      WorkerConfig
}

func NewWorker(id string, logger *slog.Logger, p persistence.Persistence, bus eventbus.EventBus, config WorkerConfig) *Worker {
	return &Worker{
		id:          id,
		logger:      logger,
		persistence: p,
		eventBus:    bus,
		config:      config,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	hostClient := host.NewClient(w.config.HostAPIURL, nil, w.logger)

	resolver := hierarchy.NewResolver(hostClient, w.logger)
	repository := rules.NewRepository(w.logger, w.persistence)
	registry := actions.NewRegistry()

	executor := engine.NewExecutor(
		w.logger,
		registry,
		hostClient,
		hostClient,
		hostClient,
		engine.NewHTTPWebhookSender(nil),
	)

	ruleEngine := engine.NewEngine(w.logger, repository, hostClient, resolver, executor, w.eventBus)

	if w.config.TracingEnabled {
		tracer, err := otelhelper.NewTracer(ctx, "taskdeck-engine")
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}

		ruleEngine.WithTracer(tracer)
	}

	if err := ruleEngine.Attach(w.eventBus); err != nil {
		return fmt.Errorf("failed to attach engine to event bus: %w", err)
	}

	if err := w.eventBus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to domain events: %w", err)
	}

	if w.config.QueueURL != "" {
		source, err := queue.NewSource(w.config.QueueURL, w.config.QueueName, w.eventBus, w.logger)
		if err != nil {
			return fmt.Errorf("failed to create queue source: %w", err)
		}

		if err := source.Start(ctx); err != nil {
			return fmt.Errorf("failed to start queue source: %w", err)
		}

		defer func() {
			if err := source.Stop(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Failed to stop queue source", "error", err)
			}
		}()
	}

	if w.config.ScheduleCron != "" {
		source, err := schedule.NewSource(w.config.ScheduleCron, hostClient, w.eventBus, w.logger)
		if err != nil {
			return fmt.Errorf("failed to create schedule source: %w", err)
		}

		if err := source.Start(ctx); err != nil {
			return fmt.Errorf("failed to start schedule source: %w", err)
		}

		defer func() {
			if err := source.Stop(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Failed to stop schedule source", "error", err)
			}
		}()
	}

	w.logger.InfoContext(ctx, "Engine worker running")

	<-ctx.Done()

	w.logger.Info("Engine worker shutting down")

	return nil
}

// Package engine wires trigger matching, scope filtering, condition
// evaluation and action execution into one event handler.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/pkg/condition"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/hierarchy"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/otelhelper"
	"github.com/taskdeck/taskdeck/pkg/store"
	"github.com/taskdeck/taskdeck/pkg/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// RuleSource supplies the candidate rules for an event. Implementations
// should already narrow by workspace and trigger type; the engine does the
// rest of the filtering.
type RuleSource interface {
	FetchByTrigger(ctx context.Context, workspaceID string, triggerType models.TriggerType) ([]*models.Rule, error)
}

type Engine struct {
	logger    *slog.Logger
	source    RuleSource
	store     store.EntityStore
	resolver  *hierarchy.Resolver
	matcher   *trigger.Matcher
	evaluator *condition.Evaluator
	executor  *Executor
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
}

func NewEngine(
	logger *slog.Logger,
	source RuleSource,
	entityStore store.EntityStore,
	resolver *hierarchy.Resolver,
	executor *Executor,
	publisher eventbus.EventPublisher,
) *Engine {
	return &Engine{
		logger:    logger.With("module", "rule_engine"),
		source:    source,
		store:     entityStore,
		resolver:  resolver,
		matcher:   trigger.NewMatcher(logger),
		evaluator: condition.NewEvaluator(logger),
		executor:  executor,
		publisher: publisher,
		tracer:    noop.NewTracerProvider().Tracer(""),
	}
}

// WithTracer enables spans around event handling.
func (e *Engine) WithTracer(tracer trace.Tracer) *Engine {
	e.tracer = tracer
	e.executor.WithTracer(tracer)

	return e
}

// Attach registers the engine as the handler for domain events on the bus.
func (e *Engine) Attach(bus eventbus.EventBus) error {
	return bus.Handle(events.DomainEventType, func(ctx context.Context, raw interface{}) error {
		event, ok := raw.(*events.DomainEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", raw)
		}

		return e.HandleEvent(ctx, *event)
	})
}

// HandleEvent evaluates every candidate rule against one domain event.
//
// Events produced by automation carry a depth; at MaxDepth the event is
// dropped so rule chains cannot loop. Hosts must stamp Depth+1 on any event
// that results from an action the engine applied.
func (e *Engine) HandleEvent(ctx context.Context, event events.DomainEvent) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.handle_event",
		attribute.String(otelhelper.EventIDKey, event.ID),
		attribute.String(otelhelper.WorkspaceIDKey, event.WorkspaceID),
		attribute.String(otelhelper.TriggerTypeKey, string(event.Trigger)),
		attribute.Int(otelhelper.EventDepthKey, event.Depth),
	)
	defer span.End()

	logger := e.logger.With(
		"event_id", event.ID,
		"trigger", event.Trigger,
		"workspace_id", event.WorkspaceID,
		"task_id", event.TaskID,
	)

	if event.Depth >= events.MaxDepth {
		logger.Warn("Dropping event at automation depth limit", "depth", event.Depth)

		return nil
	}

	candidates, err := e.source.FetchByTrigger(ctx, event.WorkspaceID, event.Trigger)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to fetch rules for %s: %w", event.WorkspaceID, err)
	}

	if len(candidates) == 0 {
		return nil
	}

	// One ancestry cache per event; every rule sees the same hierarchy even
	// if it changes mid-batch.
	cache := hierarchy.NewBatchCache(e.resolver)

	chain, err := cache.ResolveScopeChain(ctx, event.WorkspaceID, event.ListID)
	if err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to resolve scope chain for list %s: %w", event.ListID, err)
	}

	// Fetched once, on the first rule that has conditions.
	var task *models.TaskSnapshot

	for _, rule := range candidates {
		if !rule.Enabled {
			continue
		}

		if !slices.Contains(chain, rule.Scope.ID) {
			continue
		}

		if !e.matcher.Matches(rule.Trigger, event) {
			continue
		}

		if len(rule.Conditions) > 0 {
			if task == nil {
				task, err = e.store.GetTask(ctx, event.TaskID)
				if err != nil {
					logger.Error("Failed to load task snapshot", "error", err)
					e.publishFailed(ctx, rule, event, err)

					continue
				}
			}

			if !e.evaluator.Evaluate(rule.Conditions, task) {
				continue
			}
		}

		logger.Info("Rule matched", "rule_id", rule.ID)
		e.publishMatched(ctx, rule, event)

		started := time.Now()
		results := e.executor.ExecuteAll(ctx, rule, event)
		e.publishExecuted(ctx, rule, event, results, time.Since(started))
	}

	return nil
}

func (e *Engine) baseOutcome(eventType events.EventType, rule *models.Rule, event events.DomainEvent) events.BaseOutcome {
	return events.BaseOutcome{
		ID:          uuid.NewString(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		RuleID:      rule.ID,
		WorkspaceID: rule.WorkspaceID,
		TaskID:      event.TaskID,
		EventID:     event.ID,
	}
}

func (e *Engine) publishMatched(ctx context.Context, rule *models.Rule, event events.DomainEvent) {
	e.publish(ctx, event.TaskID, events.RuleMatched{
		BaseOutcome: e.baseOutcome(events.RuleMatchedEvent, rule, event),
	})
}

func (e *Engine) publishExecuted(ctx context.Context, rule *models.Rule, event events.DomainEvent, results []ExecutionResult, duration time.Duration) {
	failed := 0

	for _, result := range results {
		if result.Error != nil {
			failed++
		}
	}

	e.publish(ctx, event.TaskID, events.RuleExecuted{
		BaseOutcome:   e.baseOutcome(events.RuleExecutedEvent, rule, event),
		ActionsRun:    len(results),
		ActionsFailed: failed,
		Duration:      duration,
	})
}

func (e *Engine) publishFailed(ctx context.Context, rule *models.Rule, event events.DomainEvent, cause error) {
	e.publish(ctx, event.TaskID, events.RuleFailed{
		BaseOutcome: e.baseOutcome(events.RuleFailedEvent, rule, event),
		Error:       cause.Error(),
	})
}

func (e *Engine) publish(ctx context.Context, key string, outcome eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, outcome); err != nil {
		e.logger.Error("Failed to publish outcome event", "error", err, "type", outcome.GetType())
	}
}

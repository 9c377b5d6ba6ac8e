package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskdeck/taskdeck/pkg/actions"
	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/otelhelper"
	"github.com/taskdeck/taskdeck/pkg/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultActionTimeout = 10 * time.Second

// ExecutionResult records the outcome of one action in a rule's batch.
type ExecutionResult struct {
	ActionID string            `json:"action_id"`
	Type     models.ActionType `json:"type"`
	ListID   string            `json:"list_id"`
	Error    error             `json:"-"`
	Duration time.Duration     `json:"duration"`
}

// Executor runs a matched rule's actions in declared order. A failing action
// never stops the batch; each action gets its own result, its own timeout and
// its own span.
type Executor struct {
	logger   *slog.Logger
	registry *actions.Registry
	store    store.EntityStore
	mutator  TaskMutator
	notifier NotificationSender
	webhooks WebhookSender
	tracer   trace.Tracer
	timeout  time.Duration
}

func NewExecutor(
	logger *slog.Logger,
	registry *actions.Registry,
	entityStore store.EntityStore,
	mutator TaskMutator,
	notifier NotificationSender,
	webhooks WebhookSender,
) *Executor {
	return &Executor{
		logger:   logger.With("module", "action_executor"),
		registry: registry,
		store:    entityStore,
		mutator:  mutator,
		notifier: notifier,
		webhooks: webhooks,
		tracer:   noop.NewTracerProvider().Tracer(""),
		timeout:  defaultActionTimeout,
	}
}

// WithTracer enables per-action spans.
func (e *Executor) WithTracer(tracer trace.Tracer) *Executor {
	e.tracer = tracer

	return e
}

// WithTimeout overrides the per-action deadline.
func (e *Executor) WithTimeout(timeout time.Duration) *Executor {
	e.timeout = timeout

	return e
}

// ExecuteAll runs every action of the rule against the task the event refers
// to. The effective scope starts at the event's list and follows each declared
// move: an action after a move_task resolves scoped lookups (statuses, in
// particular) against the move's target list, not the list the event arrived
// from.
func (e *Executor) ExecuteAll(ctx context.Context, rule *models.Rule, event events.DomainEvent) []ExecutionResult {
	logger := e.logger.With(
		"rule_id", rule.ID,
		"task_id", event.TaskID,
		"event_id", event.ID,
	)

	effectiveListID := event.ListID
	results := make([]ExecutionResult, 0, len(rule.Actions))

	for _, action := range rule.Actions {
		started := time.Now()

		actionCtx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.execute_action",
			attribute.String(otelhelper.RuleIDKey, rule.ID),
			attribute.String(otelhelper.TaskIDKey, event.TaskID),
			attribute.String(otelhelper.ActionIDKey, action.ID),
			attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
		)

		err := e.executeOne(actionCtx, action, event, effectiveListID)
		if err != nil {
			otelhelper.SetError(span, err)
			logger.Warn("Action failed",
				"action_id", action.ID,
				"action_type", action.Type,
				"error", err)
		}

		span.End()

		results = append(results, ExecutionResult{
			ActionID: action.ID,
			Type:     action.Type,
			ListID:   effectiveListID,
			Error:    err,
			Duration: time.Since(started),
		})

		// Scope follows declared moves, whether or not the move itself
		// succeeded at runtime.
		if action.Type == models.ActionMoveTask {
			if move, decodeErr := actions.DecodeMoveTask(action.Config); decodeErr == nil && move.TargetListID != "" {
				effectiveListID = move.TargetListID
			}
		}
	}

	return results
}

func (e *Executor) executeOne(ctx context.Context, action models.ActionSpec, event events.DomainEvent, effectiveListID string) error {
	if err := e.registry.ValidateConfig(action); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	taskID := event.TaskID

	switch action.Type {
	case models.ActionSetStatus:
		config, err := actions.DecodeSetStatus(action.Config)
		if err != nil {
			return err
		}

		if err := e.checkStatusInScope(ctx, config.StatusID, effectiveListID); err != nil {
			return err
		}

		return e.mutator.SetStatus(ctx, taskID, config.StatusID)
	case models.ActionSetPriority:
		config, err := actions.DecodeSetPriority(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.SetPriority(ctx, taskID, config.Priority)
	case models.ActionAutoAssignUser, models.ActionAddAssignee:
		config, err := actions.DecodeAssignUsers(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.AddAssignees(ctx, taskID, config.UserIDs)
	case models.ActionRemoveAssignee:
		config, err := actions.DecodeRemoveAssignee(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.RemoveAssignee(ctx, taskID, config.UserID)
	case models.ActionRemoveAllAssignees:
		return e.mutator.RemoveAllAssignees(ctx, taskID)
	case models.ActionAutoAddFollower, models.ActionAddFollower:
		config, err := actions.DecodeAssignUsers(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.AddFollowers(ctx, taskID, config.UserIDs)
	case models.ActionAutoAssignTeam:
		config, err := actions.DecodeAssignTeam(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.AssignTeam(ctx, taskID, config.TeamID)
	case models.ActionAddTag:
		config, err := actions.DecodeTag(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.AddTag(ctx, taskID, config.TagID)
	case models.ActionRemoveTag:
		config, err := actions.DecodeTag(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.RemoveTag(ctx, taskID, config.TagID)
	case models.ActionSetDueDate:
		due, err := e.resolveDate(action.Config, event.Timestamp)
		if err != nil {
			return err
		}

		return e.mutator.SetDueDate(ctx, taskID, due)
	case models.ActionSetStartDate:
		start, err := e.resolveDate(action.Config, event.Timestamp)
		if err != nil {
			return err
		}

		return e.mutator.SetStartDate(ctx, taskID, start)
	case models.ActionSendNotification:
		config, err := actions.DecodeNotification(action.Config)
		if err != nil {
			return err
		}

		return e.notifier.SendNotification(ctx, config.UserID, config.Message)
	case models.ActionNotifyChannel:
		config, err := actions.DecodeNotifyChannel(action.Config)
		if err != nil {
			return err
		}

		return e.notifier.NotifyChannel(ctx, config.ChannelID, config.Message)
	case models.ActionCreateSubtask:
		config, err := actions.DecodeCreateSubtask(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.CreateSubtask(ctx, taskID, config.Title, config.Description)
	case models.ActionMoveTask:
		config, err := actions.DecodeMoveTask(action.Config)
		if err != nil {
			return err
		}

		return e.mutator.MoveTask(ctx, taskID, config.TargetListID)
	case models.ActionArchiveTask:
		return e.mutator.ArchiveTask(ctx, taskID)
	case models.ActionSendWebhook:
		config, err := actions.DecodeWebhook(action.Config)
		if err != nil {
			return err
		}

		return e.webhooks.SendWebhook(ctx, config.URL, map[string]any{
			"event_id":     event.ID,
			"trigger":      event.Trigger,
			"workspace_id": event.WorkspaceID,
			"task_id":      taskID,
			"list_id":      effectiveListID,
			"timestamp":    event.Timestamp,
		})
	default:
		return fmt.Errorf("action type %q not executable", action.Type)
	}
}

// checkStatusInScope rejects a status id that does not exist on the effective
// list, which happens when a rule was written for one list and the task has
// since been moved to another.
func (e *Executor) checkStatusInScope(ctx context.Context, statusID, listID string) error {
	if listID == "" {
		return nil
	}

	statuses, err := e.store.GetStatusesForScope(ctx, models.ListScope(listID))
	if err != nil {
		return fmt.Errorf("failed to load statuses for list %s: %w", listID, err)
	}

	for _, status := range statuses {
		if status.ID == statusID {
			return nil
		}
	}

	return fmt.Errorf("status %s does not exist on list %s", statusID, listID)
}

func (e *Executor) resolveDate(config map[string]any, from time.Time) (time.Time, error) {
	dateAction, err := actions.DecodeDateAction(config)
	if err != nil {
		return time.Time{}, err
	}

	return dateAction.DateConfig.Resolve(from)
}

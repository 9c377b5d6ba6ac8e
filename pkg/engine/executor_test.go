package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/pkg/actions"
	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/store"
)

// fakeMutator records every mutation and can be told to fail specific calls.
type fakeMutator struct {
	calls  []string
	failOn map[string]error
}

func newFakeMutator() *fakeMutator {
	return &fakeMutator{failOn: map[string]error{}}
}

func (m *fakeMutator) record(call string) error {
	m.calls = append(m.calls, call)

	return m.failOn[call]
}

func (m *fakeMutator) SetStatus(_ context.Context, taskID, statusID string) error {
	return m.record(fmt.Sprintf("set_status(%s,%s)", taskID, statusID))
}

func (m *fakeMutator) SetPriority(_ context.Context, taskID, priority string) error {
	return m.record(fmt.Sprintf("set_priority(%s,%s)", taskID, priority))
}

func (m *fakeMutator) AddAssignees(_ context.Context, taskID string, userIDs []string) error {
	return m.record(fmt.Sprintf("add_assignees(%s,%v)", taskID, userIDs))
}

func (m *fakeMutator) RemoveAssignee(_ context.Context, taskID, userID string) error {
	return m.record(fmt.Sprintf("remove_assignee(%s,%s)", taskID, userID))
}

func (m *fakeMutator) RemoveAllAssignees(_ context.Context, taskID string) error {
	return m.record(fmt.Sprintf("remove_all_assignees(%s)", taskID))
}

func (m *fakeMutator) AddFollowers(_ context.Context, taskID string, userIDs []string) error {
	return m.record(fmt.Sprintf("add_followers(%s,%v)", taskID, userIDs))
}

func (m *fakeMutator) AssignTeam(_ context.Context, taskID, teamID string) error {
	return m.record(fmt.Sprintf("assign_team(%s,%s)", taskID, teamID))
}

func (m *fakeMutator) AddTag(_ context.Context, taskID, tagID string) error {
	return m.record(fmt.Sprintf("add_tag(%s,%s)", taskID, tagID))
}

func (m *fakeMutator) RemoveTag(_ context.Context, taskID, tagID string) error {
	return m.record(fmt.Sprintf("remove_tag(%s,%s)", taskID, tagID))
}

func (m *fakeMutator) SetDueDate(_ context.Context, taskID string, due time.Time) error {
	return m.record(fmt.Sprintf("set_due_date(%s,%s)", taskID, due.Format("2006-01-02")))
}

func (m *fakeMutator) SetStartDate(_ context.Context, taskID string, start time.Time) error {
	return m.record(fmt.Sprintf("set_start_date(%s,%s)", taskID, start.Format("2006-01-02")))
}

func (m *fakeMutator) CreateSubtask(_ context.Context, taskID, title, description string) error {
	return m.record(fmt.Sprintf("create_subtask(%s,%s)", taskID, title))
}

func (m *fakeMutator) MoveTask(_ context.Context, taskID, targetListID string) error {
	return m.record(fmt.Sprintf("move_task(%s,%s)", taskID, targetListID))
}

func (m *fakeMutator) ArchiveTask(_ context.Context, taskID string) error {
	return m.record(fmt.Sprintf("archive_task(%s)", taskID))
}

type fakeNotifier struct {
	notifications []string
}

func (n *fakeNotifier) SendNotification(_ context.Context, userID, message string) error {
	n.notifications = append(n.notifications, fmt.Sprintf("user:%s:%s", userID, message))

	return nil
}

func (n *fakeNotifier) NotifyChannel(_ context.Context, channelID, message string) error {
	n.notifications = append(n.notifications, fmt.Sprintf("channel:%s:%s", channelID, message))

	return nil
}

type fakeWebhookSender struct {
	urls     []string
	payloads []map[string]any
}

func (w *fakeWebhookSender) SendWebhook(_ context.Context, url string, payload map[string]any) error {
	w.urls = append(w.urls, url)
	w.payloads = append(w.payloads, payload)

	return nil
}

type executorFixture struct {
	executor *Executor
	store    *store.MemoryStore
	mutator  *fakeMutator
	notifier *fakeNotifier
	webhooks *fakeWebhookSender
}

func newExecutorFixture() *executorFixture {
	s := store.NewMemoryStore()
	s.SetStatuses(models.ListScope("list-1"), []*models.Status{
		{ID: "s-open", Name: "Open"},
		{ID: "s-done", Name: "Done"},
	})
	s.SetStatuses(models.ListScope("list-2"), []*models.Status{
		{ID: "s-triage", Name: "Triage"},
	})

	mutator := newFakeMutator()
	notifier := &fakeNotifier{}
	webhooks := &fakeWebhookSender{}

	return &executorFixture{
		executor: NewExecutor(slog.Default(), actions.NewRegistry(), s, mutator, notifier, webhooks),
		store:    s,
		mutator:  mutator,
		notifier: notifier,
		webhooks: webhooks,
	}
}

func testEvent() events.DomainEvent {
	return events.DomainEvent{
		ID:          "evt-1",
		Trigger:     models.TriggerStatusChanged,
		WorkspaceID: "ws-1",
		TaskID:      "task-1",
		ListID:      "list-1",
		Timestamp:   time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}

func ruleWith(specs ...models.ActionSpec) *models.Rule {
	return &models.Rule{
		ID:          "rule-1",
		WorkspaceID: "ws-1",
		Scope:       models.ListScope("list-1"),
		Trigger:     models.TriggerSpec{Type: models.TriggerStatusChanged},
		Actions:     specs,
		Enabled:     true,
	}
}

func TestExecuteAllRunsActionsInOrder(t *testing.T) {
	f := newExecutorFixture()

	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionAddTag, Config: map[string]any{"tag_id": "urgent"}},
		models.ActionSpec{ID: "a-2", Type: models.ActionSetPriority, Config: map[string]any{"priority": "high"}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	assert.NoError(t, results[1].Error)
	assert.Equal(t, []string{
		"add_tag(task-1,urgent)",
		"set_priority(task-1,high)",
	}, f.mutator.calls)
}

func TestExecuteAllContinuesPastFailure(t *testing.T) {
	f := newExecutorFixture()
	f.mutator.failOn["add_tag(task-1,urgent)"] = errors.New("tag service down")

	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionAddTag, Config: map[string]any{"tag_id": "urgent"}},
		models.ActionSpec{ID: "a-2", Type: models.ActionSetPriority, Config: map[string]any{"priority": "high"}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 2)
	assert.Error(t, results[0].Error)
	assert.NoError(t, results[1].Error)
	assert.Contains(t, f.mutator.calls, "set_priority(task-1,high)")
}

func TestExecuteAllScopeFollowsMove(t *testing.T) {
	f := newExecutorFixture()

	// s-triage only exists on list-2: the set_status after the move must be
	// validated against the move target, not the event's list.
	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionMoveTask, Config: map[string]any{"target_list_id": "list-2"}},
		models.ActionSpec{ID: "a-2", Type: models.ActionSetStatus, Config: map[string]any{"status_id": "s-triage"}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	assert.NoError(t, results[1].Error)
	assert.Equal(t, "list-1", results[0].ListID)
	assert.Equal(t, "list-2", results[1].ListID)
	assert.Contains(t, f.mutator.calls, "set_status(task-1,s-triage)")
}

func TestExecuteAllScopeFollowsMoveEvenWhenMoveFails(t *testing.T) {
	f := newExecutorFixture()
	f.mutator.failOn["move_task(task-1,list-2)"] = errors.New("move rejected")

	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionMoveTask, Config: map[string]any{"target_list_id": "list-2"}},
		models.ActionSpec{ID: "a-2", Type: models.ActionSetStatus, Config: map[string]any{"status_id": "s-triage"}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 2)
	assert.Error(t, results[0].Error)
	assert.NoError(t, results[1].Error)
	assert.Equal(t, "list-2", results[1].ListID)
}

func TestExecuteAllRejectsStatusOutsideScope(t *testing.T) {
	f := newExecutorFixture()

	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionSetStatus, Config: map[string]any{"status_id": "s-triage"}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
	assert.Empty(t, f.mutator.calls)
}

func TestExecuteAllRejectsInvalidConfig(t *testing.T) {
	f := newExecutorFixture()

	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionAddTag, Config: map[string]any{}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
	assert.Empty(t, f.mutator.calls)
}

func TestExecuteAllNotificationsAndWebhooks(t *testing.T) {
	f := newExecutorFixture()

	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionSendNotification, Config: map[string]any{
			"user_id": "u-1",
			"message": "task is done",
		}},
		models.ActionSpec{ID: "a-2", Type: models.ActionSendWebhook, Config: map[string]any{
			"url": "https://hooks.example.com/taskdeck",
		}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	assert.NoError(t, results[1].Error)
	assert.Equal(t, []string{"user:u-1:task is done"}, f.notifier.notifications)

	require.Len(t, f.webhooks.payloads, 1)
	assert.Equal(t, "https://hooks.example.com/taskdeck", f.webhooks.urls[0])
	assert.Equal(t, "task-1", f.webhooks.payloads[0]["task_id"])
	assert.Equal(t, "list-1", f.webhooks.payloads[0]["list_id"])
}

func TestExecuteAllResolvesDueDateFromEventTime(t *testing.T) {
	f := newExecutorFixture()

	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionSetDueDate, Config: map[string]any{
			"date_config": map[string]any{
				"date_type":  "days_after_trigger",
				"days_count": 3,
			},
		}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, []string{"set_due_date(task-1,2025-06-05)"}, f.mutator.calls)
}

func TestExecuteAllFoldsLegacyAssigneeConfig(t *testing.T) {
	f := newExecutorFixture()

	rule := ruleWith(
		models.ActionSpec{ID: "a-1", Type: models.ActionAddAssignee, Config: map[string]any{"user_id": "u-9"}},
	)

	results := f.executor.ExecuteAll(context.Background(), rule, testEvent())

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, []string{"add_assignees(task-1,[u-9])"}, f.mutator.calls)
}

package models

// ActionType enumerates the effects a rule can apply on match.
type ActionType string

const (
	ActionSetStatus          ActionType = "set_status"
	ActionSetPriority        ActionType = "set_priority"
	ActionAutoAssignUser     ActionType = "auto_assign_user"
	ActionAutoAssignTeam     ActionType = "auto_assign_team"
	ActionAddAssignee        ActionType = "add_assignee"
	ActionRemoveAssignee     ActionType = "remove_assignee"
	ActionRemoveAllAssignees ActionType = "remove_all_assignees"
	ActionAutoAddFollower    ActionType = "auto_add_follower"
	ActionAddFollower        ActionType = "add_follower"
	ActionAddTag             ActionType = "add_tag"
	ActionRemoveTag          ActionType = "remove_tag"
	ActionSetDueDate         ActionType = "set_due_date"
	ActionSetStartDate       ActionType = "set_start_date"
	ActionSendNotification   ActionType = "send_notification"
	ActionNotifyChannel      ActionType = "notify_channel"
	ActionCreateSubtask      ActionType = "create_subtask"
	ActionMoveTask           ActionType = "move_task"
	ActionArchiveTask        ActionType = "archive_task"
	ActionSendWebhook        ActionType = "send_webhook"
)

// ActionSpec is one declared effect. Config is the raw per-type field map as
// stored by the builder; the action registry decodes it into a typed config
// and validates required fields before dispatch.
type ActionSpec struct {
	ID     string         `json:"id"`
	Type   ActionType     `json:"type" validate:"required"`
	Config map[string]any `json:"config,omitempty"`
}

package models

// TriggerType enumerates the domain events a rule can listen for.
type TriggerType string

const (
	TriggerTaskCreated           TriggerType = "on_task_created"
	TriggerTaskUpdated           TriggerType = "on_task_updated"
	TriggerStatusChanged         TriggerType = "on_status_changed"
	TriggerCustomFieldChanged    TriggerType = "on_custom_field_changed"
	TriggerSchedule              TriggerType = "on_schedule"
	TriggerCommentAdded          TriggerType = "on_comment_added"
	TriggerChecklistsResolved    TriggerType = "on_all_checklists_resolved"
	TriggerSubtasksResolved      TriggerType = "on_all_subtasks_resolved"
	TriggerTaskAddedHere         TriggerType = "on_task_added_here"
	TriggerTaskMovedHere         TriggerType = "on_task_moved_here"
	TriggerDueDateChanged        TriggerType = "on_due_date_changed"
	TriggerStartDateChanged      TriggerType = "on_start_date_changed"
	TriggerDateBeforeAfter       TriggerType = "on_date_before_after"
	TriggerStartDateArrives      TriggerType = "on_start_date_arrives"
	TriggerDueDateArrives        TriggerType = "on_due_date_arrives"
	TriggerCustomDateArrives     TriggerType = "on_custom_date_arrives"
	TriggerTimeTracked           TriggerType = "on_time_tracked"
	TriggerAssigneeAdded         TriggerType = "on_assignee_added"
	TriggerAssigneeRemoved       TriggerType = "on_assignee_removed"
	TriggerNameChanged           TriggerType = "on_name_changed"
	TriggerPriorityChanged       TriggerType = "on_priority_changed"
	TriggerTagAdded              TriggerType = "on_tag_added"
	TriggerTagRemoved            TriggerType = "on_tag_removed"
	TriggerTaskTypeChanged       TriggerType = "on_task_type_changed"
	TriggerTaskLinked            TriggerType = "on_task_linked"
	TriggerTaskUnblocked         TriggerType = "on_task_unblocked"
)

var triggerTypes = map[TriggerType]bool{
	TriggerTaskCreated:        true,
	TriggerTaskUpdated:        true,
	TriggerStatusChanged:      true,
	TriggerCustomFieldChanged: true,
	TriggerSchedule:           true,
	TriggerCommentAdded:       true,
	TriggerChecklistsResolved: true,
	TriggerSubtasksResolved:   true,
	TriggerTaskAddedHere:      true,
	TriggerTaskMovedHere:      true,
	TriggerDueDateChanged:     true,
	TriggerStartDateChanged:   true,
	TriggerDateBeforeAfter:    true,
	TriggerStartDateArrives:   true,
	TriggerDueDateArrives:     true,
	TriggerCustomDateArrives:  true,
	TriggerTimeTracked:        true,
	TriggerAssigneeAdded:      true,
	TriggerAssigneeRemoved:    true,
	TriggerNameChanged:        true,
	TriggerPriorityChanged:    true,
	TriggerTagAdded:           true,
	TriggerTagRemoved:         true,
	TriggerTaskTypeChanged:    true,
	TriggerTaskLinked:         true,
	TriggerTaskUnblocked:      true,
}

func (t TriggerType) Valid() bool {
	return triggerTypes[t]
}

// TriggerConfig narrows a trigger beyond type equality. Only status-change and
// tag triggers carry one. A nil set means unconstrained; an empty non-nil set
// was explicitly cleared in the builder and matches nothing. The set fields
// must not carry omitempty: nil encodes as null and a cleared set as [], so
// the distinction survives a save/load round trip.
type TriggerConfig struct {
	FromStatusIDs []string `json:"from_status_ids"`
	ToStatusIDs   []string `json:"to_status_ids"`
	TagIDs        []string `json:"tag_ids"`

	// Legacy single-id fields kept as a deserialization compatibility path.
	FromStatusID string `json:"from_status_id,omitempty"`
	ToStatusID   string `json:"to_status_id,omitempty"`
}

// TriggerSpec is the event kind a rule listens for plus optional filters.
type TriggerSpec struct {
	Type   TriggerType    `json:"type" validate:"required"`
	Config *TriggerConfig `json:"config,omitempty"`
}

// Normalize folds the legacy scalar status fields into the set form. A scalar
// never overrides an already-present set.
func (c *TriggerConfig) Normalize() {
	if c == nil {
		return
	}

	if c.FromStatusIDs == nil && c.FromStatusID != "" {
		c.FromStatusIDs = []string{c.FromStatusID}
	}

	if c.ToStatusIDs == nil && c.ToStatusID != "" {
		c.ToStatusIDs = []string{c.ToStatusID}
	}

	c.FromStatusID = ""
	c.ToStatusID = ""
}

// HasConfig reports whether this trigger type supports a filter config.
func (t TriggerType) HasConfig() bool {
	return t == TriggerStatusChanged || t == TriggerTagAdded || t == TriggerTagRemoved
}

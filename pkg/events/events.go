// Package events defines the domain events the engine consumes and the
// outcome events it publishes.
package events

import (
	"time"

	"github.com/taskdeck/taskdeck/pkg/models"
)

type EventType string

// Topics.
const DomainTopic = "taskdeck.domain.events"
const OutcomeTopic = "taskdeck.rule.outcomes"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

// MaxDepth bounds automation-to-automation re-trigger chains. Events at or
// beyond this depth are dropped instead of evaluated.
const MaxDepth = 3

const (
	DomainEventType EventType = "domain.event"

	RuleMatchedEvent  EventType = "rule.matched"
	RuleExecutedEvent EventType = "rule.executed"
	RuleFailedEvent   EventType = "rule.failed"
)

type Event interface {
	GetType() EventType
}

// DomainEvent is one occurrence in the surrounding application: a task was
// created, a status changed, a tag was added. Depth counts how many
// automation passes produced it; events the host receives directly are depth
// zero.
type DomainEvent struct {
	ID          string             `json:"id"`
	Trigger     models.TriggerType `json:"trigger"`
	WorkspaceID string             `json:"workspace_id"`
	TaskID      string             `json:"task_id"`
	ListID      string             `json:"list_id"`
	ActorID     string             `json:"actor_id,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Depth       int                `json:"depth"`

	// Set for on_status_changed.
	PreviousStatusID string `json:"previous_status_id,omitempty"`
	NewStatusID      string `json:"new_status_id,omitempty"`

	// Set for on_tag_added / on_tag_removed.
	TagID string `json:"tag_id,omitempty"`
}

func (e DomainEvent) GetType() EventType {
	return DomainEventType
}

type BaseOutcome struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	RuleID      string    `json:"rule_id"`
	WorkspaceID string    `json:"workspace_id"`
	TaskID      string    `json:"task_id"`
	EventID     string    `json:"event_id"`
}

// RuleMatched is published when a rule's trigger and conditions both hold,
// before any action runs.
type RuleMatched struct {
	BaseOutcome
}

func (r RuleMatched) GetType() EventType {
	return RuleMatchedEvent
}

// RuleExecuted is published after a rule's action batch finishes, whether or
// not every action succeeded.
type RuleExecuted struct {
	BaseOutcome

	ActionsRun    int           `json:"actions_run"`
	ActionsFailed int           `json:"actions_failed"`
	Duration      time.Duration `json:"duration"`
}

func (r RuleExecuted) GetType() EventType {
	return RuleExecutedEvent
}

// RuleFailed is published when a rule could not be executed at all, e.g. its
// configuration was rejected or the task snapshot could not be loaded.
type RuleFailed struct {
	BaseOutcome

	Error string `json:"error"`
}

func (r RuleFailed) GetType() EventType {
	return RuleFailedEvent
}

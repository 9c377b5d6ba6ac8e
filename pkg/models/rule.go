package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrRuleNotFound = errors.New("rule not found")

// Rule is a single automation: when the trigger fires inside the rule's
// scope and the conditions hold, the actions run in declared order.
type Rule struct {
	ID          string       `json:"id"`
	WorkspaceID string       `json:"workspace_id" validate:"required"`
	Description string       `json:"description"`
	Scope       ScopeRef     `json:"scope"`
	Trigger     TriggerSpec  `json:"trigger"`
	Conditions  []Condition  `json:"conditions,omitempty"`
	Actions     []ActionSpec `json:"actions,omitempty"`
	Enabled     bool         `json:"enabled"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Legacy single-action shape, kept only as a deserialization
	// compatibility path. Normalize folds it into Actions.
	LegacyActionType   ActionType     `json:"action_type,omitempty"`
	LegacyActionConfig map[string]any `json:"action_config,omitempty"`
}

// Normalize converts legacy representations into the canonical form: exactly
// one ordered list of actions, trigger filters in the plural set form, and an
// id on every action so execution results can reference them.
func (r *Rule) Normalize() {
	if len(r.Actions) == 0 && r.LegacyActionType != "" {
		r.Actions = []ActionSpec{{
			Type:   r.LegacyActionType,
			Config: r.LegacyActionConfig,
		}}
	}

	r.LegacyActionType = ""
	r.LegacyActionConfig = nil

	r.Trigger.Config.Normalize()

	for i := range r.Actions {
		if r.Actions[i].ID == "" {
			r.Actions[i].ID = uuid.NewString()
		}
	}
}

// Validate checks the rule's configuration-time invariants. Evaluation never
// sees a rule that fails these checks.
func (r *Rule) Validate() error {
	if r.WorkspaceID == "" {
		return errors.New("rule requires a workspace id")
	}

	if err := r.Scope.Validate(r.WorkspaceID); err != nil {
		return err
	}

	if !r.Trigger.Type.Valid() {
		return fmt.Errorf("unknown trigger type %q", r.Trigger.Type)
	}

	if r.Trigger.Config != nil && !r.Trigger.Type.HasConfig() {
		return fmt.Errorf("trigger type %q does not accept a filter config", r.Trigger.Type)
	}

	for i, condition := range r.Conditions {
		if err := condition.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}

	if len(r.Actions) == 0 {
		return errors.New("rule requires at least one action")
	}

	return nil
}

// Duplicate returns an independent copy with a fresh id, bound to targetScope.
// Copies start disabled, mirroring how the builder creates them.
func (r *Rule) Duplicate(targetScope ScopeRef) *Rule {
	clone := &Rule{
		ID:          uuid.NewString(),
		WorkspaceID: r.WorkspaceID,
		Description: cloneDescription(r.Description),
		Scope:       targetScope,
		Trigger:     r.Trigger,
		Enabled:     false,
	}

	if r.Trigger.Config != nil {
		cfg := *r.Trigger.Config
		cfg.FromStatusIDs = cloneSet(r.Trigger.Config.FromStatusIDs)
		cfg.ToStatusIDs = cloneSet(r.Trigger.Config.ToStatusIDs)
		cfg.TagIDs = cloneSet(r.Trigger.Config.TagIDs)
		clone.Trigger.Config = &cfg
	}

	clone.Conditions = make([]Condition, len(r.Conditions))
	for i, condition := range r.Conditions {
		condition.Value = append(ConditionValue(nil), condition.Value...)
		clone.Conditions[i] = condition
	}

	clone.Actions = make([]ActionSpec, len(r.Actions))
	for i, action := range r.Actions {
		action.ID = uuid.NewString()

		if action.Config != nil {
			config := make(map[string]any, len(action.Config))
			for k, v := range action.Config {
				config[k] = v
			}

			action.Config = config
		}

		clone.Actions[i] = action
	}

	return clone
}

// cloneSet copies a filter set without collapsing a cleared (empty non-nil)
// set into the unconstrained nil form.
func cloneSet(set []string) []string {
	if set == nil {
		return nil
	}

	out := make([]string, len(set))
	copy(out, set)

	return out
}

func cloneDescription(original string) string {
	if original == "" {
		return "CLONE"
	}

	return "CLONE - " + original
}

package web

import "github.com/taskdeck/taskdeck/pkg/models"

type CreateRuleRequest struct {
	Description string              `json:"description"`
	Scope       models.ScopeRef     `json:"scope"       validate:"required"`
	Trigger     models.TriggerSpec  `json:"trigger"     validate:"required"`
	Conditions  []models.Condition  `json:"conditions"`
	Actions     []models.ActionSpec `json:"actions"     validate:"required,min=1,dive"`
	Enabled     bool                `json:"enabled"`
}

type UpdateRuleRequest struct {
	Description *string             `json:"description,omitempty"`
	Scope       *models.ScopeRef    `json:"scope,omitempty"`
	Trigger     *models.TriggerSpec `json:"trigger,omitempty"`
	Conditions  []models.Condition  `json:"conditions,omitempty"`
	Actions     []models.ActionSpec `json:"actions,omitempty"`
	Enabled     *bool               `json:"enabled,omitempty"`
}

type DuplicateRuleRequest struct {
	// Scope for the copy; defaults to the original rule's scope.
	Scope *models.ScopeRef `json:"scope,omitempty"`
}

// Package web provides the REST API for managing automation rules.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/taskdeck/taskdeck/pkg/actions"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/persistence"
	"github.com/taskdeck/taskdeck/pkg/rules"
)

type APIHandlers struct {
	repository  *rules.Repository
	filter      *rules.Filter
	registry    *actions.Registry
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(
	repository *rules.Repository,
	filter *rules.Filter,
	registry *actions.Registry,
	p persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		repository:  repository,
		filter:      filter,
		registry:    registry,
		persistence: p,
		validator:   validator,
	}
}

// GetRules lists a workspace's rules, optionally narrowed by a hierarchy
// filter (?scope_type=folder&scope_id=... or scope_id=all).
func (h *APIHandlers) GetRules(c fiber.Ctx) error {
	workspaceID := c.Params("workspaceId")
	if workspaceID == "" {
		return badRequest(c, "Workspace ID is required")
	}

	all, err := h.repository.FetchByWorkspace(c.Context(), workspaceID)
	if err != nil {
		return internalError(c, err)
	}

	scopeType := c.Query("scope_type")
	if scopeType == "" {
		return c.JSON(fiber.Map{"rules": all, "total_count": len(all)})
	}

	scopeID := c.Query("scope_id")
	if scopeID == "" {
		scopeID = rules.FilterAll
	}

	filtered, err := h.filter.FilterRules(c.Context(), all, models.ScopeType(scopeType), scopeID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"rules": filtered, "total_count": len(filtered)})
}

func (h *APIHandlers) GetRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	rule, err := h.repository.FetchByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	workspaceID := c.Params("workspaceId")
	if workspaceID == "" {
		return badRequest(c, "Workspace ID is required")
	}

	var req CreateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule := &models.Rule{
		WorkspaceID: workspaceID,
		Description: req.Description,
		Scope:       req.Scope,
		Trigger:     req.Trigger,
		Conditions:  req.Conditions,
		Actions:     req.Actions,
		Enabled:     req.Enabled,
	}

	if err := h.validateActionConfigs(rule.Actions); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.repository.Create(c.Context(), rule); err != nil {
		return handleRepositoryError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) UpdateRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	var req UpdateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.repository.FetchByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Scope != nil {
		existing.Scope = *req.Scope
	}

	if req.Trigger != nil {
		existing.Trigger = *req.Trigger
	}

	if req.Conditions != nil {
		existing.Conditions = req.Conditions
	}

	if req.Actions != nil {
		existing.Actions = req.Actions
	}

	if req.Enabled != nil {
		existing.Enabled = *req.Enabled
	}

	if err := h.validateActionConfigs(existing.Actions); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.repository.Update(c.Context(), existing); err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	if _, err := h.repository.FetchByID(c.Context(), id); err != nil {
		return handleRepositoryError(c, err)
	}

	if err := h.repository.Delete(c.Context(), id); err != nil {
		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ToggleRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	rule, err := h.repository.Toggle(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) DuplicateRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	var req DuplicateRuleRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	original, err := h.repository.FetchByID(c.Context(), id)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	targetScope := original.Scope
	if req.Scope != nil {
		targetScope = *req.Scope
	}

	clone, err := h.repository.Duplicate(c.Context(), id, targetScope)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(clone)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Taskdeck API is healthy"
	httpStatus := http.StatusOK

	err := h.persistence.HealthCheck(c.Context())
	if err != nil {
		status = "unhealthy"
		message = "Taskdeck API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) validateActionConfigs(specs []models.ActionSpec) error {
	for _, spec := range specs {
		if err := h.registry.ValidateConfig(spec); err != nil {
			return err
		}
	}

	return nil
}

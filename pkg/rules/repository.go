// Package rules provides the lifecycle operations on automation rules and
// the hierarchical query-time filter.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/persistence"
)

// Repository owns rule create/update/delete/toggle/duplicate on top of the
// persistence layer. Rules are normalized and validated on the way in, so the
// engine never evaluates a malformed rule.
type Repository struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewRepository(logger *slog.Logger, p persistence.Persistence) *Repository {
	return &Repository{
		logger:      logger.With("module", "rule_repository"),
		persistence: p,
		validator:   validator.New(),
	}
}

func (r *Repository) Create(ctx context.Context, rule *models.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	rule.CreatedAt = time.Now().UTC()

	if err := r.prepare(rule); err != nil {
		return err
	}

	if err := r.persistence.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	r.logger.Info("Rule created", "rule_id", rule.ID, "workspace_id", rule.WorkspaceID)

	return nil
}

func (r *Repository) Update(ctx context.Context, rule *models.Rule) error {
	existing, err := r.persistence.RuleByID(ctx, rule.ID)
	if err != nil {
		return err
	}

	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now().UTC()

	if err := r.prepare(rule); err != nil {
		return err
	}

	if err := r.persistence.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to update rule %s: %w", rule.ID, err)
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.persistence.DeleteRule(ctx, id)
}

func (r *Repository) FetchByID(ctx context.Context, id string) (*models.Rule, error) {
	return r.persistence.RuleByID(ctx, id)
}

func (r *Repository) FetchByWorkspace(ctx context.Context, workspaceID string) ([]*models.Rule, error) {
	return r.persistence.RulesByWorkspace(ctx, workspaceID)
}

// FetchByTrigger narrows a workspace's rules to those declaring the trigger
// type, enabled or not. The engine handles the enabled check so toggling is
// observable in its logs.
func (r *Repository) FetchByTrigger(ctx context.Context, workspaceID string, triggerType models.TriggerType) ([]*models.Rule, error) {
	all, err := r.persistence.RulesByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.Rule, 0, len(all))

	for _, rule := range all {
		if rule.Trigger.Type == triggerType {
			matched = append(matched, rule)
		}
	}

	return matched, nil
}

// Toggle flips a rule's enabled flag and returns the stored state.
func (r *Repository) Toggle(ctx context.Context, id string) (*models.Rule, error) {
	rule, err := r.persistence.RuleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.Enabled = !rule.Enabled
	rule.UpdatedAt = time.Now().UTC()

	if err := r.persistence.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to toggle rule %s: %w", id, err)
	}

	r.logger.Info("Rule toggled", "rule_id", id, "enabled", rule.Enabled)

	return rule, nil
}

// Duplicate stores an independent copy of the rule bound to targetScope. The
// copy starts disabled.
func (r *Repository) Duplicate(ctx context.Context, id string, targetScope models.ScopeRef) (*models.Rule, error) {
	original, err := r.persistence.RuleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	clone := original.Duplicate(targetScope)
	clone.CreatedAt = time.Now().UTC()
	clone.UpdatedAt = clone.CreatedAt

	if err := r.prepare(clone); err != nil {
		return nil, err
	}

	if err := r.persistence.SaveRule(ctx, clone); err != nil {
		return nil, fmt.Errorf("failed to save duplicated rule: %w", err)
	}

	r.logger.Info("Rule duplicated", "source_rule_id", id, "rule_id", clone.ID)

	return clone, nil
}

func (r *Repository) prepare(rule *models.Rule) error {
	rule.Normalize()

	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	if err := r.validator.Struct(rule); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	return nil
}

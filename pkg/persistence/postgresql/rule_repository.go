package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/pkg/models"
)

// RuleRepository handles rule-related database operations.
type RuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRuleRepository(db *sql.DB, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

const ruleColumns = `
	id
  , workspace_id
  , description
  , scope_type
  , scope_id
  , trigger_type
  , trigger_config
  , conditions
  , actions
  , enabled
  , created_at
  , updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RuleRepository) GetAll(ctx context.Context) ([]*models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	return r.queryRules(ctx, query)
}

func (r *RuleRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	return r.queryRules(ctx, query, workspaceID)
}

func (r *RuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]*models.Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	rules := make([]*models.Rule, 0)

	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rules = append(rules, rule)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

func (r *RuleRepository) GetByID(ctx context.Context, id string) (*models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE id = $1 AND deleted_at IS NULL
	`

	rule, err := r.scanRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule %s: %w", id, models.ErrRuleNotFound)
		}

		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	return rule, nil
}

func (r *RuleRepository) scanRule(row rowScanner) (*models.Rule, error) {
	var (
		rule          models.Rule
		triggerConfig sql.NullString
		conditions    []byte
		actions       []byte
	)

	err := row.Scan(
		&rule.ID,
		&rule.WorkspaceID,
		&rule.Description,
		&rule.Scope.Type,
		&rule.Scope.ID,
		&rule.Trigger.Type,
		&triggerConfig,
		&conditions,
		&actions,
		&rule.Enabled,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if triggerConfig.Valid {
		rule.Trigger.Config = &models.TriggerConfig{}
		if err := json.Unmarshal([]byte(triggerConfig.String), rule.Trigger.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger config: %w", err)
		}
	}

	if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
	}

	if err := json.Unmarshal(actions, &rule.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}

	rule.Normalize()

	return &rule, nil
}

func (r *RuleRepository) Save(ctx context.Context, rule *models.Rule) error {
	now := time.Now().UTC()

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	if rule.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate rule ID: %w", err)
		}

		rule.ID = id.String()
	}

	var triggerConfig any

	if rule.Trigger.Config != nil {
		raw, err := json.Marshal(rule.Trigger.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal trigger config: %w", err)
		}

		triggerConfig = raw
	}

	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	query := `
		INSERT INTO rules (
			id, workspace_id, description, scope_type, scope_id,
			trigger_type, trigger_config, conditions, actions, enabled,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			scope_type = EXCLUDED.scope_type,
			scope_id = EXCLUDED.scope_id,
			trigger_type = EXCLUDED.trigger_type,
			trigger_config = EXCLUDED.trigger_config,
			conditions = EXCLUDED.conditions,
			actions = EXCLUDED.actions,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID,
		rule.WorkspaceID,
		rule.Description,
		rule.Scope.Type,
		rule.Scope.ID,
		rule.Trigger.Type,
		triggerConfig,
		conditions,
		actions,
		rule.Enabled,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rule.ID, err)
	}

	return nil
}

// Delete soft deletes a rule by setting deleted_at.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE rules SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}

	return nil
}

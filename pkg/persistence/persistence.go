// Package persistence provides the storage abstraction for automation rules.
package persistence

import (
	"context"

	"github.com/taskdeck/taskdeck/pkg/models"
)

type Persistence interface {
	Rules(ctx context.Context) ([]*models.Rule, error)
	RulesByWorkspace(ctx context.Context, workspaceID string) ([]*models.Rule, error)
	RuleByID(ctx context.Context, id string) (*models.Rule, error)
	SaveRule(ctx context.Context, rule *models.Rule) error
	DeleteRule(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

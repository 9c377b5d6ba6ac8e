// Package store declares the read-only view of the surrounding application's
// entities the engine depends on. The application owns these entities; the
// engine only looks up foreign keys and snapshots through this interface.
package store

import (
	"context"
	"errors"

	"github.com/taskdeck/taskdeck/pkg/models"
)

var ErrNotFound = errors.New("entity not found")

type EntityStore interface {
	GetList(ctx context.Context, id string) (*models.List, error)
	GetFolder(ctx context.Context, id string) (*models.Folder, error)
	GetSpace(ctx context.Context, id string) (*models.Space, error)
	GetTask(ctx context.Context, id string) (*models.TaskSnapshot, error)
	GetStatusesForScope(ctx context.Context, scope models.ScopeRef) ([]*models.Status, error)
	GetTags(ctx context.Context, workspaceID string) ([]*models.Tag, error)
	GetWorkspaceMembers(ctx context.Context, workspaceID string) ([]*models.Member, error)
}

// Package postgresql provides PostgreSQL persistence for automation rules.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the postgres driver.
	_ "github.com/lib/pq"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/persistence/sqlbase"
)

type Persistence struct {
	db       *sql.DB
	logger   *slog.Logger
	ruleRepo *RuleRepository
}

// NewPersistence connects, runs migrations and returns a ready store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:       database,
		logger:   logger,
		ruleRepo: NewRuleRepository(database, logger),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

func (p *Persistence) Rules(ctx context.Context) ([]*models.Rule, error) {
	return p.ruleRepo.GetAll(ctx)
}

func (p *Persistence) RulesByWorkspace(ctx context.Context, workspaceID string) ([]*models.Rule, error) {
	return p.ruleRepo.GetByWorkspace(ctx, workspaceID)
}

func (p *Persistence) RuleByID(ctx context.Context, id string) (*models.Rule, error) {
	return p.ruleRepo.GetByID(ctx, id)
}

func (p *Persistence) SaveRule(ctx context.Context, rule *models.Rule) error {
	return p.ruleRepo.Save(ctx, rule)
}

func (p *Persistence) DeleteRule(ctx context.Context, id string) error {
	return p.ruleRepo.Delete(ctx, id)
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

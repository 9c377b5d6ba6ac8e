package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/persistence/postgresql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"rules", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("taskdeck_test"),
			postgres.WithUsername("taskdeck"),
			postgres.WithPassword("taskdeck"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	persistence, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = persistence.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return persistence, ctx, databaseURL
}

func testRule(workspaceID string) *models.Rule {
	return &models.Rule{
		WorkspaceID: workspaceID,
		Description: "Escalate finished urgent work",
		Scope:       models.ListScope("list-1"),
		Trigger: models.TriggerSpec{
			Type:   models.TriggerStatusChanged,
			Config: &models.TriggerConfig{ToStatusIDs: []string{"done"}},
		},
		Conditions: []models.Condition{
			{Field: models.FieldPriority, Operator: models.OpAnyOf, Value: models.ConditionValue{"high", "urgent"}},
		},
		Actions: []models.ActionSpec{
			{ID: "a-1", Type: models.ActionAddTag, Config: map[string]any{"tag_id": "needs-review"}},
		},
		Enabled: true,
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'rules')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "rules table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestNewPersistence_SaveAndRetrieveRule(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	rule := testRule("ws-1")

	err := p.SaveRule(ctx, rule)
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	assert.False(t, rule.CreatedAt.IsZero())
	assert.False(t, rule.UpdatedAt.IsZero())

	retrieved, err := p.RuleByID(ctx, rule.ID)
	require.NoError(t, err)

	assert.Equal(t, rule.ID, retrieved.ID)
	assert.Equal(t, rule.WorkspaceID, retrieved.WorkspaceID)
	assert.Equal(t, rule.Scope, retrieved.Scope)
	assert.Equal(t, rule.Trigger.Type, retrieved.Trigger.Type)
	require.NotNil(t, retrieved.Trigger.Config)
	assert.Equal(t, []string{"done"}, retrieved.Trigger.Config.ToStatusIDs)
	require.Len(t, retrieved.Conditions, 1)
	assert.Equal(t, models.ConditionValue{"high", "urgent"}, retrieved.Conditions[0].Value)
	require.Len(t, retrieved.Actions, 1)
	assert.Equal(t, "needs-review", retrieved.Actions[0].Config["tag_id"])
	assert.True(t, retrieved.Enabled)

	_, err = p.RuleByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrRuleNotFound)
}

func TestNewPersistence_UpdateRule(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	rule := testRule("ws-1")
	require.NoError(t, p.SaveRule(ctx, rule))

	initialUpdatedAt := rule.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	rule.Description = "Escalate everything"
	rule.Enabled = false
	require.NoError(t, p.SaveRule(ctx, rule))

	retrieved, err := p.RuleByID(ctx, rule.ID)
	require.NoError(t, err)

	assert.Equal(t, "Escalate everything", retrieved.Description)
	assert.False(t, retrieved.Enabled)
	assert.True(t, retrieved.UpdatedAt.After(initialUpdatedAt))
}

func TestNewPersistence_RulesByWorkspace(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	require.NoError(t, p.SaveRule(ctx, testRule("ws-1")))
	require.NoError(t, p.SaveRule(ctx, testRule("ws-1")))
	require.NoError(t, p.SaveRule(ctx, testRule("ws-2")))

	rules, err := p.RulesByWorkspace(ctx, "ws-1")
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	all, err := p.Rules(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNewPersistence_DeleteRule(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	rule := testRule("ws-1")
	require.NoError(t, p.SaveRule(ctx, rule))

	require.NoError(t, p.DeleteRule(ctx, rule.ID))

	_, err := p.RuleByID(ctx, rule.ID)
	assert.ErrorIs(t, err, models.ErrRuleNotFound)

	// Soft-deleted rules fall out of listings.
	rules, err := p.RulesByWorkspace(ctx, "ws-1")
	require.NoError(t, err)
	assert.Empty(t, rules)

	// Deleting a non-existent rule is not an error.
	assert.NoError(t, p.DeleteRule(ctx, uuid.NewString()))

	// Re-saving with the same id resurrects the rule.
	require.NoError(t, p.SaveRule(ctx, rule))

	retrieved, err := p.RuleByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, retrieved.ID)
}

func TestNewPersistence_NullTriggerConfig(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	rule := testRule("ws-1")
	rule.Trigger = models.TriggerSpec{Type: models.TriggerTaskCreated}
	rule.Conditions = nil

	require.NoError(t, p.SaveRule(ctx, rule))

	retrieved, err := p.RuleByID(ctx, rule.ID)
	require.NoError(t, err)

	assert.Nil(t, retrieved.Trigger.Config)
	assert.Empty(t, retrieved.Conditions)
}

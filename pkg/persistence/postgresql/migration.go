package postgresql

// migrations returns the ordered schema migrations for the rules store.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS rules (
				id TEXT PRIMARY KEY,
				workspace_id TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				scope_type TEXT NOT NULL,
				scope_id TEXT NOT NULL,
				trigger_type TEXT NOT NULL,
				trigger_config JSONB,
				conditions JSONB NOT NULL DEFAULT '[]',
				actions JSONB NOT NULL DEFAULT '[]',
				enabled BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_rules_workspace
				ON rules (workspace_id)
				WHERE deleted_at IS NULL;

			CREATE INDEX IF NOT EXISTS idx_rules_workspace_trigger
				ON rules (workspace_id, trigger_type)
				WHERE deleted_at IS NULL;
		`,
	}
}

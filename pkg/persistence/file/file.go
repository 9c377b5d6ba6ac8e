// Package file provides file-based rule persistence, one JSON document per
// rule.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/taskdeck/taskdeck/pkg/models"
	"github.com/taskdeck/taskdeck/pkg/persistence"
)

type Persistence struct {
	root string
}

func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (fp *Persistence) rulesDir() string {
	return path.Join(fp.root, "rules")
}

func (fp *Persistence) Rules(ctx context.Context) ([]*models.Rule, error) {
	jsonFiles, err := fs.Glob(os.DirFS(fp.rulesDir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list rule files: %w", err)
	}

	rules := make([]*models.Rule, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		ruleID := strings.TrimSuffix(file, ".json")

		rule, err := fp.RuleByID(ctx, ruleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load rule %s: %w", ruleID, err)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

func (fp *Persistence) RulesByWorkspace(ctx context.Context, workspaceID string) ([]*models.Rule, error) {
	all, err := fp.Rules(ctx)
	if err != nil {
		return nil, err
	}

	rules := make([]*models.Rule, 0, len(all))

	for _, rule := range all {
		if rule.WorkspaceID == workspaceID {
			rules = append(rules, rule)
		}
	}

	return rules, nil
}

func (fp *Persistence) RuleByID(_ context.Context, id string) (*models.Rule, error) {
	filePath := filepath.Clean(path.Join(fp.rulesDir(), id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("rule %s: %w", id, models.ErrRuleNotFound)
		}

		return nil, fmt.Errorf("failed to fetch rule %s: %w", id, err)
	}

	var rule models.Rule

	err = json.Unmarshal(body, &rule)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule %s: %w", id, err)
	}

	// Stored rules may predate the multi-action format.
	rule.Normalize()

	return &rule, nil
}

func (fp *Persistence) SaveRule(_ context.Context, rule *models.Rule) error {
	err := os.MkdirAll(fp.rulesDir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}

	data, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rule %s: %w", rule.ID, err)
	}

	filePath := path.Join(fp.rulesDir(), rule.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

func (fp *Persistence) DeleteRule(_ context.Context, id string) error {
	filePath := path.Join(fp.rulesDir(), id+".json")

	err := os.Remove(filePath)
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}

	return nil
}

func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

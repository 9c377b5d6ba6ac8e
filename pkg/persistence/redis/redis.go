// Package redis provides Redis-backed rule persistence, one JSON value per
// rule with per-workspace index sets.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/taskdeck/taskdeck/pkg/models"
)

const (
	ruleKeyPrefix     = "taskdeck:rule:"
	ruleIndexKey      = "taskdeck:rules"
	workspaceIndexFmt = "taskdeck:workspace:%s:rules"
)

type Persistence struct {
	client *redis.Client
}

func NewPersistence(redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Persistence{client: redis.NewClient(opts)}, nil
}

func ruleKey(id string) string {
	return ruleKeyPrefix + id
}

func workspaceKey(workspaceID string) string {
	return fmt.Sprintf(workspaceIndexFmt, workspaceID)
}

func (p *Persistence) Rules(ctx context.Context) ([]*models.Rule, error) {
	ids, err := p.client.SMembers(ctx, ruleIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rule ids: %w", err)
	}

	return p.fetchRules(ctx, ids)
}

func (p *Persistence) RulesByWorkspace(ctx context.Context, workspaceID string) ([]*models.Rule, error) {
	ids, err := p.client.SMembers(ctx, workspaceKey(workspaceID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rule ids for workspace %s: %w", workspaceID, err)
	}

	return p.fetchRules(ctx, ids)
}

func (p *Persistence) fetchRules(ctx context.Context, ids []string) ([]*models.Rule, error) {
	rules := make([]*models.Rule, 0, len(ids))

	if len(ids) == 0 {
		return rules, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ruleKey(id)
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Index entry without a value; the rule was deleted mid-scan.
			continue
		}

		rule, err := decodeRule(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode rule %s: %w", ids[i], err)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

func (p *Persistence) RuleByID(ctx context.Context, id string) (*models.Rule, error) {
	raw, err := p.client.Get(ctx, ruleKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("rule %s: %w", id, models.ErrRuleNotFound)
		}

		return nil, fmt.Errorf("failed to fetch rule %s: %w", id, err)
	}

	rule, err := decodeRule(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rule %s: %w", id, err)
	}

	return rule, nil
}

func (p *Persistence) SaveRule(ctx context.Context, rule *models.Rule) error {
	data, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to marshal rule %s: %w", rule.ID, err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, ruleKey(rule.ID), data, 0)
	pipe.SAdd(ctx, ruleIndexKey, rule.ID)
	pipe.SAdd(ctx, workspaceKey(rule.WorkspaceID), rule.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rule.ID, err)
	}

	return nil
}

func (p *Persistence) DeleteRule(ctx context.Context, id string) error {
	rule, err := p.RuleByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrRuleNotFound) {
			return nil
		}

		return err
	}

	pipe := p.client.TxPipeline()
	pipe.Del(ctx, ruleKey(id))
	pipe.SRem(ctx, ruleIndexKey, id)
	pipe.SRem(ctx, workspaceKey(rule.WorkspaceID), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func decodeRule(raw string) (*models.Rule, error) {
	var rule models.Rule

	if err := json.NewDecoder(strings.NewReader(raw)).Decode(&rule); err != nil {
		return nil, err
	}

	rule.Normalize()

	return &rule, nil
}

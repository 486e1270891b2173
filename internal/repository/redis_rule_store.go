package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"PerpScan/internal/domain/models"
	drepo "PerpScan/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisRuleStore persists the alert rule list as a single JSON value under
// one key.
type RedisRuleStore struct {
	cli *redis.Client
	key string
}

// RedisConfig holds connection settings for the redis-backed rule store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisRuleStore creates a redis-backed rule store.
func NewRedisRuleStore(cfg RedisConfig, key string) drepo.RuleStore {
	cli := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisRuleStore{cli: cli, key: key}
}

// Load reads the whole rule list. A missing key is an empty list.
func (s *RedisRuleStore) Load(ctx context.Context) ([]models.AlertRule, error) {
	b, err := s.cli.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var rules []models.AlertRule
	if err := json.Unmarshal(b, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return rules, nil
}

// Save overwrites the whole rule list.
func (s *RedisRuleStore) Save(ctx context.Context, rules []models.AlertRule) error {
	b, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	if err := s.cli.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"PerpScan/internal/domain/models"
	drepo "PerpScan/internal/domain/repository"
)

// FileRuleStore persists the alert rule list as a single JSON file.
// Save writes to a temp file and renames it so a crashed write never leaves
// a truncated rule file behind.
type FileRuleStore struct {
	path string
}

// NewFileRuleStore creates a file-backed rule store.
func NewFileRuleStore(path string) drepo.RuleStore {
	return &FileRuleStore{path: path}
}

// Load reads the whole rule list. A missing file is an empty list, not an
// error.
func (s *FileRuleStore) Load(_ context.Context) ([]models.AlertRule, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
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
func (s *FileRuleStore) Save(_ context.Context, rules []models.AlertRule) error {
	b, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".rules-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write rules: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close rules: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace rules: %w", err)
	}
	return nil
}

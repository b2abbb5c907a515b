package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/daovote/internal/domain/config"
)

// RemoveConfigParams contains parameters for removing configuration
type RemoveConfigParams struct {
	Key string
}

// RemoveConfigResult contains the result of removing configuration
type RemoveConfigResult struct {
	UpdatedConfig *config.LocalConfig `json:"config"`
	ConfigPath    string              `json:"configPath"`
	Key           config.ConfigKey    `json:"key"`
	RemovedValue  string              `json:"removedValue"`
	// FileRemoved is set when no keys are left and config.local.json was deleted
	FileRemoved bool `json:"fileRemoved"`
}

// RemoveConfig clears a default sender or state backend
type RemoveConfig struct {
	store LocalConfigStore
}

// NewRemoveConfig creates a new RemoveConfig use case
func NewRemoveConfig(store LocalConfigStore) *RemoveConfig {
	return &RemoveConfig{
		store: store,
	}
}

// Run clears key. Removing a key that is not set is not an error.
func (uc *RemoveConfig) Run(ctx context.Context, params RemoveConfigParams) (*RemoveConfigResult, error) {
	key, err := validateConfigKey(params.Key)
	if err != nil {
		return nil, err
	}
	if !uc.store.Exists() {
		return nil, fmt.Errorf("no config file found at %s", relativeToCwd(uc.store.GetPath()))
	}

	cfg, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	result := &RemoveConfigResult{Key: key, ConfigPath: uc.store.GetPath()}
	switch key {
	case config.ConfigKeyFrom:
		result.RemovedValue, cfg.From = cfg.From, ""
	case config.ConfigKeyStore:
		result.RemovedValue, cfg.Store = cfg.Store, ""
	}
	if result.RemovedValue == "" {
		result.UpdatedConfig = cfg
		return result, nil
	}

	if err := uc.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	result.UpdatedConfig = cfg
	result.FileRemoved = cfg.IsEmpty()
	return result, nil
}

func relativeToCwd(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(cwd, path); err == nil {
		return rel
	}
	return path
}

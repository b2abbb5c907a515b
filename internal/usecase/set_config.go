package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/daovote/internal/domain/config"
)

// StoreBackends lists the values accepted for the store key
var StoreBackends = []string{"file", "badger", "sqlite"}

// SetConfigParams contains parameters for setting configuration
type SetConfigParams struct {
	Key   string
	Value string
}

// SetConfigResult contains the result of setting configuration
type SetConfigResult struct {
	UpdatedConfig *config.LocalConfig `json:"config"`
	ConfigPath    string              `json:"configPath"`
	Key           config.ConfigKey    `json:"key"`
	Value         string              `json:"value"`
	// set when key is from
	SenderAddress *common.Address `json:"senderAddress,omitempty"`
}

// SetConfig validates and stores a default sender or state backend
type SetConfig struct {
	store   LocalConfigStore
	senders SenderResolver
}

// NewSetConfig creates a new SetConfig use case
func NewSetConfig(store LocalConfigStore, senders SenderResolver) *SetConfig {
	return &SetConfig{
		store:   store,
		senders: senders,
	}
}

// Run checks the value against daovote.toml senders or the known backends
// before writing it, so a bad default never reaches later commands.
func (uc *SetConfig) Run(ctx context.Context, params SetConfigParams) (*SetConfigResult, error) {
	key, err := validateConfigKey(params.Key)
	if err != nil {
		return nil, err
	}
	value := strings.TrimSpace(params.Value)
	if value == "" {
		return nil, fmt.Errorf("empty value for %s: use `daovote config remove %s` to clear it", key, key)
	}

	cfg, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	result := &SetConfigResult{Key: key}
	switch key {
	case config.ConfigKeyFrom:
		sender, err := uc.senders.Resolve(value)
		if err != nil {
			return nil, err
		}
		cfg.From = value
		result.SenderAddress = &sender.Address
	case config.ConfigKeyStore:
		value = strings.ToLower(value)
		if !slices.Contains(StoreBackends, value) {
			return nil, fmt.Errorf("unknown store backend %q (available: %s)", value, strings.Join(StoreBackends, ", "))
		}
		cfg.Store = value
	}

	if err := uc.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	result.UpdatedConfig = cfg
	result.ConfigPath = uc.store.GetPath()
	result.Value = value
	return result, nil
}

func validateConfigKey(raw string) (config.ConfigKey, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if !config.IsValidConfigKey(key) {
		validKeys := lo.Map(config.ValidConfigKeys(), func(k config.ConfigKey, _ int) string {
			if k == config.ConfigKeyFrom {
				return string(k) + " (sender)"
			}
			return string(k)
		})
		return "", fmt.Errorf("unknown config key %q (available: %s)", raw, strings.Join(validKeys, ", "))
	}
	return config.NormalizeConfigKey(key), nil
}

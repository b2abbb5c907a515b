package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain/config"
)

// EffectiveSettings are the values commands run with once flags, env,
// config.local.json and daovote.toml have been merged
type EffectiveSettings struct {
	From          string          `json:"from,omitempty"`
	SenderAddress *common.Address `json:"senderAddress,omitempty"`
	SenderError   string          `json:"senderError,omitempty"`
	Store         string          `json:"store"`
	DataDir       string          `json:"dataDir"`
}

// ShowConfigResult pairs the stored local config with the effective settings
type ShowConfigResult struct {
	Config       *config.LocalConfig `json:"config"`
	ConfigPath   string              `json:"configPath"`
	Exists       bool                `json:"exists"`
	ConfigSource string              `json:"configSource,omitempty"`
	Effective    EffectiveSettings   `json:"effective"`
}

// ShowConfig reports the local config file and what it resolves to
type ShowConfig struct {
	store   LocalConfigStore
	runtime *config.RuntimeConfig
	senders SenderResolver
}

// NewShowConfig creates a new ShowConfig use case
func NewShowConfig(store LocalConfigStore, runtime *config.RuntimeConfig, senders SenderResolver) *ShowConfig {
	return &ShowConfig{
		store:   store,
		runtime: runtime,
		senders: senders,
	}
}

// Run loads config.local.json and resolves the sender it selects. An
// unresolvable sender is reported in the result rather than failing.
func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	cfg, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	effective := EffectiveSettings{
		From:    uc.runtime.From,
		Store:   uc.runtime.Store.Backend,
		DataDir: uc.runtime.DataDir,
	}
	if effective.From != "" {
		if sender, err := uc.senders.Resolve(effective.From); err != nil {
			effective.SenderError = err.Error()
		} else {
			effective.SenderAddress = &sender.Address
		}
	}

	return &ShowConfigResult{
		Config:       cfg,
		ConfigPath:   uc.store.GetPath(),
		Exists:       uc.store.Exists(),
		ConfigSource: uc.runtime.ConfigSource,
		Effective:    effective,
	}, nil
}

package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// Sender name or address given with --from
	From string

	// Config source tracking
	ConfigSource string // "daovote.toml" or "" when running without a project file

	// Resolved configurations
	Store      StoreConfig
	Governance GovernanceDefaults
	API        APIConfig
	Senders    map[string]SenderConfig
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Backend string `toml:"backend"`
	DataDir string `toml:"data_dir,omitempty"`
}

// GovernanceDefaults seeds `daovote init` when flags are omitted
type GovernanceDefaults struct {
	Chairman        string `toml:"chairman,omitempty"`
	Token           string `toml:"token,omitempty"`
	MinimumQuorum   string `toml:"minimum_quorum,omitempty"`
	MinimumDuration string `toml:"minimum_duration,omitempty"`
	TokenName       string `toml:"token_name,omitempty"`
	TokenSymbol     string `toml:"token_symbol,omitempty"`
	TokenSupply     string `toml:"token_supply,omitempty"`
}

// APIConfig configures `daovote serve`
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ProjectFile is the raw daovote.toml layout
type ProjectFile struct {
	Store      StoreConfig             `toml:"store"`
	Governance GovernanceDefaults      `toml:"governance"`
	API        APIConfig               `toml:"api"`
	Senders    map[string]SenderConfig `toml:"senders"`
}

package config

// LocalConfig represents the local daovote configuration in .daovote/config.local.json
type LocalConfig struct {
	From  string `json:"from,omitempty"`
	Store string `json:"store,omitempty"`
}

// IsEmpty reports whether no key is set
func (c *LocalConfig) IsEmpty() bool {
	return c.From == "" && c.Store == ""
}

// ConfigKey represents a configuration key
type ConfigKey string

const (
	ConfigKeyFrom  ConfigKey = "from"
	ConfigKeyStore ConfigKey = "store"
)

// DefaultLocalConfig returns the default local configuration
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{}
}

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyFrom,
		ConfigKeyStore,
	}
}

// IsValidConfigKey checks if a key is valid
func IsValidConfigKey(key string) bool {
	for _, validKey := range ValidConfigKeys() {
		if string(validKey) == key || (key == "sender" && validKey == ConfigKeyFrom) {
			return true
		}
	}
	return false
}

// NormalizeConfigKey normalizes a config key (e.g., "sender" -> "from")
func NormalizeConfigKey(key string) ConfigKey {
	if key == "sender" {
		return ConfigKeyFrom
	}
	return ConfigKey(key)
}

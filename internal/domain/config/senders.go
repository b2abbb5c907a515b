package config

import "github.com/ethereum/go-ethereum/common"

// SenderConfig is a named account from [senders.<name>]. Either the private
// key or the address must be set.
type SenderConfig struct {
	PrivateKey string `toml:"private_key,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
	Address    string `toml:"address,omitempty"`
}

// Sender is a resolved sender
type Sender struct {
	Name    string
	Address common.Address
}

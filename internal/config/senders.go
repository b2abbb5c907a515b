package config

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/daovote/internal/domain/config"
)

// SendersManager resolves --from values against the [senders] table
type SendersManager struct {
	senders map[string]config.SenderConfig
	from    string
}

func NewSendersManager(cfg *config.RuntimeConfig) *SendersManager {
	return &SendersManager{
		senders: cfg.Senders,
		from:    cfg.From,
	}
}

// Default resolves the sender selected with --from or the local config
func (m *SendersManager) Default() (*config.Sender, error) {
	if m.from == "" {
		return nil, fmt.Errorf("no sender selected: pass --from or run `daovote config set from <name>`")
	}
	return m.Resolve(m.from)
}

// Resolve accepts a configured sender name or a hex address
func (m *SendersManager) Resolve(nameOrAddress string) (*config.Sender, error) {
	if sender, ok := m.senders[nameOrAddress]; ok {
		address, err := senderAddress(sender)
		if err != nil {
			return nil, fmt.Errorf("sender %s: %w", nameOrAddress, err)
		}
		return &config.Sender{Name: nameOrAddress, Address: address}, nil
	}

	if common.IsHexAddress(nameOrAddress) {
		address := common.HexToAddress(nameOrAddress)
		return &config.Sender{Name: address.Hex(), Address: address}, nil
	}

	known := m.Names()
	if len(known) == 0 {
		return nil, fmt.Errorf("unknown sender %q: not an address and no senders are configured in daovote.toml", nameOrAddress)
	}
	return nil, fmt.Errorf("unknown sender %q (configured: %s)", nameOrAddress, strings.Join(known, ", "))
}

// Names returns the configured sender names in order
func (m *SendersManager) Names() []string {
	names := make([]string, 0, len(m.senders))
	for name := range m.senders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// senderAddress derives the address from the private key when present and
// checks it against an explicit address
func senderAddress(sender config.SenderConfig) (common.Address, error) {
	if sender.PrivateKey == "" {
		if !common.IsHexAddress(sender.Address) {
			return common.Address{}, fmt.Errorf("either private_key or a valid address is required")
		}
		return common.HexToAddress(sender.Address), nil
	}

	derived, err := parsePrivateKey(sender.PrivateKey)
	if err != nil {
		return common.Address{}, err
	}
	if sender.Address != "" && common.HexToAddress(sender.Address) != derived {
		return common.Address{}, fmt.Errorf("address %s does not match private key (%s)", sender.Address, derived.Hex())
	}
	return derived, nil
}

// parsePrivateKey parses a private key string and returns the address
func parsePrivateKey(privateKeyHex string) (common.Address, error) {
	// Remove 0x prefix if present
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	privateKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode private key: %w", err)
	}

	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to create private key: %w", err)
	}

	publicKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, fmt.Errorf("failed to get public key")
	}
	return crypto.PubkeyToAddress(*publicKeyECDSA), nil
}

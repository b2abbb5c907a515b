package chain

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/governance"
)

// MaxCallDepth bounds nested calls, as the EVM does
const MaxCallDepth = 1024

var (
	// ErrCallDepth is returned when nested calls exceed MaxCallDepth
	ErrCallDepth = errors.New("max call depth exceeded")

	// ErrNotAToken is returned when a token lookup resolves to something else
	ErrNotAToken = errors.New("no token at address")
)

// Contract is anything that can receive call data on the host
type Contract interface {
	Call(ctx context.Context, caller common.Address, data []byte) ([]byte, error)
}

// Host is an in-process stand-in for a chain: contracts registered by
// address, reached through low-level calls. It is not safe for concurrent use.
type Host struct {
	contracts map[common.Address]Contract
	depth     int
}

// NewHost creates an empty host
func NewHost() *Host {
	return &Host{contracts: make(map[common.Address]Contract)}
}

// Register places contract at address, replacing whatever was there
func (h *Host) Register(address common.Address, contract Contract) {
	h.contracts[address] = contract
}

// Contract returns the contract at address
func (h *Host) Contract(address common.Address) (Contract, bool) {
	c, ok := h.contracts[address]
	return c, ok
}

// Addresses lists registered addresses in byte order
func (h *Host) Addresses() []common.Address {
	addrs := make([]common.Address, 0, len(h.contracts))
	for addr := range h.contracts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Cmp(addrs[j]) < 0
	})
	return addrs
}

// Call delivers data from from to the contract at to. An address with no
// contract accepts any call and returns nothing.
func (h *Host) Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	contract, ok := h.contracts[to]
	if !ok {
		return nil, nil
	}
	if h.depth >= MaxCallDepth {
		return nil, ErrCallDepth
	}
	h.depth++
	defer func() { h.depth-- }()
	return contract.Call(ctx, from, data)
}

// Token resolves the ERC-20 registered at address
func (h *Host) Token(address common.Address) (governance.Token, error) {
	contract, ok := h.contracts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAToken, address.Hex())
	}
	token, ok := contract.(governance.Token)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAToken, address.Hex())
	}
	return token, nil
}

package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenLedger is the persisted state of a sandbox ERC-20 token
type TokenLedger struct {
	Name       string                                        `json:"name"`
	Symbol     string                                        `json:"symbol"`
	Owner      common.Address                                `json:"owner"`
	Balances   map[common.Address]*big.Int                   `json:"balances"`
	Allowances map[common.Address]map[common.Address]*big.Int `json:"allowances"`
}

// Snapshot is everything persisted between invocations: the governance
// contract, its address on the host, and the sandbox token ledgers.
type Snapshot struct {
	GovernanceAddress common.Address                  `json:"governanceAddress"`
	Governance        *GovernanceState                `json:"governance"`
	Tokens            map[common.Address]*TokenLedger `json:"tokens"`
}

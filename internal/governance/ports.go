package governance

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Token is the subset of an ERC-20 ledger the engine consumes
type Token interface {
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount *big.Int) error
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// Host resolves collaborators by address and performs low-level calls
type Host interface {
	Token(address common.Address) (Token, error)
	Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error)
}

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

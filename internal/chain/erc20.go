package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the sender's balance
	ErrInsufficientBalance = errors.New("ERC20: transfer amount exceeds balance")

	// ErrInsufficientAllowance is returned when a transferFrom exceeds the approved amount
	ErrInsufficientAllowance = errors.New("ERC20: insufficient allowance")

	// ErrNotTokenOwner is returned when minting from an address other than the owner
	ErrNotTokenOwner = errors.New("ERC20: caller is not the owner")
)

// ERC20ABIJSON covers the token methods reachable through call data
const ERC20ABIJSON = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view",
	 "inputs":[],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"mint","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[]}
]`

// ERC20ABI is the parsed token ABI
var ERC20ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(ERC20ABIJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid ERC20 ABI: %v", err))
	}
	return parsed
}()

// ERC20 is a sandbox fungible token backed by a TokenLedger
type ERC20 struct {
	ledger *models.TokenLedger
}

// NewERC20 wraps ledger, initializing its maps when empty
func NewERC20(ledger *models.TokenLedger) *ERC20 {
	if ledger.Balances == nil {
		ledger.Balances = make(map[common.Address]*big.Int)
	}
	if ledger.Allowances == nil {
		ledger.Allowances = make(map[common.Address]map[common.Address]*big.Int)
	}
	return &ERC20{ledger: ledger}
}

// Ledger exposes the backing state for persistence
func (t *ERC20) Ledger() *models.TokenLedger { return t.ledger }

func (t *ERC20) Name() string   { return t.ledger.Name }
func (t *ERC20) Symbol() string { return t.ledger.Symbol }

func (t *ERC20) balance(owner common.Address) *big.Int {
	if b, ok := t.ledger.Balances[owner]; ok {
		return b
	}
	return new(big.Int)
}

// BalanceOf returns owner's balance
func (t *ERC20) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	return new(big.Int).Set(t.balance(owner)), nil
}

// TotalSupply sums all balances
func (t *ERC20) TotalSupply() *big.Int {
	total := new(big.Int)
	for _, b := range t.ledger.Balances {
		total.Add(total, b)
	}
	return total
}

// Allowance returns how much spender may move on owner's behalf
func (t *ERC20) Allowance(owner, spender common.Address) *big.Int {
	if a, ok := t.ledger.Allowances[owner][spender]; ok {
		return new(big.Int).Set(a)
	}
	return new(big.Int)
}

// Mint creates amount tokens for to. Only the ledger owner may mint.
func (t *ERC20) Mint(caller, to common.Address, amount *big.Int) error {
	if caller != t.ledger.Owner {
		return ErrNotTokenOwner
	}
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	t.ledger.Balances[to] = new(big.Int).Add(t.balance(to), amount)
	return nil
}

// Approve sets spender's allowance over owner's tokens
func (t *ERC20) Approve(owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	if t.ledger.Allowances[owner] == nil {
		t.ledger.Allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.ledger.Allowances[owner][spender] = new(big.Int).Set(amount)
	return nil
}

// Transfer moves amount from from to to
func (t *ERC20) Transfer(_ context.Context, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	if t.balance(from).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	t.move(from, to, amount)
	return nil
}

// TransferFrom moves amount from from to to, spending spender's allowance
func (t *ERC20) TransferFrom(_ context.Context, spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	allowance := t.Allowance(from, spender)
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if t.balance(from).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	t.ledger.Allowances[from][spender] = allowance.Sub(allowance, amount)
	t.move(from, to, amount)
	return nil
}

func (t *ERC20) move(from, to common.Address, amount *big.Int) {
	t.ledger.Balances[from] = new(big.Int).Sub(t.balance(from), amount)
	t.ledger.Balances[to] = new(big.Int).Add(t.balance(to), amount)
}

// Call dispatches ABI-encoded call data sent by caller
func (t *ERC20) Call(ctx context.Context, caller common.Address, data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: call data too short", domain.ErrUnknownMethod)
	}
	method, err := ERC20ABI.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: selector %x", domain.ErrUnknownMethod, data[:4])
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s arguments: %w", method.Name, err)
	}

	switch method.Name {
	case "transfer":
		if err := t.Transfer(ctx, caller, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "transferFrom":
		if err := t.TransferFrom(ctx, caller, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "approve":
		if err := t.Approve(caller, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return method.Outputs.Pack(true)
	case "balanceOf":
		return method.Outputs.Pack(t.balance(args[0].(common.Address)))
	case "allowance":
		return method.Outputs.Pack(t.Allowance(args[0].(common.Address), args[1].(common.Address)))
	case "totalSupply":
		return method.Outputs.Pack(t.TotalSupply())
	case "mint":
		return nil, t.Mint(caller, args[0].(common.Address), args[1].(*big.Int))
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMethod, method.Name)
	}
}

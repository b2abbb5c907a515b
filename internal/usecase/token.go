package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/chain"
)

// TokenOperation is a sandbox token action
type TokenOperation string

const (
	TokenOpTransfer TokenOperation = "transfer"
	TokenOpApprove  TokenOperation = "approve"
	TokenOpMint     TokenOperation = "mint"
)

// TokenActionParams contains parameters for a sandbox token action
type TokenActionParams struct {
	Operation TokenOperation
	Sender    common.Address
	// Token defaults to the governance deposit token
	Token  *common.Address
	To     common.Address
	Amount *big.Int
}

// TokenBalanceParams contains parameters for a balance query
type TokenBalanceParams struct {
	Owner common.Address
	Token *common.Address
}

// TokenBalanceResult describes an account on a sandbox token
type TokenBalanceResult struct {
	Token       common.Address `json:"token"`
	Symbol      string         `json:"symbol"`
	Owner       common.Address `json:"owner"`
	Balance     *big.Int       `json:"balance"`
	Allowance   *big.Int       `json:"allowance"`
	TotalSupply *big.Int       `json:"totalSupply"`
}

// ManageToken runs sandbox token actions used to fund depositors
type ManageToken struct {
	session  *Session
	progress ProgressSink
}

// NewManageToken creates a new ManageToken use case
func NewManageToken(session *Session, progress ProgressSink) *ManageToken {
	return &ManageToken{session: session, progress: progress}
}

func resolveToken(env *Env, addr *common.Address) (common.Address, *chain.ERC20, error) {
	address := env.Engine.TokenAddress()
	if addr != nil {
		address = *addr
	}
	token, err := env.Token(address)
	return address, token, err
}

// Run executes a mutating token action
func (uc *ManageToken) Run(ctx context.Context, params TokenActionParams) (*TokenBalanceResult, error) {
	var result *TokenBalanceResult
	err := uc.session.Update(ctx, func(env *Env) error {
		address, token, err := resolveToken(env, params.Token)
		if err != nil {
			return err
		}
		switch params.Operation {
		case TokenOpTransfer:
			err = token.Transfer(ctx, params.Sender, params.To, params.Amount)
		case TokenOpApprove:
			err = token.Approve(params.Sender, params.To, params.Amount)
		case TokenOpMint:
			err = token.Mint(params.Sender, params.To, params.Amount)
		default:
			err = fmt.Errorf("unknown token operation %q", params.Operation)
		}
		if err != nil {
			return err
		}
		result = balanceOf(ctx, env, address, token, params.To)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.progress.Info(fmt.Sprintf("%s %s %s to %s", params.Operation, params.Amount, result.Symbol, params.To.Hex()))
	return result, nil
}

// Balance reports an account on a sandbox token
func (uc *ManageToken) Balance(ctx context.Context, params TokenBalanceParams) (*TokenBalanceResult, error) {
	var result *TokenBalanceResult
	err := uc.session.View(ctx, func(env *Env) error {
		address, token, err := resolveToken(env, params.Token)
		if err != nil {
			return err
		}
		result = balanceOf(ctx, env, address, token, params.Owner)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func balanceOf(ctx context.Context, env *Env, address common.Address, token *chain.ERC20, owner common.Address) *TokenBalanceResult {
	balance, _ := token.BalanceOf(ctx, owner)
	return &TokenBalanceResult{
		Token:       address,
		Symbol:      token.Symbol(),
		Owner:       owner,
		Balance:     balance,
		Allowance:   token.Allowance(owner, env.Engine.Address()),
		TotalSupply: token.TotalSupply(),
	}
}

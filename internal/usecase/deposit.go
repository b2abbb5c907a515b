package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DepositParams contains parameters for depositing tokens
type DepositParams struct {
	Sender common.Address
	Amount *big.Int
	// Approve grants the governance contract the allowance first
	Approve bool
}

// DepositResult contains the depositor's position after the deposit
type DepositResult struct {
	Deposited *big.Int `json:"deposited"`
	Balance   *big.Int `json:"balance"`
}

// Deposit locks tokens in the governance contract for voting power
type Deposit struct {
	session  *Session
	progress ProgressSink
}

// NewDeposit creates a new Deposit use case
func NewDeposit(session *Session, progress ProgressSink) *Deposit {
	return &Deposit{session: session, progress: progress}
}

// Run executes the deposit
func (uc *Deposit) Run(ctx context.Context, params DepositParams) (*DepositResult, error) {
	result := &DepositResult{Deposited: params.Amount}
	err := uc.session.Update(ctx, func(env *Env) error {
		if params.Approve {
			token, err := env.Token(env.Engine.TokenAddress())
			if err != nil {
				return err
			}
			if err := token.Approve(params.Sender, env.Engine.Address(), params.Amount); err != nil {
				return fmt.Errorf("failed to approve: %w", err)
			}
			uc.progress.Info(fmt.Sprintf("Approved %s tokens for %s", params.Amount, env.Engine.Address().Hex()))
		}
		if err := env.Engine.Deposit(ctx, params.Sender, params.Amount); err != nil {
			return err
		}
		result.Balance, _ = env.Engine.DepositorInfo(params.Sender)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReturnDepositParams contains parameters for withdrawing a deposit
type ReturnDepositParams struct {
	Sender common.Address
}

// ReturnDepositResult contains the amount sent back
type ReturnDepositResult struct {
	Amount *big.Int `json:"amount"`
}

// ReturnDeposit withdraws the sender's whole deposit
type ReturnDeposit struct {
	session  *Session
	progress ProgressSink
}

// NewReturnDeposit creates a new ReturnDeposit use case
func NewReturnDeposit(session *Session, progress ProgressSink) *ReturnDeposit {
	return &ReturnDeposit{session: session, progress: progress}
}

// Run executes the withdrawal
func (uc *ReturnDeposit) Run(ctx context.Context, params ReturnDepositParams) (*ReturnDepositResult, error) {
	var amount *big.Int
	err := uc.session.Update(ctx, func(env *Env) error {
		var err error
		amount, err = env.Engine.ReturnDeposit(ctx, params.Sender)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ReturnDepositResult{Amount: amount}, nil
}

// ShowDepositorParams contains parameters for inspecting a depositor
type ShowDepositorParams struct {
	Address common.Address
}

// DepositorVote is one vote cast by a depositor
type DepositorVote struct {
	ProposalID uint64    `json:"proposalId"`
	Weight     *big.Int  `json:"weight"`
	Support    bool      `json:"support"`
	EndTime    time.Time `json:"endTime"`
}

// ShowDepositorResult describes a depositor's position
type ShowDepositorResult struct {
	Address      common.Address  `json:"address"`
	Deposit      *big.Int        `json:"deposit"`
	UnlockTime   time.Time       `json:"unlockTime"`
	Locked       bool            `json:"locked"`
	TokenBalance *big.Int        `json:"tokenBalance,omitempty"`
	Allowance    *big.Int        `json:"allowance,omitempty"`
	Votes        []DepositorVote `json:"votes"`
}

// ShowDepositor reports deposit, lock and votes of an address
type ShowDepositor struct {
	session *Session
}

// NewShowDepositor creates a new ShowDepositor use case
func NewShowDepositor(session *Session) *ShowDepositor {
	return &ShowDepositor{session: session}
}

// Run executes the query
func (uc *ShowDepositor) Run(ctx context.Context, params ShowDepositorParams) (*ShowDepositorResult, error) {
	result := &ShowDepositorResult{Address: params.Address}
	err := uc.session.View(ctx, func(env *Env) error {
		engine := env.Engine
		result.Deposit, result.UnlockTime = engine.DepositorInfo(params.Address)
		result.Locked = engine.Now().Before(result.UnlockTime)

		if token, err := env.Token(engine.TokenAddress()); err == nil {
			result.TokenBalance, _ = token.BalanceOf(ctx, params.Address)
			result.Allowance = token.Allowance(params.Address, engine.Address())
		}

		for _, p := range engine.Proposals() {
			record, ok := engine.VoteRecord(p.ID, params.Address)
			if !ok {
				continue
			}
			result.Votes = append(result.Votes, DepositorVote{
				ProposalID: p.ID,
				Weight:     record.Weight,
				Support:    record.Support,
				EndTime:    p.EndTime,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

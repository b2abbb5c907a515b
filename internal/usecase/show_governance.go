package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// GovernanceStatus summarizes a governance instance
type GovernanceStatus struct {
	Address         common.Address `json:"address"`
	Chairman        common.Address `json:"chairman"`
	TokenAddress    common.Address `json:"tokenAddress"`
	TokenSymbol     string         `json:"tokenSymbol,omitempty"`
	MinimumQuorum   *big.Int       `json:"minimumQuorum"`
	MinimumDuration time.Duration  `json:"minimumDuration"`
	LastIndex       uint64         `json:"lastIndex"`
	Depositors      int            `json:"depositors"`
	TotalDeposited  *big.Int       `json:"totalDeposited"`
	Custody         *big.Int       `json:"custody,omitempty"`
	OpenProposals   int            `json:"openProposals"`
	PendingSettle   int            `json:"pendingSettlement"`
	Now             time.Time      `json:"now"`
}

// ShowGovernance is the use case for the governance overview
type ShowGovernance struct {
	session *Session
}

// NewShowGovernance creates a new ShowGovernance use case
func NewShowGovernance(session *Session) *ShowGovernance {
	return &ShowGovernance{session: session}
}

// Run executes the query
func (uc *ShowGovernance) Run(ctx context.Context) (*GovernanceStatus, error) {
	var status *GovernanceStatus
	err := uc.session.View(ctx, func(env *Env) error {
		status = governanceStatus(ctx, env)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func governanceStatus(ctx context.Context, env *Env) *GovernanceStatus {
	engine := env.Engine
	now := engine.Now()
	status := &GovernanceStatus{
		Address:         engine.Address(),
		Chairman:        engine.Chairman(),
		TokenAddress:    engine.TokenAddress(),
		MinimumQuorum:   engine.MinimumQuorum(),
		MinimumDuration: engine.MinimumDuration(),
		LastIndex:       engine.LastIndex(),
		TotalDeposited:  new(big.Int),
		Now:             now,
	}

	for _, d := range env.Snapshot.Governance.Depositors {
		if d.Balance != nil && d.Balance.Sign() > 0 {
			status.Depositors++
			status.TotalDeposited.Add(status.TotalDeposited, d.Balance)
		}
	}
	for _, p := range engine.Proposals() {
		switch p.Status(now) {
		case models.ProposalStatusOpen:
			status.OpenProposals++
		case models.ProposalStatusEnded:
			status.PendingSettle++
		}
	}
	if token, err := env.Token(status.TokenAddress); err == nil {
		status.TokenSymbol = token.Symbol()
		status.Custody, _ = token.BalanceOf(ctx, status.Address)
	}
	return status
}

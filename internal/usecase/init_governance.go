package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// InitGovernanceParams contains parameters for deploying a governance instance
type InitGovernanceParams struct {
	Chairman common.Address

	// GovernanceAddress overrides the derived contract address
	GovernanceAddress *common.Address

	// TokenAddress points at an existing token. When nil a sandbox token is
	// deployed and TokenSupply is minted to the chairman.
	TokenAddress *common.Address
	TokenName    string
	TokenSymbol  string
	TokenSupply  *big.Int

	MinimumQuorum   *big.Int
	MinimumDuration time.Duration
}

// InitGovernanceResult contains the deployed addresses
type InitGovernanceResult struct {
	GovernanceAddress common.Address `json:"governanceAddress"`
	TokenAddress      common.Address `json:"tokenAddress"`
	TokenDeployed     bool           `json:"tokenDeployed"`
	Chairman          common.Address `json:"chairman"`
	MinimumQuorum     *big.Int       `json:"minimumQuorum"`
	MinimumDuration   time.Duration  `json:"minimumDuration"`
}

// InitGovernance deploys the governance contract and, optionally, its token
type InitGovernance struct {
	session  *Session
	progress ProgressSink
}

// NewInitGovernance creates a new InitGovernance use case
func NewInitGovernance(session *Session, progress ProgressSink) *InitGovernance {
	return &InitGovernance{
		session:  session,
		progress: progress,
	}
}

// Run deploys the contracts. Addresses follow CREATE semantics from the
// chairman's nonce: the sandbox token (if any) first, then governance.
func (uc *InitGovernance) Run(ctx context.Context, params InitGovernanceParams) (*InitGovernanceResult, error) {
	if params.Chairman == (common.Address{}) {
		return nil, fmt.Errorf("chairman address is required")
	}

	var nonce uint64
	tokens := make(map[common.Address]*models.TokenLedger)

	var tokenAddress common.Address
	deployToken := params.TokenAddress == nil
	if deployToken {
		tokenAddress = crypto.CreateAddress(params.Chairman, nonce)
		nonce++

		name, symbol := params.TokenName, params.TokenSymbol
		if name == "" {
			name = "DAO Vote Token"
		}
		if symbol == "" {
			symbol = "VOTE"
		}
		balances := make(map[common.Address]*big.Int)
		if params.TokenSupply != nil && params.TokenSupply.Sign() > 0 {
			balances[params.Chairman] = new(big.Int).Set(params.TokenSupply)
		}
		tokens[tokenAddress] = &models.TokenLedger{
			Name:       name,
			Symbol:     symbol,
			Owner:      params.Chairman,
			Balances:   balances,
			Allowances: make(map[common.Address]map[common.Address]*big.Int),
		}
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "deploying",
			Message: fmt.Sprintf("Deploying sandbox token %s at %s", symbol, tokenAddress.Hex()),
		})
	} else {
		tokenAddress = *params.TokenAddress
	}

	govAddress := crypto.CreateAddress(params.Chairman, nonce)
	if params.GovernanceAddress != nil {
		govAddress = *params.GovernanceAddress
	}
	if _, clash := tokens[govAddress]; clash {
		return nil, fmt.Errorf("governance address %s collides with the token", govAddress.Hex())
	}

	state := models.NewGovernanceState(params.Chairman, tokenAddress, params.MinimumQuorum, params.MinimumDuration)
	snapshot := &models.Snapshot{
		GovernanceAddress: govAddress,
		Governance:        state,
		Tokens:            tokens,
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "deploying",
		Message: fmt.Sprintf("Deploying governance at %s", govAddress.Hex()),
	})
	if _, err := uc.session.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	return &InitGovernanceResult{
		GovernanceAddress: govAddress,
		TokenAddress:      tokenAddress,
		TokenDeployed:     deployToken,
		Chairman:          params.Chairman,
		MinimumQuorum:     new(big.Int).Set(state.MinimumQuorum),
		MinimumDuration:   state.MinimumDuration,
	}, nil
}

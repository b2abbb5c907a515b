package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CastVoteParams contains parameters for voting
type CastVoteParams struct {
	Sender     common.Address
	ProposalID uint64
	Weight     *big.Int
	Support    bool
}

// CastVoteResult contains the proposal after the vote
type CastVoteResult struct {
	Proposal *ProposalView `json:"proposal"`
	Weight   *big.Int      `json:"weight"`
	Support  bool          `json:"support"`
}

// CastVote votes on a proposal with deposited tokens
type CastVote struct {
	session *Session
	decoder CallDecoder
}

// NewCastVote creates a new CastVote use case
func NewCastVote(session *Session, decoder CallDecoder) *CastVote {
	return &CastVote{session: session, decoder: decoder}
}

// Run executes the vote
func (uc *CastVote) Run(ctx context.Context, params CastVoteParams) (*CastVoteResult, error) {
	result := &CastVoteResult{Weight: params.Weight, Support: params.Support}
	err := uc.session.Update(ctx, func(env *Env) error {
		if err := env.Engine.Vote(ctx, params.Sender, params.ProposalID, params.Weight, params.Support); err != nil {
			return err
		}
		proposal, err := env.Engine.Proposal(params.ProposalID)
		if err != nil {
			return err
		}
		result.Proposal = newProposalView(env, uc.decoder, proposal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

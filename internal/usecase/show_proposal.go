package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// ShowProposalParams contains parameters for showing a proposal
type ShowProposalParams struct {
	ID uint64
	// Voter optionally selects whose vote to include
	Voter *common.Address
}

// ShowProposalResult contains the proposal and, when requested, a vote
type ShowProposalResult struct {
	*ProposalView
	Voter *common.Address    `json:"voter,omitempty"`
	Vote  *models.VoteRecord `json:"vote,omitempty"`
	Votes int                `json:"votes"`
}

// ShowProposal is the use case for showing proposal details
type ShowProposal struct {
	session *Session
	decoder CallDecoder
}

// NewShowProposal creates a new ShowProposal use case
func NewShowProposal(session *Session, decoder CallDecoder) *ShowProposal {
	return &ShowProposal{session: session, decoder: decoder}
}

// Run executes the query
func (uc *ShowProposal) Run(ctx context.Context, params ShowProposalParams) (*ShowProposalResult, error) {
	result := &ShowProposalResult{Voter: params.Voter}
	err := uc.session.View(ctx, func(env *Env) error {
		proposal, err := env.Engine.Proposal(params.ID)
		if err != nil {
			return err
		}
		result.ProposalView = newProposalView(env, uc.decoder, proposal)
		result.Votes = len(env.Snapshot.Governance.Votes[params.ID])
		if params.Voter != nil {
			if record, ok := env.Engine.VoteRecord(params.ID, *params.Voter); ok {
				result.Vote = record
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// FinishProposalParams contains parameters for settling a proposal
type FinishProposalParams struct {
	Sender     common.Address
	ProposalID uint64
}

// FinishProposalResult contains the settlement outcome
type FinishProposalResult struct {
	Settlement *models.Settlement `json:"settlement"`
	Proposal   *ProposalView      `json:"proposal"`
	// Chairman after settlement; differs from before when an election passed
	Chairman common.Address `json:"chairman"`
}

// FinishProposal settles a proposal and executes its call when accepted
type FinishProposal struct {
	session  *Session
	decoder  CallDecoder
	progress ProgressSink
}

// NewFinishProposal creates a new FinishProposal use case
func NewFinishProposal(session *Session, decoder CallDecoder, progress ProgressSink) *FinishProposal {
	return &FinishProposal{session: session, decoder: decoder, progress: progress}
}

// Run executes the settlement
func (uc *FinishProposal) Run(ctx context.Context, params FinishProposalParams) (*FinishProposalResult, error) {
	result := &FinishProposalResult{}
	err := uc.session.Update(ctx, func(env *Env) error {
		settlement, err := env.Engine.FinishProposal(ctx, params.Sender, params.ProposalID)
		if err != nil {
			return err
		}
		proposal, err := env.Engine.Proposal(params.ProposalID)
		if err != nil {
			return err
		}
		result.Settlement = settlement
		result.Proposal = newProposalView(env, uc.decoder, proposal)
		result.Chairman = env.Engine.Chairman()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Settlement.CallError != nil {
		uc.progress.Error(fmt.Sprintf("Proposal #%d accepted but its call failed: %v", params.ProposalID, result.Settlement.CallError))
	}
	return result, nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// SelectProposal picks a proposal interactively when no id was given
type SelectProposal struct {
	list     *ListProposals
	selector ProposalSelector
}

// NewSelectProposal creates a new SelectProposal use case
func NewSelectProposal(list *ListProposals, selector ProposalSelector) *SelectProposal {
	return &SelectProposal{list: list, selector: selector}
}

// Run lists proposals matching filter and asks the selector to choose one
func (uc *SelectProposal) Run(ctx context.Context, filter ProposalFilter, prompt string) (uint64, error) {
	result, err := uc.list.Run(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(result.Proposals) == 0 {
		return 0, fmt.Errorf("%w: no matching proposals", domain.ErrNotFound)
	}
	proposals := lo.Map(result.Proposals, func(v *ProposalView, _ int) *models.Proposal {
		return v.Proposal
	})
	selected, err := uc.selector.SelectProposal(ctx, proposals, prompt)
	if err != nil {
		return 0, err
	}
	return selected.ID, nil
}

package usecase

import (
	"context"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// ProposalFilter narrows a proposal listing
type ProposalFilter struct {
	// Status keeps only proposals in this status; empty keeps all
	Status models.ProposalStatus
	// Settled, when set, keeps only settled or only unsettled proposals
	Settled *bool
	// Query fuzzy-matches descriptions; matches are ordered by score
	Query string
}

// ProposalSummary counts proposals per status
type ProposalSummary struct {
	Total    int                           `json:"total"`
	ByStatus map[models.ProposalStatus]int `json:"byStatus"`
}

// ListProposalsResult contains the listing
type ListProposalsResult struct {
	Proposals []*ProposalView `json:"proposals"`
	Summary   ProposalSummary `json:"summary"`
}

// ListProposals is the use case for listing proposals
type ListProposals struct {
	session *Session
	decoder CallDecoder
}

// NewListProposals creates a new ListProposals use case
func NewListProposals(session *Session, decoder CallDecoder) *ListProposals {
	return &ListProposals{session: session, decoder: decoder}
}

// Run executes the query
func (uc *ListProposals) Run(ctx context.Context, filter ProposalFilter) (*ListProposalsResult, error) {
	var views []*ProposalView
	err := uc.session.View(ctx, func(env *Env) error {
		views = lo.Map(env.Engine.Proposals(), func(p *models.Proposal, _ int) *ProposalView {
			return newProposalView(env, uc.decoder, p)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	views = FilterProposals(views, filter)
	return &ListProposalsResult{
		Proposals: views,
		Summary:   summarize(views),
	}, nil
}

// FilterProposals applies filter to views
func FilterProposals(views []*ProposalView, filter ProposalFilter) []*ProposalView {
	views = lo.Filter(views, func(v *ProposalView, _ int) bool {
		if filter.Status != "" && v.Status != filter.Status {
			return false
		}
		if filter.Settled != nil && v.Proposal.Settled != *filter.Settled {
			return false
		}
		return true
	})

	if filter.Query == "" {
		return views
	}
	matches := fuzzy.FindFrom(filter.Query, proposalSource(views))
	return lo.Map(matches, func(m fuzzy.Match, _ int) *ProposalView {
		return views[m.Index]
	})
}

type proposalSource []*ProposalView

func (s proposalSource) String(i int) string { return s[i].Proposal.Description }
func (s proposalSource) Len() int            { return len(s) }

func summarize(views []*ProposalView) ProposalSummary {
	return ProposalSummary{
		Total: len(views),
		ByStatus: lo.CountValuesBy(views, func(v *ProposalView) models.ProposalStatus {
			return v.Status
		}),
	}
}

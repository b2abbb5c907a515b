package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// AddProposalParams contains parameters for creating proposals. Proposals
// from File are appended to Proposals and all of them are created atomically.
type AddProposalParams struct {
	Sender    common.Address
	Proposals []ProposalSpec
	File      string
}

// AddProposalResult contains the created proposals
type AddProposalResult struct {
	Proposals []*ProposalView `json:"proposals"`
}

// AddProposal creates one or more proposals as the chairman
type AddProposal struct {
	session  *Session
	encoder  CallEncoder
	decoder  CallDecoder
	parser   ProposalFileParser
	progress ProgressSink
}

// NewAddProposal creates a new AddProposal use case
func NewAddProposal(
	session *Session,
	encoder CallEncoder,
	decoder CallDecoder,
	parser ProposalFileParser,
	progress ProgressSink,
) *AddProposal {
	return &AddProposal{
		session:  session,
		encoder:  encoder,
		decoder:  decoder,
		parser:   parser,
		progress: progress,
	}
}

type preparedProposal struct {
	description string
	duration    time.Duration
	target      common.Address
	callData    []byte
	candidate   *common.Address
}

// Run executes the use case
func (uc *AddProposal) Run(ctx context.Context, params AddProposalParams) (*AddProposalResult, error) {
	specs := params.Proposals
	if params.File != "" {
		fromFile, err := uc.parser.ParseProposalFile(params.File)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fromFile...)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no proposals given")
	}

	// everything is validated before the state is touched
	prepared := make([]preparedProposal, 0, len(specs))
	for i, spec := range specs {
		p, err := uc.prepare(spec)
		if err != nil {
			return nil, fmt.Errorf("proposal %d: %w", i+1, err)
		}
		prepared = append(prepared, p)
	}

	result := &AddProposalResult{}
	err := uc.session.Update(ctx, func(env *Env) error {
		for _, p := range prepared {
			var id uint64
			var err error
			if p.candidate != nil {
				id, err = env.Engine.StartChairmanElection(ctx, params.Sender, *p.candidate, p.duration)
			} else {
				id, err = env.Engine.AddProposal(ctx, params.Sender, p.description, p.duration, p.target, p.callData)
			}
			if err != nil {
				return err
			}
			proposal, err := env.Engine.Proposal(id)
			if err != nil {
				return err
			}
			uc.progress.OnProgress(ctx, ProgressEvent{
				Stage:   "created",
				Message: fmt.Sprintf("Created proposal #%d", id),
			})
			result.Proposals = append(result.Proposals, newProposalView(env, uc.decoder, proposal))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *AddProposal) prepare(spec ProposalSpec) (preparedProposal, error) {
	duration, err := ParseDuration(spec.Duration)
	if err != nil {
		return preparedProposal{}, err
	}
	p := preparedProposal{
		description: spec.Description,
		duration:    duration,
	}

	if spec.Candidate != "" {
		candidate, err := ParseAddress(spec.Candidate)
		if err != nil {
			return preparedProposal{}, fmt.Errorf("candidate: %w", err)
		}
		p.candidate = &candidate
		return p, nil
	}

	if spec.Target == "" {
		return preparedProposal{}, fmt.Errorf("target address is required")
	}
	p.target, err = ParseAddress(spec.Target)
	if err != nil {
		return preparedProposal{}, fmt.Errorf("target: %w", err)
	}

	switch {
	case spec.Signature != "" && spec.CallData != "":
		return preparedProposal{}, fmt.Errorf("give either call data or a signature, not both")
	case spec.Signature != "":
		p.callData, err = uc.encoder.Encode(spec.Signature, spec.Args)
	default:
		p.callData, err = ParseCallData(spec.CallData)
	}
	if err != nil {
		return preparedProposal{}, err
	}
	return p, nil
}

// StartChairmanElectionParams contains parameters for a chairman election
type StartChairmanElectionParams struct {
	Sender    common.Address
	Candidate common.Address
	Duration  time.Duration
}

// StartChairmanElection proposes a new chairman
type StartChairmanElection struct {
	session  *Session
	decoder  CallDecoder
	progress ProgressSink
}

// NewStartChairmanElection creates a new StartChairmanElection use case
func NewStartChairmanElection(session *Session, decoder CallDecoder, progress ProgressSink) *StartChairmanElection {
	return &StartChairmanElection{session: session, decoder: decoder, progress: progress}
}

// Run executes the use case
func (uc *StartChairmanElection) Run(ctx context.Context, params StartChairmanElectionParams) (*ProposalView, error) {
	var view *ProposalView
	err := uc.session.Update(ctx, func(env *Env) error {
		id, err := env.Engine.StartChairmanElection(ctx, params.Sender, params.Candidate, params.Duration)
		if err != nil {
			return err
		}
		proposal, err := env.Engine.Proposal(id)
		if err != nil {
			return err
		}
		view = newProposalView(env, uc.decoder, proposal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.progress.Info(fmt.Sprintf("Election #%d for %s opened", view.Proposal.ID, params.Candidate.Hex()))
	return view, nil
}

// ProposalView is a proposal with its derived status and decoded call
type ProposalView struct {
	Proposal *models.Proposal      `json:"proposal"`
	Status   models.ProposalStatus `json:"status"`
	Call     *models.DecodedCall   `json:"call"`
}

func newProposalView(env *Env, decoder CallDecoder, proposal *models.Proposal) *ProposalView {
	return &ProposalView{
		Proposal: proposal,
		Status:   proposal.Status(env.Engine.Now()),
		Call:     decoder.Decode(env.Snapshot, proposal.Target, proposal.CallData),
	}
}

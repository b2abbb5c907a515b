package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ProposalKind distinguishes plain proposals from chairman elections
type ProposalKind string

const (
	ProposalKindGeneric          ProposalKind = "generic"
	ProposalKindChairmanElection ProposalKind = "chairman-election"
)

// ProposalStatus is derived from a proposal's flags and the current time
type ProposalStatus string

const (
	ProposalStatusOpen     ProposalStatus = "open"
	ProposalStatusEnded    ProposalStatus = "ended"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// Proposal is a single governance proposal. Everything except the tallies and
// the settlement fields is fixed at creation.
type Proposal struct {
	ID          uint64         `json:"id"`
	Kind        ProposalKind   `json:"kind"`
	Description string         `json:"description"`
	Proposer    common.Address `json:"proposer"`
	CreatedAt   time.Time      `json:"createdAt"`
	EndTime     time.Time      `json:"endTime"`

	// Bundled call
	Target    common.Address  `json:"target"`
	CallData  hexutil.Bytes   `json:"callData"`
	Candidate *common.Address `json:"candidate,omitempty"`

	// Tallies
	ForVotes     *big.Int `json:"forVotes"`
	AgainstVotes *big.Int `json:"againstVotes"`

	// Settlement
	Settled        bool       `json:"settled"`
	Accepted       bool       `json:"accepted"`
	Executed       bool       `json:"executed"`
	ExecutionError string     `json:"executionError,omitempty"`
	SettledAt      *time.Time `json:"settledAt,omitempty"`
}

// TotalVotes returns forVotes + againstVotes
func (p *Proposal) TotalVotes() *big.Int {
	return new(big.Int).Add(p.ForVotes, p.AgainstVotes)
}

// IsOpen reports whether votes can still be cast at now
func (p *Proposal) IsOpen(now time.Time) bool {
	return now.Before(p.EndTime)
}

// Status summarizes the proposal lifecycle at now
func (p *Proposal) Status(now time.Time) ProposalStatus {
	switch {
	case p.Settled && p.Accepted:
		return ProposalStatusAccepted
	case p.Settled:
		return ProposalStatusRejected
	case p.IsOpen(now):
		return ProposalStatusOpen
	default:
		return ProposalStatusEnded
	}
}

// Clone returns a deep copy
func (p *Proposal) Clone() *Proposal {
	c := *p
	c.CallData = append(hexutil.Bytes(nil), p.CallData...)
	c.ForVotes = new(big.Int).Set(p.ForVotes)
	c.AgainstVotes = new(big.Int).Set(p.AgainstVotes)
	if p.Candidate != nil {
		candidate := *p.Candidate
		c.Candidate = &candidate
	}
	if p.SettledAt != nil {
		settledAt := *p.SettledAt
		c.SettledAt = &settledAt
	}
	return &c
}

// VoteRecord is a cast vote. Its presence marks the voter as having voted.
type VoteRecord struct {
	Weight  *big.Int  `json:"weight"`
	Support bool      `json:"support"`
	CastAt  time.Time `json:"castAt"`
}

// Settlement describes the outcome of finishing a proposal
type Settlement struct {
	ProposalID    uint64 `json:"proposalId"`
	Accepted      bool   `json:"accepted"`
	CallAttempted bool   `json:"callAttempted"`
	CallError     error  `json:"-"`
	ReturnData    []byte `json:"returnData,omitempty"`
}

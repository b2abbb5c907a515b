package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultMinimumDuration is the floor applied to every debate window
const DefaultMinimumDuration = 3 * 24 * time.Hour

// GovernanceState is the complete state of one governance instance
type GovernanceState struct {
	Chairman        common.Address `json:"chairman"`
	TokenAddress    common.Address `json:"tokenAddress"`
	MinimumQuorum   *big.Int       `json:"minimumQuorum"`
	MinimumDuration time.Duration  `json:"minimumDuration"`
	LastIndex       uint64         `json:"lastIndex"`

	Proposals  map[uint64]*Proposal                       `json:"proposals"`
	Depositors map[common.Address]*Depositor              `json:"depositors"`
	Votes      map[uint64]map[common.Address]*VoteRecord `json:"votes"`
}

// NewGovernanceState creates an empty state with the given parameters
func NewGovernanceState(chairman, token common.Address, quorum *big.Int, minimumDuration time.Duration) *GovernanceState {
	if minimumDuration <= 0 {
		minimumDuration = DefaultMinimumDuration
	}
	if quorum == nil {
		quorum = new(big.Int)
	}
	return &GovernanceState{
		Chairman:        chairman,
		TokenAddress:    token,
		MinimumQuorum:   new(big.Int).Set(quorum),
		MinimumDuration: minimumDuration,
		Proposals:       make(map[uint64]*Proposal),
		Depositors:      make(map[common.Address]*Depositor),
		Votes:           make(map[uint64]map[common.Address]*VoteRecord),
	}
}

// EnsureMaps initializes nil maps, which happens after decoding an empty state
func (s *GovernanceState) EnsureMaps() {
	if s.Proposals == nil {
		s.Proposals = make(map[uint64]*Proposal)
	}
	if s.Depositors == nil {
		s.Depositors = make(map[common.Address]*Depositor)
	}
	if s.Votes == nil {
		s.Votes = make(map[uint64]map[common.Address]*VoteRecord)
	}
	if s.MinimumQuorum == nil {
		s.MinimumQuorum = new(big.Int)
	}
}

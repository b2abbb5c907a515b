package usecase_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/daovote/internal/adapters/abi"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

func TestInitGovernance(t *testing.T) {
	t.Run("deploys token then governance", func(t *testing.T) {
		h := newHarness(t, 10)
		assert.True(t, h.init.TokenDeployed)
		assert.Equal(t, crypto.CreateAddress(chairman, 0), h.init.TokenAddress)
		assert.Equal(t, crypto.CreateAddress(chairman, 1), h.init.GovernanceAddress)
		assert.Equal(t, models.DefaultMinimumDuration, h.init.MinimumDuration)
		require.Len(t, h.progress.events, 2)
		assert.Contains(t, h.progress.events[0].Message, "sandbox token")
		assert.Contains(t, h.progress.events[1].Message, "governance")

		status, err := usecase.NewShowGovernance(h.session).Run(h.ctx)
		require.NoError(t, err)
		assert.Equal(t, chairman, status.Chairman)
		assert.Equal(t, "VOTE", status.TokenSymbol)
		assert.Equal(t, int64(10), status.MinimumQuorum.Int64())
	})

	t.Run("refuses to initialize twice", func(t *testing.T) {
		h := newHarness(t, 0)
		_, err := usecase.NewInitGovernance(h.session, h.progress).Run(h.ctx, usecase.InitGovernanceParams{Chairman: chairman})
		assert.Error(t, err)
	})

	t.Run("existing token", func(t *testing.T) {
		repo := &memoryRepository{}
		h := &harness{ctx: t.Context(), repo: repo, progress: &MockProgressSink{}}
		session := usecase.NewSession(repo, nil, nil, nil)
		token := common.HexToAddress("0x58Dea97d56BAF80aFec00B48A2FC158E7703Fe80")
		result, err := usecase.NewInitGovernance(session, h.progress).Run(h.ctx, usecase.InitGovernanceParams{
			Chairman:     chairman,
			TokenAddress: &token,
		})
		require.NoError(t, err)
		assert.False(t, result.TokenDeployed)
		assert.Equal(t, crypto.CreateAddress(chairman, 0), result.GovernanceAddress)
	})

	t.Run("not initialized", func(t *testing.T) {
		session := usecase.NewSession(&memoryRepository{}, nil, nil, nil)
		_, err := usecase.NewShowGovernance(session).Run(t.Context())
		assert.ErrorIs(t, err, domain.ErrNotInitialized)
	})
}

func TestDepositAndWithdraw(t *testing.T) {
	h := newHarness(t, 0)
	h.deposit(t, alice, 100)

	depositor, err := usecase.NewShowDepositor(h.session).Run(h.ctx, usecase.ShowDepositorParams{Address: alice})
	require.NoError(t, err)
	assert.Equal(t, int64(100), depositor.Deposit.Int64())
	assert.Equal(t, int64(0), depositor.TokenBalance.Int64())
	assert.False(t, depositor.Locked)

	views := h.addProposal(t, usecase.ProposalSpec{Description: "noop", Target: bob.Hex()})
	id := views[0].Proposal.ID

	_, err = usecase.NewCastVote(h.session, h.decoder).Run(h.ctx, usecase.CastVoteParams{
		Sender: alice, ProposalID: id, Weight: big.NewInt(100), Support: true,
	})
	require.NoError(t, err)

	withdraw := usecase.NewReturnDeposit(h.session, h.progress)
	_, err = withdraw.Run(h.ctx, usecase.ReturnDepositParams{Sender: alice})
	assert.ErrorIs(t, err, domain.ErrDepositLocked)

	depositor, err = usecase.NewShowDepositor(h.session).Run(h.ctx, usecase.ShowDepositorParams{Address: alice})
	require.NoError(t, err)
	assert.True(t, depositor.Locked)
	require.Len(t, depositor.Votes, 1)
	assert.Equal(t, id, depositor.Votes[0].ProposalID)

	h.clock.Advance(models.DefaultMinimumDuration)
	result, err := withdraw.Run(h.ctx, usecase.ReturnDepositParams{Sender: alice})
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Amount.Int64())

	balance, err := usecase.NewManageToken(h.session, h.progress).Balance(h.ctx, usecase.TokenBalanceParams{Owner: alice})
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Balance.Int64())
}

func TestFailedOperationIsNotPersisted(t *testing.T) {
	h := newHarness(t, 0)
	saves := h.repo.saves

	// no allowance: the deposit fails after nothing was written
	h.fund(t, alice, 50)
	saves++
	_, err := usecase.NewDeposit(h.session, h.progress).Run(h.ctx, usecase.DepositParams{
		Sender: alice, Amount: big.NewInt(50),
	})
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.Equal(t, saves, h.repo.saves)

	// a batch with one unauthorized proposal creates none
	uc := usecase.NewAddProposal(h.session, abi.NewCallEncoder(), h.decoder, &MockProposalFileParser{}, h.progress)
	_, err = uc.Run(h.ctx, usecase.AddProposalParams{
		Sender:    alice,
		Proposals: []usecase.ProposalSpec{{Description: "x", Target: bob.Hex()}},
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	status, err := usecase.NewShowGovernance(h.session).Run(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), status.LastIndex)
}

func TestAddProposal(t *testing.T) {
	t.Run("signature and arguments", func(t *testing.T) {
		h := newHarness(t, 0)
		views := h.addProposal(t, usecase.ProposalSpec{
			Description: "Give me 100 tokens",
			Duration:    "4d",
			Target:      h.init.TokenAddress.Hex(),
			Signature:   "transfer(address,uint256)",
			Args:        []string{alice.Hex(), "100"},
		})
		require.Len(t, views, 1)
		view := views[0]
		assert.Equal(t, uint64(1), view.Proposal.ID)
		assert.Equal(t, 4*24*time.Hour, view.Proposal.EndTime.Sub(view.Proposal.CreatedAt))
		assert.Equal(t, models.ProposalStatusOpen, view.Status)
		assert.Equal(t, "VOTE", view.Call.Label)
		assert.Equal(t, "transfer", view.Call.Method)
	})

	t.Run("batch from file", func(t *testing.T) {
		h := newHarness(t, 0)
		parser := &MockProposalFileParser{}
		parser.On("ParseProposalFile", "proposals.yaml").Return([]usecase.ProposalSpec{
			{Description: "first", Target: bob.Hex(), CallData: "0xdeadbeef"},
			{Candidate: alice.Hex()},
		}, nil)

		h.progress.events = nil

		uc := usecase.NewAddProposal(h.session, abi.NewCallEncoder(), h.decoder, parser, h.progress)
		result, err := uc.Run(h.ctx, usecase.AddProposalParams{Sender: chairman, File: "proposals.yaml"})
		require.NoError(t, err)
		require.Len(t, result.Proposals, 2)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, []byte(result.Proposals[0].Proposal.CallData))
		assert.Equal(t, models.ProposalKindChairmanElection, result.Proposals[1].Proposal.Kind)
		assert.Equal(t, "changeChairman", result.Proposals[1].Call.Method)
		require.Len(t, h.progress.events, 2)
		for _, event := range h.progress.events {
			assert.Equal(t, "created", event.Stage)
		}
		parser.AssertExpectations(t)
	})

	t.Run("invalid specs", func(t *testing.T) {
		h := newHarness(t, 0)
		uc := usecase.NewAddProposal(h.session, abi.NewCallEncoder(), h.decoder, &MockProposalFileParser{}, h.progress)
		tests := []struct {
			name string
			spec usecase.ProposalSpec
		}{
			{"missing target", usecase.ProposalSpec{Description: "x"}},
			{"bad target", usecase.ProposalSpec{Target: "0x12"}},
			{"bad duration", usecase.ProposalSpec{Target: bob.Hex(), Duration: "soon"}},
			{"both call forms", usecase.ProposalSpec{Target: bob.Hex(), CallData: "0x01", Signature: "f()"}},
			{"bad call data", usecase.ProposalSpec{Target: bob.Hex(), CallData: "0xzz"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := uc.Run(h.ctx, usecase.AddProposalParams{Sender: chairman, Proposals: []usecase.ProposalSpec{tt.spec}})
				assert.Error(t, err)
			})
		}
		_, err := uc.Run(h.ctx, usecase.AddProposalParams{Sender: chairman})
		assert.Error(t, err)
	})
}

func TestFinishProposal_TreasuryTransfer(t *testing.T) {
	h := newHarness(t, 100)
	h.deposit(t, alice, 100)
	h.deposit(t, bob, 50)
	// fund the treasury
	_, err := usecase.NewManageToken(h.session, h.progress).Run(h.ctx, usecase.TokenActionParams{
		Operation: usecase.TokenOpMint,
		Sender:    chairman,
		To:        h.init.GovernanceAddress,
		Amount:    big.NewInt(1000),
	})
	require.NoError(t, err)

	views := h.addProposal(t, usecase.ProposalSpec{
		Description: "Give me 100 tokens",
		Target:      h.init.TokenAddress.Hex(),
		Signature:   "transfer(address,uint256)",
		Args:        []string{bob.Hex(), "100"},
	})
	id := views[0].Proposal.ID

	vote := usecase.NewCastVote(h.session, h.decoder)
	_, err = vote.Run(h.ctx, usecase.CastVoteParams{Sender: alice, ProposalID: id, Weight: big.NewInt(80), Support: true})
	require.NoError(t, err)
	voted, err := vote.Run(h.ctx, usecase.CastVoteParams{Sender: bob, ProposalID: id, Weight: big.NewInt(50), Support: false})
	require.NoError(t, err)
	assert.Equal(t, int64(80), voted.Proposal.Proposal.ForVotes.Int64())
	assert.Equal(t, int64(50), voted.Proposal.Proposal.AgainstVotes.Int64())

	finish := usecase.NewFinishProposal(h.session, h.decoder, h.progress)
	_, err = finish.Run(h.ctx, usecase.FinishProposalParams{Sender: bob, ProposalID: id})
	assert.ErrorIs(t, err, domain.ErrDebateNotOver)

	h.clock.Advance(models.DefaultMinimumDuration)
	result, err := finish.Run(h.ctx, usecase.FinishProposalParams{Sender: bob, ProposalID: id})
	require.NoError(t, err)
	assert.True(t, result.Settlement.Accepted)
	assert.NoError(t, result.Settlement.CallError)
	assert.Equal(t, models.ProposalStatusAccepted, result.Proposal.Status)

	balance, err := usecase.NewManageToken(h.session, h.progress).Balance(h.ctx, usecase.TokenBalanceParams{Owner: bob})
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Balance.Int64())

	_, err = finish.Run(h.ctx, usecase.FinishProposalParams{Sender: bob, ProposalID: id})
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)
}

func TestChairmanElection(t *testing.T) {
	h := newHarness(t, 0)
	h.deposit(t, alice, 10)

	view, err := usecase.NewStartChairmanElection(h.session, h.decoder, h.progress).Run(h.ctx, usecase.StartChairmanElectionParams{
		Sender: chairman, Candidate: bob,
	})
	require.NoError(t, err)

	_, err = usecase.NewCastVote(h.session, h.decoder).Run(h.ctx, usecase.CastVoteParams{
		Sender: alice, ProposalID: view.Proposal.ID, Weight: big.NewInt(10), Support: true,
	})
	require.NoError(t, err)

	h.clock.Advance(models.DefaultMinimumDuration)
	result, err := usecase.NewFinishProposal(h.session, h.decoder, h.progress).Run(h.ctx, usecase.FinishProposalParams{
		Sender: alice, ProposalID: view.Proposal.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, bob, result.Chairman)

	err = usecase.NewSetMinimumQuorum(h.session).Run(h.ctx, usecase.SetMinimumQuorumParams{Sender: chairman, Quorum: big.NewInt(1)})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	err = usecase.NewSetMinimumQuorum(h.session).Run(h.ctx, usecase.SetMinimumQuorumParams{Sender: bob, Quorum: big.NewInt(1)})
	require.NoError(t, err)

	err = usecase.NewSetTokenAddress(h.session, h.progress).Run(h.ctx, usecase.SetTokenAddressParams{Sender: bob, Token: alice})
	require.NoError(t, err)
	assert.Len(t, h.progress.infos, 4)
}

func TestFinishProposal_CallFailureIsReported(t *testing.T) {
	h := newHarness(t, 0)
	h.deposit(t, alice, 10)
	// the treasury holds only the deposit, so transferring more fails
	views := h.addProposal(t, usecase.ProposalSpec{
		Target:    h.init.TokenAddress.Hex(),
		Signature: "transfer(address,uint256)",
		Args:      []string{alice.Hex(), "1000"},
	})
	id := views[0].Proposal.ID
	_, err := usecase.NewCastVote(h.session, h.decoder).Run(h.ctx, usecase.CastVoteParams{
		Sender: alice, ProposalID: id, Weight: big.NewInt(10), Support: true,
	})
	require.NoError(t, err)

	h.clock.Advance(models.DefaultMinimumDuration)
	result, err := usecase.NewFinishProposal(h.session, h.decoder, h.progress).Run(h.ctx, usecase.FinishProposalParams{
		Sender: alice, ProposalID: id,
	})
	require.NoError(t, err)
	assert.Error(t, result.Settlement.CallError)
	assert.NotEmpty(t, result.Proposal.Proposal.ExecutionError)
	assert.Len(t, h.progress.errors, 1)

	shown, err := usecase.NewShowProposal(h.session, h.decoder).Run(h.ctx, usecase.ShowProposalParams{ID: id, Voter: &alice})
	require.NoError(t, err)
	assert.True(t, shown.Proposal.Settled)
	require.NotNil(t, shown.Vote)
	assert.Equal(t, int64(10), shown.Vote.Weight.Int64())
	assert.Equal(t, 1, shown.Votes)
}

func TestListAndSelectProposals(t *testing.T) {
	h := newHarness(t, 0)
	h.addProposal(t,
		usecase.ProposalSpec{Description: "Fund the marketing budget", Target: bob.Hex()},
		usecase.ProposalSpec{Description: "Upgrade treasury", Target: bob.Hex(), Duration: "10d"},
		usecase.ProposalSpec{Description: "Fix the bridge", Target: bob.Hex()},
	)
	h.clock.Advance(models.DefaultMinimumDuration)

	list := usecase.NewListProposals(h.session, h.decoder)

	all, err := list.Run(h.ctx, usecase.ProposalFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Summary.Total)
	assert.Equal(t, 1, all.Summary.ByStatus[models.ProposalStatusOpen])
	assert.Equal(t, 2, all.Summary.ByStatus[models.ProposalStatusEnded])

	open, err := list.Run(h.ctx, usecase.ProposalFilter{Status: models.ProposalStatusOpen})
	require.NoError(t, err)
	require.Len(t, open.Proposals, 1)
	assert.Equal(t, "Upgrade treasury", open.Proposals[0].Proposal.Description)

	unsettled := false
	found, err := list.Run(h.ctx, usecase.ProposalFilter{Settled: &unsettled, Query: "fund"})
	require.NoError(t, err)
	require.NotEmpty(t, found.Proposals)
	assert.Equal(t, "Fund the marketing budget", found.Proposals[0].Proposal.Description)

	selector := &MockProposalSelector{}
	selector.On("SelectProposal", mock.Anything, mock.MatchedBy(func(ps []*models.Proposal) bool {
		return len(ps) == 1
	}), "Select proposal").Return(&models.Proposal{ID: 2}, nil)

	id, err := usecase.NewSelectProposal(list, selector).Run(h.ctx, usecase.ProposalFilter{Status: models.ProposalStatusOpen}, "Select proposal")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
	selector.AssertExpectations(t)

	_, err = usecase.NewSelectProposal(list, selector).Run(h.ctx, usecase.ProposalFilter{Status: models.ProposalStatusAccepted}, "Select proposal")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cancelled := &MockProposalSelector{}
	cancelled.On("SelectProposal", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("selection cancelled"))
	_, err = usecase.NewSelectProposal(list, cancelled).Run(h.ctx, usecase.ProposalFilter{}, "Select proposal")
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"259200", 72 * time.Hour},
		{"3d", 72 * time.Hour},
		{"90m", 90 * time.Minute},
	}
	for _, tt := range tests {
		got, err := usecase.ParseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	invalid := []string{
		"xd",
		"-60",
		"-2d",
		"-5m",
		"10000000000",         // ~317 years of seconds
		"9223372036854775807", // max int64 seconds
		"200000d",
		"999999999999h",
	}
	for _, in := range invalid {
		_, err := usecase.ParseDuration(in)
		assert.Error(t, err, in)
	}

	// largest whole-second and whole-day windows still fit
	got, err := usecase.ParseDuration("9223372036")
	require.NoError(t, err)
	assert.Equal(t, 9223372036*time.Second, got)
	got, err = usecase.ParseDuration("106751d")
	require.NoError(t, err)
	assert.Equal(t, 106751*24*time.Hour, got)
}

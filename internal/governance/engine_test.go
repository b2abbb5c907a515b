package governance_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/daovote/internal/chain"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"github.com/trebuchet-org/daovote/internal/governance"
)

var (
	chairman   = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	alice      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob        = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	tokenOwner = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	tokenAddr  = common.HexToAddress("0x0000000000000000000000000000000000000707")
	govAddr    = common.HexToAddress("0x0000000000000000000000000000000000000600")
	targetAddr = common.HexToAddress("0x0000000000000000000000000000000000000777")

	genesis = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	minDur  = 3 * 24 * time.Hour
)

type fixture struct {
	ctx     context.Context
	host    *chain.Host
	token   *chain.ERC20
	clock   *chain.ManualClock
	engine  *governance.Engine
	metrics *governance.Metrics
}

func newFixture(t *testing.T, quorum int64) *fixture {
	t.Helper()
	ctx := context.Background()
	host := chain.NewHost()
	token := chain.NewERC20(&models.TokenLedger{Name: "Vote", Symbol: "VOTE", Owner: tokenOwner})
	host.Register(tokenAddr, token)

	clock := chain.NewManualClock(genesis)
	metrics := governance.NewMetrics(prometheus.NewRegistry())
	state := models.NewGovernanceState(chairman, tokenAddr, big.NewInt(quorum), minDur)
	engine := governance.NewEngine(govAddr, state, host,
		governance.WithClock(clock),
		governance.WithMetrics(metrics),
	)
	host.Register(govAddr, engine)

	return &fixture{ctx: ctx, host: host, token: token, clock: clock, engine: engine, metrics: metrics}
}

// fund mints amount to holder and approves the engine for it
func (f *fixture) fund(t *testing.T, holder common.Address, amount int64) {
	t.Helper()
	require.NoError(t, f.token.Mint(tokenOwner, holder, big.NewInt(amount)))
	require.NoError(t, f.token.Approve(holder, govAddr, big.NewInt(amount)))
}

func (f *fixture) deposit(t *testing.T, holder common.Address, amount int64) {
	t.Helper()
	f.fund(t, holder, amount)
	require.NoError(t, f.engine.Deposit(f.ctx, holder, big.NewInt(amount)))
}

func (f *fixture) propose(t *testing.T, target common.Address, data []byte) uint64 {
	t.Helper()
	id, err := f.engine.AddProposal(f.ctx, chairman, "test", 0, target, data)
	require.NoError(t, err)
	return id
}

func (f *fixture) balance(t *testing.T, holder common.Address) int64 {
	t.Helper()
	b, err := f.token.BalanceOf(f.ctx, holder)
	require.NoError(t, err)
	return b.Int64()
}

// countingTarget records every call it receives
type countingTarget struct {
	calls []common.Address
	data  [][]byte
	err   error
}

func (c *countingTarget) Call(_ context.Context, caller common.Address, data []byte) ([]byte, error) {
	c.calls = append(c.calls, caller)
	c.data = append(c.data, data)
	if c.err != nil {
		return nil, c.err
	}
	return []byte{0x01}, nil
}

// reentrantTarget tries to finish the proposal that is invoking it
type reentrantTarget struct {
	engine *governance.Engine
	id     uint64
	err    error
}

func (r *reentrantTarget) Call(ctx context.Context, caller common.Address, _ []byte) ([]byte, error) {
	_, r.err = r.engine.FinishProposal(ctx, caller, r.id)
	return nil, nil
}

func TestEngine_Deposit(t *testing.T) {
	t.Run("credits balance and pulls tokens", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 100)
		f.deposit(t, alice, 50)

		balance, unlock := f.engine.DepositorInfo(alice)
		assert.Equal(t, int64(150), balance.Int64())
		assert.True(t, unlock.IsZero())
		assert.Equal(t, int64(150), f.balance(t, govAddr))
		assert.Equal(t, int64(0), f.balance(t, alice))
		assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.Deposits))
	})

	t.Run("without allowance", func(t *testing.T) {
		f := newFixture(t, 0)
		require.NoError(t, f.token.Mint(tokenOwner, alice, big.NewInt(100)))

		err := f.engine.Deposit(f.ctx, alice, big.NewInt(100))
		assert.ErrorIs(t, err, domain.ErrTransferFailed)
		assert.ErrorIs(t, err, chain.ErrInsufficientAllowance)

		balance, _ := f.engine.DepositorInfo(alice)
		assert.Equal(t, int64(0), balance.Int64())
	})

	t.Run("token missing", func(t *testing.T) {
		f := newFixture(t, 0)
		require.NoError(t, f.engine.SetTokenAddress(f.ctx, chairman, targetAddr))
		err := f.engine.Deposit(f.ctx, alice, big.NewInt(1))
		assert.ErrorIs(t, err, domain.ErrTransferFailed)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		f := newFixture(t, 0)
		assert.ErrorIs(t, f.engine.Deposit(f.ctx, alice, big.NewInt(0)), domain.ErrInvalidAmount)
		assert.ErrorIs(t, f.engine.Deposit(f.ctx, alice, big.NewInt(-5)), domain.ErrInvalidAmount)
	})
}

func TestEngine_AddProposal(t *testing.T) {
	t.Run("only chairman", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.engine.AddProposal(f.ctx, alice, "x", 0, targetAddr, nil)

		var unauthorized domain.UnauthorizedError
		require.True(t, errors.As(err, &unauthorized))
		assert.Equal(t, alice, unauthorized.Caller)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Equal(t, uint64(0), f.engine.LastIndex())
	})

	t.Run("duration floor", func(t *testing.T) {
		tests := []struct {
			name      string
			requested time.Duration
			want      time.Duration
		}{
			{"zero", 0, minDur},
			{"negative", -time.Hour, minDur},
			{"below floor", time.Hour, minDur},
			{"above floor", 10 * 24 * time.Hour, 10 * 24 * time.Hour},
		}
		f := newFixture(t, 0)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				id, err := f.engine.AddProposal(f.ctx, chairman, tt.name, tt.requested, targetAddr, nil)
				require.NoError(t, err)
				p, err := f.engine.Proposal(id)
				require.NoError(t, err)
				assert.Equal(t, tt.want, p.EndTime.Sub(p.CreatedAt))
				assert.Equal(t, genesis, p.CreatedAt)
			})
		}
	})

	t.Run("ids are sequential from one", func(t *testing.T) {
		f := newFixture(t, 0)
		assert.Equal(t, uint64(1), f.propose(t, targetAddr, nil))
		assert.Equal(t, uint64(2), f.propose(t, targetAddr, nil))
		assert.Equal(t, uint64(2), f.engine.LastIndex())

		_, err := f.engine.Proposal(3)
		assert.ErrorIs(t, err, domain.ErrNoSuchProposal)
	})

	t.Run("timestamps have second resolution", func(t *testing.T) {
		f := newFixture(t, 0)
		f.clock.Set(genesis.Add(1500 * time.Millisecond))
		id := f.propose(t, targetAddr, nil)
		p, _ := f.engine.Proposal(id)
		assert.Equal(t, genesis.Add(time.Second), p.CreatedAt)
	})
}

func TestEngine_Vote(t *testing.T) {
	t.Run("records vote and raises unlock time", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 100)
		id := f.propose(t, targetAddr, nil)

		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(60), true))

		p, _ := f.engine.Proposal(id)
		assert.Equal(t, int64(60), p.ForVotes.Int64())
		assert.Equal(t, int64(0), p.AgainstVotes.Int64())
		assert.Equal(t, int64(60), f.engine.Votes(id, alice).Int64())
		assert.Equal(t, int64(0), f.engine.Votes(id, bob).Int64())

		balance, unlock := f.engine.DepositorInfo(alice)
		assert.Equal(t, int64(100), balance.Int64(), "voting never debits the deposit")
		assert.Equal(t, p.EndTime, unlock)

		record, ok := f.engine.VoteRecord(id, alice)
		require.True(t, ok)
		assert.True(t, record.Support)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.VotesCast.WithLabelValues("for")))
	})

	t.Run("same balance backs two proposals", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 100)
		first := f.propose(t, targetAddr, nil)
		f.clock.Advance(time.Hour)
		second := f.propose(t, targetAddr, nil)

		require.NoError(t, f.engine.Vote(f.ctx, alice, first, big.NewInt(100), true))
		require.NoError(t, f.engine.Vote(f.ctx, alice, second, big.NewInt(100), false))

		p2, _ := f.engine.Proposal(second)
		_, unlock := f.engine.DepositorInfo(alice)
		assert.Equal(t, p2.EndTime, unlock)
	})

	t.Run("unlock time is never lowered", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 100)
		long, err := f.engine.AddProposal(f.ctx, chairman, "long", 30*24*time.Hour, targetAddr, nil)
		require.NoError(t, err)
		short := f.propose(t, targetAddr, nil)

		require.NoError(t, f.engine.Vote(f.ctx, alice, long, big.NewInt(1), true))
		require.NoError(t, f.engine.Vote(f.ctx, alice, short, big.NewInt(1), true))

		p, _ := f.engine.Proposal(long)
		_, unlock := f.engine.DepositorInfo(alice)
		assert.Equal(t, p.EndTime, unlock)
	})

	t.Run("failure cases", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 100)
		id := f.propose(t, targetAddr, nil)
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(10), true))

		assert.ErrorIs(t, f.engine.Vote(f.ctx, alice, 99, big.NewInt(1), true), domain.ErrNoSuchProposal)
		assert.ErrorIs(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(1), false), domain.ErrAlreadyVoted)
		assert.ErrorIs(t, f.engine.Vote(f.ctx, bob, id, big.NewInt(1), true), domain.ErrInsufficientVotingPower)
		assert.ErrorIs(t, f.engine.Vote(f.ctx, bob, id, big.NewInt(0), true), domain.ErrInvalidAmount)

		second := f.propose(t, targetAddr, nil)
		assert.ErrorIs(t, f.engine.Vote(f.ctx, alice, second, big.NewInt(101), true), domain.ErrInsufficientVotingPower)

		p, _ := f.engine.Proposal(id)
		f.clock.Set(p.EndTime)
		assert.ErrorIs(t, f.engine.Vote(f.ctx, alice, second, big.NewInt(1), true), domain.ErrVotingEnded)
	})
}

func TestEngine_FinishProposal(t *testing.T) {
	t.Run("debate not over", func(t *testing.T) {
		f := newFixture(t, 0)
		id := f.propose(t, targetAddr, nil)
		p, _ := f.engine.Proposal(id)

		f.clock.Set(p.EndTime.Add(-time.Second))
		_, err := f.engine.FinishProposal(f.ctx, bob, id)
		assert.ErrorIs(t, err, domain.ErrDebateNotOver)

		_, err = f.engine.FinishProposal(f.ctx, bob, 42)
		assert.ErrorIs(t, err, domain.ErrNoSuchProposal)
	})

	t.Run("accepted proposal calls target exactly once", func(t *testing.T) {
		f := newFixture(t, 50)
		target := &countingTarget{}
		f.host.Register(targetAddr, target)
		f.deposit(t, alice, 100)
		f.deposit(t, bob, 40)

		id := f.propose(t, targetAddr, []byte{0xca, 0xfe})
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(60), true))
		require.NoError(t, f.engine.Vote(f.ctx, bob, id, big.NewInt(40), false))

		f.clock.Advance(minDur)
		settlement, err := f.engine.FinishProposal(f.ctx, bob, id)
		require.NoError(t, err)
		assert.True(t, settlement.Accepted)
		assert.True(t, settlement.CallAttempted)
		assert.NoError(t, settlement.CallError)
		assert.Equal(t, []byte{0x01}, settlement.ReturnData)

		require.Len(t, target.calls, 1)
		assert.Equal(t, govAddr, target.calls[0])
		assert.Equal(t, []byte{0xca, 0xfe}, target.data[0])

		p, _ := f.engine.Proposal(id)
		assert.True(t, p.Settled)
		assert.True(t, p.Accepted)
		assert.True(t, p.Executed)
		assert.Equal(t, models.ProposalStatusAccepted, p.Status(f.engine.Now()))

		_, err = f.engine.FinishProposal(f.ctx, bob, id)
		assert.ErrorIs(t, err, domain.ErrAlreadySettled)
		assert.Len(t, target.calls, 1)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Settlements.WithLabelValues(governance.OutcomeAccepted)))
	})

	t.Run("tie is rejected without a call", func(t *testing.T) {
		f := newFixture(t, 0)
		target := &countingTarget{}
		f.host.Register(targetAddr, target)
		f.deposit(t, alice, 10)
		f.deposit(t, bob, 10)

		id := f.propose(t, targetAddr, nil)
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(10), true))
		require.NoError(t, f.engine.Vote(f.ctx, bob, id, big.NewInt(10), false))

		f.clock.Advance(minDur)
		settlement, err := f.engine.FinishProposal(f.ctx, alice, id)
		require.NoError(t, err)
		assert.False(t, settlement.Accepted)
		assert.False(t, settlement.CallAttempted)
		assert.Empty(t, target.calls)

		p, _ := f.engine.Proposal(id)
		assert.True(t, p.Settled)
		assert.False(t, p.Accepted)
		assert.Equal(t, models.ProposalStatusRejected, p.Status(f.engine.Now()))
	})

	t.Run("quorum not met leaves proposal unsettled", func(t *testing.T) {
		f := newFixture(t, 100)
		f.deposit(t, alice, 99)
		id := f.propose(t, targetAddr, nil)
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(99), true))

		f.clock.Advance(minDur)
		_, err := f.engine.FinishProposal(f.ctx, alice, id)
		var quorum domain.QuorumNotMetError
		require.True(t, errors.As(err, &quorum))
		assert.Equal(t, int64(99), quorum.Actual.Int64())
		assert.Equal(t, int64(100), quorum.Required.Int64())
		assert.ErrorIs(t, err, domain.ErrQuorumNotMet)

		p, _ := f.engine.Proposal(id)
		assert.False(t, p.Settled)
		assert.Equal(t, models.ProposalStatusEnded, p.Status(f.engine.Now()))

		// lowering the bar later lets the same proposal settle
		require.NoError(t, f.engine.SetMinimumQuorum(f.ctx, chairman, big.NewInt(99)))
		settlement, err := f.engine.FinishProposal(f.ctx, alice, id)
		require.NoError(t, err)
		assert.True(t, settlement.Accepted)
	})

	t.Run("quorum is read at settlement", func(t *testing.T) {
		f := newFixture(t, 10)
		f.deposit(t, alice, 50)
		id := f.propose(t, targetAddr, nil)
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(50), true))

		require.NoError(t, f.engine.SetMinimumQuorum(f.ctx, chairman, big.NewInt(51)))
		f.clock.Advance(minDur)
		_, err := f.engine.FinishProposal(f.ctx, alice, id)
		assert.ErrorIs(t, err, domain.ErrQuorumNotMet)
	})

	t.Run("failing call keeps settlement", func(t *testing.T) {
		f := newFixture(t, 0)
		boom := errors.New("boom")
		f.host.Register(targetAddr, &countingTarget{err: boom})
		f.deposit(t, alice, 10)
		id := f.propose(t, targetAddr, nil)
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(10), true))

		f.clock.Advance(minDur)
		settlement, err := f.engine.FinishProposal(f.ctx, alice, id)
		require.NoError(t, err)
		assert.True(t, settlement.Accepted)
		assert.ErrorIs(t, settlement.CallError, boom)

		p, _ := f.engine.Proposal(id)
		assert.True(t, p.Settled)
		assert.False(t, p.Executed)
		assert.Equal(t, "boom", p.ExecutionError)

		_, err = f.engine.FinishProposal(f.ctx, alice, id)
		assert.ErrorIs(t, err, domain.ErrAlreadySettled)
	})

	t.Run("reentrant finish sees settled proposal", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 10)
		reentrant := &reentrantTarget{engine: f.engine}
		f.host.Register(targetAddr, reentrant)
		id := f.propose(t, targetAddr, nil)
		reentrant.id = id
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(10), true))

		f.clock.Advance(minDur)
		settlement, err := f.engine.FinishProposal(f.ctx, alice, id)
		require.NoError(t, err)
		assert.True(t, settlement.Accepted)
		assert.ErrorIs(t, reentrant.err, domain.ErrAlreadySettled)
	})
}

func TestEngine_ReturnDeposit(t *testing.T) {
	t.Run("nothing deposited", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.engine.ReturnDeposit(f.ctx, alice)
		assert.ErrorIs(t, err, domain.ErrNoDeposit)
	})

	t.Run("without votes returns immediately", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 100)
		amount, err := f.engine.ReturnDeposit(f.ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(100), amount.Int64())
		assert.Equal(t, int64(100), f.balance(t, alice))

		_, err = f.engine.ReturnDeposit(f.ctx, alice)
		assert.ErrorIs(t, err, domain.ErrNoDeposit)
	})

	t.Run("locked until end of voted proposal", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 100)
		id := f.propose(t, targetAddr, nil)
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(100), true))
		p, _ := f.engine.Proposal(id)

		f.clock.Set(p.EndTime.Add(-time.Second))
		_, err := f.engine.ReturnDeposit(f.ctx, alice)
		assert.ErrorIs(t, err, domain.ErrDepositLocked)

		f.clock.Set(p.EndTime)
		amount, err := f.engine.ReturnDeposit(f.ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(100), amount.Int64())

		balance, unlock := f.engine.DepositorInfo(alice)
		assert.Equal(t, int64(0), balance.Int64())
		assert.True(t, unlock.IsZero())
	})

	t.Run("failed transfer leaves state untouched", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 100)
		// drain custody through a second token so the payout fails
		other := chain.NewERC20(&models.TokenLedger{Owner: tokenOwner})
		otherAddr := common.HexToAddress("0x0000000000000000000000000000000000000808")
		f.host.Register(otherAddr, other)
		require.NoError(t, f.engine.SetTokenAddress(f.ctx, chairman, otherAddr))

		_, err := f.engine.ReturnDeposit(f.ctx, alice)
		assert.ErrorIs(t, err, domain.ErrTransferFailed)
		assert.ErrorIs(t, err, chain.ErrInsufficientBalance)

		balance, _ := f.engine.DepositorInfo(alice)
		assert.Equal(t, int64(100), balance.Int64())
	})
}

func TestEngine_ChairmanElection(t *testing.T) {
	t.Run("accepted election replaces chairman", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 10)

		id, err := f.engine.StartChairmanElection(f.ctx, chairman, bob, 0)
		require.NoError(t, err)
		p, _ := f.engine.Proposal(id)
		assert.Equal(t, models.ProposalKindChairmanElection, p.Kind)
		assert.Equal(t, govAddr, p.Target)
		require.NotNil(t, p.Candidate)
		assert.Equal(t, bob, *p.Candidate)

		candidate, err := governance.DecodeChangeChairman(p.CallData)
		require.NoError(t, err)
		assert.Equal(t, bob, candidate)

		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(10), true))
		f.clock.Advance(minDur)
		settlement, err := f.engine.FinishProposal(f.ctx, alice, id)
		require.NoError(t, err)
		require.NoError(t, settlement.CallError)

		assert.Equal(t, bob, f.engine.Chairman())
		assert.True(t, f.engine.IsPrivileged(bob))
		assert.False(t, f.engine.IsPrivileged(chairman))

		_, err = f.engine.AddProposal(f.ctx, chairman, "old chairman", 0, targetAddr, nil)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		_, err = f.engine.AddProposal(f.ctx, bob, "new chairman", 0, targetAddr, nil)
		assert.NoError(t, err)
	})

	t.Run("rejected election keeps chairman", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 10)
		id, err := f.engine.StartChairmanElection(f.ctx, chairman, bob, 0)
		require.NoError(t, err)
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(10), false))
		f.clock.Advance(minDur)
		_, err = f.engine.FinishProposal(f.ctx, alice, id)
		require.NoError(t, err)
		assert.Equal(t, chairman, f.engine.Chairman())
	})

	t.Run("direct invocation is forbidden", func(t *testing.T) {
		f := newFixture(t, 0)
		assert.ErrorIs(t, f.engine.ChangeChairman(f.ctx, chairman, bob), domain.ErrDirectInvocationForbidden)

		data, err := governance.EncodeChangeChairman(bob)
		require.NoError(t, err)

		_, err = f.host.Call(f.ctx, chairman, govAddr, data)
		assert.ErrorIs(t, err, domain.ErrDirectInvocationForbidden)

		// even the engine's own address outside settlement
		_, err = f.engine.Call(f.ctx, govAddr, data)
		assert.ErrorIs(t, err, domain.ErrDirectInvocationForbidden)
		assert.Equal(t, chairman, f.engine.Chairman())
	})

	t.Run("generic proposal bundling changeChairman", func(t *testing.T) {
		f := newFixture(t, 0)
		f.deposit(t, alice, 10)
		data, err := governance.EncodeChangeChairman(bob)
		require.NoError(t, err)
		id := f.propose(t, govAddr, data)
		require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(10), true))
		f.clock.Advance(minDur)
		_, err = f.engine.FinishProposal(f.ctx, alice, id)
		require.NoError(t, err)
		assert.Equal(t, bob, f.engine.Chairman())
	})

	t.Run("unknown selector", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.engine.Call(f.ctx, govAddr, []byte{1, 2, 3, 4})
		assert.ErrorIs(t, err, domain.ErrUnknownMethod)
	})
}

func TestEngine_ChairmanSettings(t *testing.T) {
	f := newFixture(t, 0)

	assert.ErrorIs(t, f.engine.SetMinimumQuorum(f.ctx, alice, big.NewInt(5)), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.engine.SetTokenAddress(f.ctx, alice, targetAddr), domain.ErrUnauthorized)

	require.NoError(t, f.engine.SetMinimumQuorum(f.ctx, chairman, big.NewInt(5)))
	require.NoError(t, f.engine.SetTokenAddress(f.ctx, chairman, targetAddr))
	assert.Equal(t, int64(5), f.engine.MinimumQuorum().Int64())
	assert.Equal(t, targetAddr, f.engine.TokenAddress())
	assert.Equal(t, minDur, f.engine.MinimumDuration())
	assert.Equal(t, govAddr, f.engine.Address())
}

func TestEngine_EndToEnd(t *testing.T) {
	// a proposal asking the governance treasury for tokens
	f := newFixture(t, 150)
	f.deposit(t, alice, 100)
	f.deposit(t, bob, 100)
	require.NoError(t, f.token.Mint(tokenOwner, govAddr, big.NewInt(1000)))

	data, err := chain.ERC20ABI.Pack("transfer", alice, big.NewInt(100))
	require.NoError(t, err)
	id, err := f.engine.AddProposal(f.ctx, chairman, "Give me 100 tokens", 0, tokenAddr, data)
	require.NoError(t, err)

	require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(100), true))
	require.NoError(t, f.engine.Vote(f.ctx, bob, id, big.NewInt(60), false))

	_, err = f.engine.ReturnDeposit(f.ctx, alice)
	assert.ErrorIs(t, err, domain.ErrDepositLocked)

	f.clock.Advance(minDur)
	settlement, err := f.engine.FinishProposal(f.ctx, bob, id)
	require.NoError(t, err)
	require.True(t, settlement.Accepted)
	require.NoError(t, settlement.CallError)
	assert.Equal(t, int64(100), f.balance(t, alice))

	amount, err := f.engine.ReturnDeposit(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount.Int64())
	assert.Equal(t, int64(200), f.balance(t, alice))

	proposals := f.engine.Proposals()
	require.Len(t, proposals, 1)
	assert.Equal(t, "Give me 100 tokens", proposals[0].Description)
}

func TestEngine_FullDepositLifecycle(t *testing.T) {
	f := newFixture(t, 0)
	f.deposit(t, alice, 1000)

	created := f.clock.Now()
	id, err := f.engine.AddProposal(f.ctx, chairman, "three day vote", 3*24*time.Hour, targetAddr, nil)
	require.NoError(t, err)
	require.NoError(t, f.engine.Vote(f.ctx, alice, id, big.NewInt(1000), true))

	balance, unlock := f.engine.DepositorInfo(alice)
	assert.Equal(t, int64(1000), balance.Int64())
	assert.Equal(t, created.Add(3*24*time.Hour), unlock)

	f.clock.Set(unlock.Add(-time.Second))
	_, err = f.engine.ReturnDeposit(f.ctx, alice)
	assert.ErrorIs(t, err, domain.ErrDepositLocked)

	f.clock.Set(unlock)
	amount, err := f.engine.ReturnDeposit(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), amount.Int64())
	assert.Equal(t, int64(1000), f.balance(t, alice))

	balance, _ = f.engine.DepositorInfo(alice)
	assert.Zero(t, balance.Sign())
}

func TestEngine_ChairmanElectionByThreeDepositors(t *testing.T) {
	carol := common.HexToAddress("0x00000000000000000000000000000000000000ca")
	f := newFixture(t, 250)
	voters := map[common.Address]int64{alice: 100, bob: 80, carol: 120}
	for voter, amount := range voters {
		f.deposit(t, voter, amount)
	}

	id, err := f.engine.StartChairmanElection(f.ctx, chairman, carol, 0)
	require.NoError(t, err)
	for voter, amount := range voters {
		require.NoError(t, f.engine.Vote(f.ctx, voter, id, big.NewInt(amount), true))
	}

	p, err := f.engine.Proposal(id)
	require.NoError(t, err)
	assert.Equal(t, int64(300), p.ForVotes.Int64())
	assert.Zero(t, p.AgainstVotes.Sign())

	f.clock.Advance(minDur)
	settlement, err := f.engine.FinishProposal(f.ctx, bob, id)
	require.NoError(t, err)
	assert.True(t, settlement.Accepted)
	require.NoError(t, settlement.CallError)
	assert.Equal(t, carol, f.engine.Chairman())

	data, err := governance.EncodeChangeChairman(alice)
	require.NoError(t, err)
	for _, caller := range []common.Address{chairman, alice, bob, carol, govAddr} {
		_, err := f.host.Call(f.ctx, caller, govAddr, data)
		assert.ErrorIs(t, err, domain.ErrDirectInvocationForbidden, caller.Hex())
		assert.ErrorIs(t, f.engine.ChangeChairman(f.ctx, caller, alice), domain.ErrDirectInvocationForbidden, caller.Hex())
	}
	assert.Equal(t, carol, f.engine.Chairman())
}

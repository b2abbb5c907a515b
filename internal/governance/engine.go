package governance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// Engine is the proposal, voting and settlement state machine.
//
// Engine is not safe for concurrent use. Callers serialize operations; the
// only re-entry happens on the calling goroutine through the bundled call
// performed by FinishProposal.
type Engine struct {
	address common.Address
	state   *models.GovernanceState
	host    Host
	clock   Clock
	metrics *Metrics
	logger  *slog.Logger

	// executing is raised only while settlement performs a bundled call
	executing bool
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the time source
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics collectors
func WithMetrics(metrics *Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// NewEngine wraps state as the governance contract living at address on host
func NewEngine(address common.Address, state *models.GovernanceState, host Host, opts ...Option) *Engine {
	state.EnsureMaps()
	e := &Engine{
		address: address,
		state:   state,
		host:    host,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = ClockFunc(time.Now)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// now has one-second resolution, like a block timestamp
func (e *Engine) now() time.Time {
	return e.clock.Now().UTC().Truncate(time.Second)
}

// IsPrivileged reports whether caller is the chairman
func (e *Engine) IsPrivileged(caller common.Address) bool {
	return caller == e.state.Chairman
}

func (e *Engine) requirePrivileged(caller common.Address) error {
	if !e.IsPrivileged(caller) {
		return domain.UnauthorizedError{Caller: caller}
	}
	return nil
}

// Deposit pulls amount tokens from caller into custody and credits its voting power
func (e *Engine) Deposit(ctx context.Context, caller common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}

	token, err := e.host.Token(e.state.TokenAddress)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}
	if err := token.TransferFrom(ctx, e.address, caller, e.address, amount); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}

	depositor, ok := e.state.Depositors[caller]
	if !ok {
		depositor = &models.Depositor{Balance: new(big.Int)}
		e.state.Depositors[caller] = depositor
	}
	depositor.Balance = new(big.Int).Add(depositor.Balance, amount)

	e.metrics.Deposits.Inc()
	e.logger.Info("deposit",
		"component", "governance",
		"depositor", caller.Hex(),
		"amount", amount.String(),
		"balance", depositor.Balance.String(),
	)
	return nil
}

// ReturnDeposit sends the caller's whole balance back once its unlock time has passed
func (e *Engine) ReturnDeposit(ctx context.Context, caller common.Address) (*big.Int, error) {
	depositor, ok := e.state.Depositors[caller]
	if !ok || depositor.Balance == nil || depositor.Balance.Sign() == 0 {
		return nil, domain.ErrNoDeposit
	}
	if depositor.IsLocked(e.now()) {
		return nil, fmt.Errorf("%w: unlocks at %s", domain.ErrDepositLocked, depositor.UnlockTime.Format(time.RFC3339))
	}

	amount := new(big.Int).Set(depositor.Balance)
	token, err := e.host.Token(e.state.TokenAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}
	if err := token.Transfer(ctx, e.address, caller, amount); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}

	depositor.Balance = new(big.Int)
	depositor.UnlockTime = time.Time{}

	e.metrics.Withdrawals.Inc()
	e.logger.Info("deposit returned",
		"component", "governance",
		"depositor", caller.Hex(),
		"amount", amount.String(),
	)
	return amount, nil
}

// AddProposal creates a proposal bundling a call of callData on target.
// The debate window is never shorter than the minimum duration.
func (e *Engine) AddProposal(
	ctx context.Context,
	caller common.Address,
	description string,
	duration time.Duration,
	target common.Address,
	callData []byte,
) (uint64, error) {
	if err := e.requirePrivileged(caller); err != nil {
		return 0, err
	}
	return e.addProposal(caller, models.ProposalKindGeneric, description, duration, target, callData, nil), nil
}

// StartChairmanElection creates a proposal that, once accepted, makes candidate the chairman
func (e *Engine) StartChairmanElection(
	ctx context.Context,
	caller common.Address,
	candidate common.Address,
	duration time.Duration,
) (uint64, error) {
	if err := e.requirePrivileged(caller); err != nil {
		return 0, err
	}
	callData, err := EncodeChangeChairman(candidate)
	if err != nil {
		return 0, fmt.Errorf("failed to encode changeChairman call: %w", err)
	}
	description := fmt.Sprintf("Elect %s as chairman", candidate.Hex())
	return e.addProposal(caller, models.ProposalKindChairmanElection, description, duration, e.address, callData, &candidate), nil
}

func (e *Engine) addProposal(
	proposer common.Address,
	kind models.ProposalKind,
	description string,
	duration time.Duration,
	target common.Address,
	callData []byte,
	candidate *common.Address,
) uint64 {
	now := e.now()
	effective := max(duration, e.state.MinimumDuration)

	e.state.LastIndex++
	id := e.state.LastIndex
	e.state.Proposals[id] = &models.Proposal{
		ID:           id,
		Kind:         kind,
		Description:  description,
		Proposer:     proposer,
		CreatedAt:    now,
		EndTime:      now.Add(effective),
		Target:       target,
		CallData:     append([]byte(nil), callData...),
		Candidate:    candidate,
		ForVotes:     new(big.Int),
		AgainstVotes: new(big.Int),
	}

	e.metrics.ProposalsCreated.Inc()
	e.logger.Info("proposal created",
		"component", "governance",
		"id", id,
		"kind", kind,
		"target", target.Hex(),
		"endTime", now.Add(effective).Format(time.RFC3339),
	)
	return id
}

// Vote commits weight of the caller's deposit for or against a proposal.
// Weight is capped by the deposit but not deducted from it.
func (e *Engine) Vote(ctx context.Context, caller common.Address, id uint64, weight *big.Int, support bool) error {
	proposal, ok := e.state.Proposals[id]
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrNoSuchProposal, id)
	}
	if !proposal.IsOpen(e.now()) {
		return domain.ErrVotingEnded
	}
	if _, voted := e.state.Votes[id][caller]; voted {
		return domain.ErrAlreadyVoted
	}
	if weight == nil || weight.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	depositor, ok := e.state.Depositors[caller]
	if !ok || weight.Cmp(depositor.Balance) > 0 {
		return domain.ErrInsufficientVotingPower
	}

	if e.state.Votes[id] == nil {
		e.state.Votes[id] = make(map[common.Address]*models.VoteRecord)
	}
	e.state.Votes[id][caller] = &models.VoteRecord{
		Weight:  new(big.Int).Set(weight),
		Support: support,
		CastAt:  e.now(),
	}
	if support {
		proposal.ForVotes = new(big.Int).Add(proposal.ForVotes, weight)
	} else {
		proposal.AgainstVotes = new(big.Int).Add(proposal.AgainstVotes, weight)
	}
	if proposal.EndTime.After(depositor.UnlockTime) {
		depositor.UnlockTime = proposal.EndTime
	}

	e.metrics.VotesCast.WithLabelValues(sideLabel(support)).Inc()
	e.logger.Info("vote cast",
		"component", "governance",
		"id", id,
		"voter", caller.Hex(),
		"weight", weight.String(),
		"side", sideLabel(support),
	)
	return nil
}

// FinishProposal settles a proposal whose debate window has closed.
//
// Quorum is checked against the live minimum before anything is written, so
// a proposal that misses quorum stays unsettled and can be finished again
// later. On success the proposal is marked settled before the bundled call
// runs; a failing call is recorded on the proposal and in the returned
// Settlement but does not undo the settlement.
func (e *Engine) FinishProposal(ctx context.Context, caller common.Address, id uint64) (*models.Settlement, error) {
	proposal, ok := e.state.Proposals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrNoSuchProposal, id)
	}
	now := e.now()
	if proposal.IsOpen(now) {
		return nil, domain.ErrDebateNotOver
	}
	if proposal.Settled {
		return nil, domain.ErrAlreadySettled
	}
	total := proposal.TotalVotes()
	if total.Cmp(e.state.MinimumQuorum) < 0 {
		e.metrics.Settlements.WithLabelValues(OutcomeQuorumNotMet).Inc()
		return nil, domain.QuorumNotMetError{
			Actual:   total,
			Required: new(big.Int).Set(e.state.MinimumQuorum),
		}
	}

	proposal.Settled = true
	proposal.SettledAt = &now
	settlement := &models.Settlement{ProposalID: id}

	if proposal.ForVotes.Cmp(proposal.AgainstVotes) <= 0 {
		proposal.Accepted = false
		e.metrics.Settlements.WithLabelValues(OutcomeRejected).Inc()
		e.logger.Info("proposal rejected",
			"component", "governance",
			"id", id,
			"for", proposal.ForVotes.String(),
			"against", proposal.AgainstVotes.String(),
		)
		return settlement, nil
	}

	proposal.Accepted = true
	settlement.Accepted = true
	settlement.CallAttempted = true

	ret, err := e.execute(ctx, proposal)
	if err != nil {
		proposal.ExecutionError = err.Error()
		settlement.CallError = err
		e.metrics.Settlements.WithLabelValues(OutcomeCallFailed).Inc()
		e.logger.Warn("proposal accepted but call failed",
			"component", "governance",
			"id", id,
			"target", proposal.Target.Hex(),
			"error", err,
		)
		return settlement, nil
	}

	proposal.Executed = true
	settlement.ReturnData = ret
	e.metrics.Settlements.WithLabelValues(OutcomeAccepted).Inc()
	e.logger.Info("proposal accepted",
		"component", "governance",
		"id", id,
		"target", proposal.Target.Hex(),
	)
	return settlement, nil
}

func (e *Engine) execute(ctx context.Context, proposal *models.Proposal) ([]byte, error) {
	previous := e.executing
	e.executing = true
	defer func() {
		e.executing = previous
	}()
	return e.host.Call(ctx, e.address, proposal.Target, proposal.CallData)
}

// SetMinimumQuorum changes the turnout required by every future settlement
func (e *Engine) SetMinimumQuorum(ctx context.Context, caller common.Address, amount *big.Int) error {
	if err := e.requirePrivileged(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	e.state.MinimumQuorum = new(big.Int).Set(amount)
	e.logger.Info("minimum quorum changed", "component", "governance", "quorum", amount.String())
	return nil
}

// SetTokenAddress points deposits and withdrawals at another token
func (e *Engine) SetTokenAddress(ctx context.Context, caller common.Address, token common.Address) error {
	if err := e.requirePrivileged(caller); err != nil {
		return err
	}
	e.state.TokenAddress = token
	e.logger.Info("token address changed", "component", "governance", "token", token.Hex())
	return nil
}

// ChangeChairman always fails: the chairman only changes through a settled election
func (e *Engine) ChangeChairman(ctx context.Context, caller common.Address, candidate common.Address) error {
	return domain.ErrDirectInvocationForbidden
}

// Call dispatches call data addressed to the engine on the host
func (e *Engine) Call(ctx context.Context, caller common.Address, data []byte) ([]byte, error) {
	method, args, err := decodeCall(data)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case methodChangeChairman:
		if caller != e.address || !e.executing {
			return nil, domain.ErrDirectInvocationForbidden
		}
		candidate := args[0].(common.Address)
		previous := e.state.Chairman
		e.state.Chairman = candidate
		e.logger.Info("chairman changed",
			"component", "governance",
			"previous", previous.Hex(),
			"chairman", candidate.Hex(),
		)
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMethod, method.Name)
	}
}

// Address returns the engine's address on the host
func (e *Engine) Address() common.Address { return e.address }

// Chairman returns the privileged address
func (e *Engine) Chairman() common.Address { return e.state.Chairman }

// TokenAddress returns the deposit token
func (e *Engine) TokenAddress() common.Address { return e.state.TokenAddress }

// MinimumQuorum returns the turnout required to settle
func (e *Engine) MinimumQuorum() *big.Int { return new(big.Int).Set(e.state.MinimumQuorum) }

// MinimumDuration returns the debate window floor
func (e *Engine) MinimumDuration() time.Duration { return e.state.MinimumDuration }

// LastIndex returns the id of the most recent proposal, 0 when none exist
func (e *Engine) LastIndex() uint64 { return e.state.LastIndex }

// Now returns the engine's notion of the current time
func (e *Engine) Now() time.Time { return e.now() }

// Proposal returns a copy of the proposal with the given id
func (e *Engine) Proposal(id uint64) (*models.Proposal, error) {
	proposal, ok := e.state.Proposals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrNoSuchProposal, id)
	}
	return proposal.Clone(), nil
}

// Proposals returns copies of all proposals ordered by id
func (e *Engine) Proposals() []*models.Proposal {
	proposals := make([]*models.Proposal, 0, len(e.state.Proposals))
	for _, p := range e.state.Proposals {
		proposals = append(proposals, p.Clone())
	}
	sort.Slice(proposals, func(i, j int) bool {
		return proposals[i].ID < proposals[j].ID
	})
	return proposals
}

// Votes returns the weight voter committed to a proposal, zero when it did not vote
func (e *Engine) Votes(id uint64, voter common.Address) *big.Int {
	if record, ok := e.state.Votes[id][voter]; ok {
		return new(big.Int).Set(record.Weight)
	}
	return new(big.Int)
}

// VoteRecord returns the vote voter cast on a proposal
func (e *Engine) VoteRecord(id uint64, voter common.Address) (*models.VoteRecord, bool) {
	record, ok := e.state.Votes[id][voter]
	if !ok {
		return nil, false
	}
	c := *record
	c.Weight = new(big.Int).Set(record.Weight)
	return &c, true
}

// DepositorInfo returns an address's deposited balance and unlock time
func (e *Engine) DepositorInfo(addr common.Address) (*big.Int, time.Time) {
	depositor, ok := e.state.Depositors[addr]
	if !ok {
		return new(big.Int), time.Time{}
	}
	return new(big.Int).Set(depositor.Balance), depositor.UnlockTime
}

package domain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for governance operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNotInitialized is returned when no governance state has been deployed yet
	ErrNotInitialized = errors.New("governance not initialized")

	// ErrUnauthorized is matched by UnauthorizedError
	ErrUnauthorized = errors.New("sender has no rights")

	// ErrNoSuchProposal is returned for an unknown proposal id
	ErrNoSuchProposal = errors.New("no such proposal")

	// ErrVotingEnded is returned when voting after the debate window closed
	ErrVotingEnded = errors.New("voting has ended")

	// ErrDebateNotOver is returned when finishing a proposal before its end time
	ErrDebateNotOver = errors.New("debating period did not pass")

	// ErrAlreadyVoted is returned on a second vote by the same address
	ErrAlreadyVoted = errors.New("already voted")

	// ErrInsufficientVotingPower is returned when the vote weight exceeds the deposit
	ErrInsufficientVotingPower = errors.New("not enough deposited tokens")

	// ErrAlreadySettled is returned when finishing a proposal twice
	ErrAlreadySettled = errors.New("proposal already finished")

	// ErrQuorumNotMet is matched by QuorumNotMetError
	ErrQuorumNotMet = errors.New("minimal voting quorum not reached")

	// ErrDepositLocked is returned when withdrawing before the unlock time
	ErrDepositLocked = errors.New("deposit duration did not pass")

	// ErrNoDeposit is returned when withdrawing with a zero balance
	ErrNoDeposit = errors.New("nothing deposited")

	// ErrTransferFailed is returned when the token collaborator rejects a transfer
	ErrTransferFailed = errors.New("token transfer failed")

	// ErrDirectInvocationForbidden is returned when changeChairman is not reached through settlement
	ErrDirectInvocationForbidden = errors.New("must be called through a settled proposal")

	// ErrInvalidAmount is returned for zero or negative token amounts
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrUnknownMethod is returned when call data names a method the target does not expose
	ErrUnknownMethod = errors.New("unknown method")
)

// UnauthorizedError is returned when a privileged operation is called by anyone but the chairman
type UnauthorizedError struct {
	Caller common.Address
}

func (e UnauthorizedError) Error() string {
	return fmt.Sprintf("SenderDontHasRights(%s)", e.Caller.Hex())
}

func (e UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// QuorumNotMetError carries the combined turnout and the bar it failed to clear
type QuorumNotMetError struct {
	Actual   *big.Int
	Required *big.Int
}

func (e QuorumNotMetError) Error() string {
	return fmt.Sprintf("MinimalVotingQuorum(%s, %s)", e.Actual, e.Required)
}

func (e QuorumNotMetError) Is(target error) bool {
	return target == ErrQuorumNotMet
}

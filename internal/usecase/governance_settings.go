package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SetMinimumQuorumParams contains parameters for changing the quorum
type SetMinimumQuorumParams struct {
	Sender common.Address
	Quorum *big.Int
}

// SetMinimumQuorum changes the turnout required to settle proposals
type SetMinimumQuorum struct {
	session *Session
}

// NewSetMinimumQuorum creates a new SetMinimumQuorum use case
func NewSetMinimumQuorum(session *Session) *SetMinimumQuorum {
	return &SetMinimumQuorum{session: session}
}

// Run executes the use case
func (uc *SetMinimumQuorum) Run(ctx context.Context, params SetMinimumQuorumParams) error {
	return uc.session.Update(ctx, func(env *Env) error {
		return env.Engine.SetMinimumQuorum(ctx, params.Sender, params.Quorum)
	})
}

// SetTokenAddressParams contains parameters for changing the deposit token
type SetTokenAddressParams struct {
	Sender common.Address
	Token  common.Address
}

// SetTokenAddress points deposits at another token
type SetTokenAddress struct {
	session  *Session
	progress ProgressSink
}

// NewSetTokenAddress creates a new SetTokenAddress use case
func NewSetTokenAddress(session *Session, progress ProgressSink) *SetTokenAddress {
	return &SetTokenAddress{session: session, progress: progress}
}

// Run executes the use case
func (uc *SetTokenAddress) Run(ctx context.Context, params SetTokenAddressParams) error {
	return uc.session.Update(ctx, func(env *Env) error {
		if err := env.Engine.SetTokenAddress(ctx, params.Sender, params.Token); err != nil {
			return err
		}
		if _, ok := env.Tokens[params.Token]; !ok {
			uc.progress.Info("No sandbox token is deployed at " + params.Token.Hex() + "; deposits will fail until one is")
		}
		return nil
	})
}

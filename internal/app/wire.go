//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/daovote/internal/adapters"
	"github.com/trebuchet-org/daovote/internal/config"
	"github.com/trebuchet-org/daovote/internal/logging"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		config.NewSendersManager,
		wire.Bind(new(usecase.SenderResolver), new(*config.SendersManager)),
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewSession,
		usecase.NewInitGovernance,
		usecase.NewDeposit,
		usecase.NewReturnDeposit,
		usecase.NewShowDepositor,
		usecase.NewAddProposal,
		usecase.NewStartChairmanElection,
		usecase.NewCastVote,
		usecase.NewFinishProposal,
		usecase.NewSetMinimumQuorum,
		usecase.NewSetTokenAddress,
		usecase.NewShowProposal,
		usecase.NewListProposals,
		usecase.NewSelectProposal,
		usecase.NewShowGovernance,
		usecase.NewManageToken,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,
		wire.Struct(new(Governance), "*"),

		// Query API
		ProvideAPIServer,

		// App
		NewApp,
	)
	return nil, nil, nil
}

package app

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/trebuchet-org/daovote/internal/api"
	internalconfig "github.com/trebuchet-org/daovote/internal/config"
	"github.com/trebuchet-org/daovote/internal/domain/config"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config  *config.RuntimeConfig
	Logger  *slog.Logger
	Senders *internalconfig.SendersManager

	// Shared dependencies
	Registry *prometheus.Registry

	// Governance use cases
	InitGovernance        *usecase.InitGovernance
	Deposit               *usecase.Deposit
	ReturnDeposit         *usecase.ReturnDeposit
	ShowDepositor         *usecase.ShowDepositor
	AddProposal           *usecase.AddProposal
	StartChairmanElection *usecase.StartChairmanElection
	CastVote              *usecase.CastVote
	FinishProposal        *usecase.FinishProposal
	SetMinimumQuorum      *usecase.SetMinimumQuorum
	SetTokenAddress       *usecase.SetTokenAddress
	ShowProposal          *usecase.ShowProposal
	ListProposals         *usecase.ListProposals
	SelectProposal        *usecase.SelectProposal
	ShowGovernance        *usecase.ShowGovernance
	ManageToken           *usecase.ManageToken

	// Local config use cases
	ShowConfig   *usecase.ShowConfig
	SetConfig    *usecase.SetConfig
	RemoveConfig *usecase.RemoveConfig

	// Query API
	API *api.Server
}

// Governance groups the governance use cases for NewApp
type Governance struct {
	InitGovernance        *usecase.InitGovernance
	Deposit               *usecase.Deposit
	ReturnDeposit         *usecase.ReturnDeposit
	ShowDepositor         *usecase.ShowDepositor
	AddProposal           *usecase.AddProposal
	StartChairmanElection *usecase.StartChairmanElection
	CastVote              *usecase.CastVote
	FinishProposal        *usecase.FinishProposal
	SetMinimumQuorum      *usecase.SetMinimumQuorum
	SetTokenAddress       *usecase.SetTokenAddress
	ShowProposal          *usecase.ShowProposal
	ListProposals         *usecase.ListProposals
	SelectProposal        *usecase.SelectProposal
	ShowGovernance        *usecase.ShowGovernance
	ManageToken           *usecase.ManageToken
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	logger *slog.Logger,
	senders *internalconfig.SendersManager,
	registry *prometheus.Registry,
	gov Governance,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
	apiServer *api.Server,
) (*App, error) {
	return &App{
		Config:                cfg,
		Logger:                logger,
		Senders:               senders,
		Registry:              registry,
		InitGovernance:        gov.InitGovernance,
		Deposit:               gov.Deposit,
		ReturnDeposit:         gov.ReturnDeposit,
		ShowDepositor:         gov.ShowDepositor,
		AddProposal:           gov.AddProposal,
		StartChairmanElection: gov.StartChairmanElection,
		CastVote:              gov.CastVote,
		FinishProposal:        gov.FinishProposal,
		SetMinimumQuorum:      gov.SetMinimumQuorum,
		SetTokenAddress:       gov.SetTokenAddress,
		ShowProposal:          gov.ShowProposal,
		ListProposals:         gov.ListProposals,
		SelectProposal:        gov.SelectProposal,
		ShowGovernance:        gov.ShowGovernance,
		ManageToken:           gov.ManageToken,
		ShowConfig:            showConfig,
		SetConfig:             setConfig,
		RemoveConfig:          removeConfig,
		API:                   apiServer,
	}, nil
}

// ProvideAPIServer builds the query API from the read use cases
func ProvideAPIServer(
	cfg *config.RuntimeConfig,
	showGovernance *usecase.ShowGovernance,
	listProposals *usecase.ListProposals,
	showProposal *usecase.ShowProposal,
	showDepositor *usecase.ShowDepositor,
	registry *prometheus.Registry,
	logger *slog.Logger,
) (*api.Server, error) {
	return api.New(
		api.Config{ListenAddress: cfg.API.Listen},
		showGovernance,
		listProposals,
		showProposal,
		showDepositor,
		registry,
		logger,
	)
}

package adapters

import (
	"log/slog"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/trebuchet-org/daovote/internal/adapters/abi"
	"github.com/trebuchet-org/daovote/internal/adapters/fs"
	"github.com/trebuchet-org/daovote/internal/adapters/interactive"
	"github.com/trebuchet-org/daovote/internal/adapters/parser"
	"github.com/trebuchet-org/daovote/internal/adapters/progress"
	"github.com/trebuchet-org/daovote/internal/adapters/repository/state"
	"github.com/trebuchet-org/daovote/internal/chain"
	"github.com/trebuchet-org/daovote/internal/domain/config"
	"github.com/trebuchet-org/daovote/internal/governance"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// ProvideStateRepository opens the configured store backend
func ProvideStateRepository(cfg *config.RuntimeConfig, log *slog.Logger) (usecase.StateRepository, func(), error) {
	repo, err := state.New(cfg.Store.Backend, cfg.DataDir, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := repo.Close(); err != nil {
			log.Warn("failed to close state store", "backend", cfg.Store.Backend, "error", err)
		}
	}
	return repo, cleanup, nil
}

// ProvideRegistry creates the registry every collector is registered on
func ProvideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// ProvideMetrics creates the engine metrics on registry
func ProvideMetrics(registry *prometheus.Registry) *governance.Metrics {
	return governance.NewMetrics(registry)
}

// ProvideClock provides the wall clock
func ProvideClock() governance.Clock {
	return chain.SystemClock{}
}

// StorageSet provides persistence
var StorageSet = wire.NewSet(
	ProvideStateRepository,

	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigStore), new(*fs.LocalConfigStoreAdapter)),
)

// ABISet provides call data encoding and decoding
var ABISet = wire.NewSet(
	abi.NewCallEncoder,
	wire.Bind(new(usecase.CallEncoder), new(*abi.CallEncoder)),

	abi.NewCallDecoder,
	wire.Bind(new(usecase.CallDecoder), new(*abi.CallDecoder)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ProposalSelector), new(*interactive.SelectorAdapter)),
)

// ParserSet provides file parsers
var ParserSet = wire.NewSet(
	parser.NewProposalFileParser,
	wire.Bind(new(usecase.ProposalFileParser), new(*parser.ProposalFileParser)),
)

// MetricsSet provides the Prometheus registry and engine metrics
var MetricsSet = wire.NewSet(
	ProvideRegistry,
	ProvideMetrics,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ProvideClock,
	progress.NewProgressSink,

	StorageSet,
	ABISet,
	InteractiveSet,
	ParserSet,
	MetricsSet,
)

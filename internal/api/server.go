package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// GovernanceQuery returns the governance overview
type GovernanceQuery interface {
	Run(ctx context.Context) (*usecase.GovernanceStatus, error)
}

// ProposalListQuery lists proposals
type ProposalListQuery interface {
	Run(ctx context.Context, filter usecase.ProposalFilter) (*usecase.ListProposalsResult, error)
}

// ProposalQuery returns one proposal
type ProposalQuery interface {
	Run(ctx context.Context, params usecase.ShowProposalParams) (*usecase.ShowProposalResult, error)
}

// DepositorQuery returns one depositor
type DepositorQuery interface {
	Run(ctx context.Context, params usecase.ShowDepositorParams) (*usecase.ShowDepositorResult, error)
}

// Config configures the server
type Config struct {
	ListenAddress string
}

// Server is the read-only HTTP query API
type Server struct {
	config     Config
	logger     *slog.Logger
	governance GovernanceQuery
	proposals  ProposalListQuery
	proposal   ProposalQuery
	depositor  DepositorQuery
	registry   *prometheus.Registry
	httpServer *http.Server
	addr       net.Addr
	mu         sync.Mutex
}

// New creates the server and registers the state collector on registry
func New(
	cfg Config,
	governance GovernanceQuery,
	proposals ProposalListQuery,
	proposal ProposalQuery,
	depositor DepositorQuery,
	registry *prometheus.Registry,
	logger *slog.Logger,
) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = "127.0.0.1:8545"
	}
	if err := registry.Register(NewStateCollector(governance, logger)); err != nil {
		return nil, fmt.Errorf("failed to register state collector: %w", err)
	}
	return &Server{
		config:     cfg,
		logger:     logger.With("component", "api"),
		governance: governance,
		proposals:  proposals,
		proposal:   proposal,
		depositor:  depositor,
		registry:   registry,
	}, nil
}

// Handler returns the routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/governance", s.handleGovernance)
	mux.HandleFunc("GET /api/v1/proposals", s.handleProposals)
	mux.HandleFunc("GET /api/v1/proposals/{id}", s.handleProposal)
	mux.HandleFunc("GET /api/v1/proposals/{id}/votes/{address}", s.handleVote)
	mux.HandleFunc("GET /api/v1/depositors/{address}", s.handleDepositor)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Start binds the listener and serves in the background until ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	s.logger.Info("API listener started", "address", ln.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error("failed to shutdown API server on context cancellation", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}

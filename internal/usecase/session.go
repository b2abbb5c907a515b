package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/chain"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"github.com/trebuchet-org/daovote/internal/governance"
)

// Env is a live view of a loaded snapshot: the host with every contract
// registered, and the governance engine on it
type Env struct {
	Snapshot *models.Snapshot
	Host     *chain.Host
	Engine   *governance.Engine
	Tokens   map[common.Address]*chain.ERC20
}

// Token returns the sandbox token at address
func (e *Env) Token(address common.Address) (*chain.ERC20, error) {
	token, ok := e.Tokens[address]
	if !ok {
		return nil, fmt.Errorf("%w: no sandbox token at %s", domain.ErrNotFound, address.Hex())
	}
	return token, nil
}

// Session serializes operations on the persisted state. Every operation
// loads the snapshot, runs against a fresh Env, and is saved only when it
// succeeds.
type Session struct {
	mu      sync.Mutex
	repo    StateRepository
	clock   governance.Clock
	metrics *governance.Metrics
	log     *slog.Logger
}

// NewSession creates a new session
func NewSession(repo StateRepository, clock governance.Clock, metrics *governance.Metrics, log *slog.Logger) *Session {
	return &Session{
		repo:    repo,
		clock:   clock,
		metrics: metrics,
		log:     log,
	}
}

// Update runs fn against the current state and persists the result if fn succeeds
func (s *Session) Update(ctx context.Context, fn func(env *Env) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(env); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, env.Snapshot); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// View runs fn against the current state without persisting anything
func (s *Session) View(ctx context.Context, fn func(env *Env) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(env)
}

// Create persists a brand new snapshot. It fails if state already exists.
func (s *Session) Create(ctx context.Context, snapshot *models.Snapshot) (*Env, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Load(ctx); err == nil {
		return nil, fmt.Errorf("governance already initialized")
	} else if !errors.Is(err, domain.ErrNotInitialized) {
		return nil, err
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}
	return s.build(snapshot), nil
}

func (s *Session) load(ctx context.Context) (*Env, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot.Governance == nil {
		return nil, domain.ErrNotInitialized
	}
	return s.build(snapshot), nil
}

func (s *Session) build(snapshot *models.Snapshot) *Env {
	if snapshot.Tokens == nil {
		snapshot.Tokens = make(map[common.Address]*models.TokenLedger)
	}
	host := chain.NewHost()
	tokens := make(map[common.Address]*chain.ERC20, len(snapshot.Tokens))
	for addr, ledger := range snapshot.Tokens {
		token := chain.NewERC20(ledger)
		tokens[addr] = token
		host.Register(addr, token)
	}

	engine := governance.NewEngine(snapshot.GovernanceAddress, snapshot.Governance, host,
		governance.WithClock(s.clock),
		governance.WithMetrics(s.metrics),
		governance.WithLogger(s.log),
	)
	host.Register(snapshot.GovernanceAddress, engine)

	return &Env{
		Snapshot: snapshot,
		Host:     host,
		Engine:   engine,
		Tokens:   tokens,
	}
}

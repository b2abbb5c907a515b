package usecase_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/daovote/internal/adapters/abi"
	"github.com/trebuchet-org/daovote/internal/chain"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"github.com/trebuchet-org/daovote/internal/governance"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

var (
	chairman = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	genesis  = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

// memoryRepository round-trips snapshots through JSON like the file store
type memoryRepository struct {
	data  []byte
	saves int
}

func (r *memoryRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	if r.data == nil {
		return nil, domain.ErrNotInitialized
	}
	var snapshot models.Snapshot
	if err := json.Unmarshal(r.data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *memoryRepository) Save(ctx context.Context, snapshot *models.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	r.data = data
	r.saves++
	return nil
}

func (r *memoryRepository) Close() error { return nil }

// MockProposalSelector is a mock implementation of ProposalSelector
type MockProposalSelector struct {
	mock.Mock
}

func (m *MockProposalSelector) SelectProposal(ctx context.Context, proposals []*models.Proposal, prompt string) (*models.Proposal, error) {
	args := m.Called(ctx, proposals, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

// MockProposalFileParser is a mock implementation of ProposalFileParser
type MockProposalFileParser struct {
	mock.Mock
}

func (m *MockProposalFileParser) ParseProposalFile(path string) ([]usecase.ProposalSpec, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.ProposalSpec), args.Error(1)
}

// MockProgressSink records progress messages
type MockProgressSink struct {
	events []usecase.ProgressEvent
	infos  []string
	errors []string
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}
func (m *MockProgressSink) Info(message string)  { m.infos = append(m.infos, message) }
func (m *MockProgressSink) Error(message string) { m.errors = append(m.errors, message) }

type harness struct {
	ctx      context.Context
	repo     *memoryRepository
	clock    *chain.ManualClock
	session  *usecase.Session
	progress *MockProgressSink
	decoder  *abi.CallDecoder
	init     *usecase.InitGovernanceResult
}

func newHarness(t *testing.T, quorum int64) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		ctx:      context.Background(),
		repo:     &memoryRepository{},
		clock:    chain.NewManualClock(genesis),
		progress: &MockProgressSink{},
		decoder:  abi.NewCallDecoder(logger),
	}
	h.session = usecase.NewSession(h.repo, h.clock, governance.NewMetrics(nil), logger)

	result, err := usecase.NewInitGovernance(h.session, h.progress).Run(h.ctx, usecase.InitGovernanceParams{
		Chairman:      chairman,
		TokenSupply:   big.NewInt(1_000_000),
		MinimumQuorum: big.NewInt(quorum),
	})
	require.NoError(t, err)
	h.init = result
	return h
}

// fund transfers tokens from the chairman to holder
func (h *harness) fund(t *testing.T, holder common.Address, amount int64) {
	t.Helper()
	_, err := usecase.NewManageToken(h.session, h.progress).Run(h.ctx, usecase.TokenActionParams{
		Operation: usecase.TokenOpTransfer,
		Sender:    chairman,
		To:        holder,
		Amount:    big.NewInt(amount),
	})
	require.NoError(t, err)
}

func (h *harness) deposit(t *testing.T, holder common.Address, amount int64) {
	t.Helper()
	h.fund(t, holder, amount)
	_, err := usecase.NewDeposit(h.session, h.progress).Run(h.ctx, usecase.DepositParams{
		Sender:  holder,
		Amount:  big.NewInt(amount),
		Approve: true,
	})
	require.NoError(t, err)
}

func (h *harness) addProposal(t *testing.T, specs ...usecase.ProposalSpec) []*usecase.ProposalView {
	t.Helper()
	uc := usecase.NewAddProposal(h.session, abi.NewCallEncoder(), h.decoder, &MockProposalFileParser{}, h.progress)
	result, err := uc.Run(h.ctx, usecase.AddProposalParams{Sender: chairman, Proposals: specs})
	require.NoError(t, err)
	return result.Proposals
}

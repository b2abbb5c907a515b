package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain/config"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// StateRepository persists the governance snapshot between invocations
type StateRepository interface {
	// Load returns domain.ErrNotInitialized when nothing has been saved yet
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snapshot *models.Snapshot) error
	Close() error
}

// CallEncoder builds call data from a function signature and arguments
type CallEncoder interface {
	Encode(signature string, args []string) ([]byte, error)
}

// CallDecoder renders call data against the contracts known in a snapshot
type CallDecoder interface {
	Decode(snapshot *models.Snapshot, to common.Address, data []byte) *models.DecodedCall
}

// ProposalSelector handles interactive selection of proposals
type ProposalSelector interface {
	SelectProposal(ctx context.Context, proposals []*models.Proposal, prompt string) (*models.Proposal, error)
}

// ProposalFileParser reads a batch of proposals from a file
type ProposalFileParser interface {
	ParseProposalFile(path string) ([]ProposalSpec, error)
}

// ProposalSpec describes one proposal to create. Either CallData or
// Signature (with Args) may be given; both empty means an empty call.
type ProposalSpec struct {
	Description string
	Duration    string
	Target      string
	CallData    string
	Signature   string
	Args        []string
	// Candidate makes this a chairman election; Target and call data are ignored
	Candidate string
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Message string
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// LocalConfigStore persists the per-project local settings. Saving an
// empty config removes the file.
type LocalConfigStore interface {
	Exists() bool
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, config *config.LocalConfig) error
	GetPath() string
}

// SenderResolver maps a sender name or hex address to an account
type SenderResolver interface {
	Resolve(nameOrAddress string) (*config.Sender, error)
}

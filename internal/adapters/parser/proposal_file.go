package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/daovote/internal/usecase"
	"gopkg.in/yaml.v3"
)

// ProposalFile is the YAML layout for batch proposal creation:
//
//	defaults:
//	  duration: 3d
//	proposals:
//	  - description: Give me 100 tokens
//	    target: 0x5FbDB2315678afecb367f032d93F642f64180aa3
//	    signature: transfer(address,uint256)
//	    args: ["0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", 100]
//	  - description: Replace the chairman
//	    candidate: 0x70997970C51812dc3A010C7d01b50e20d4e3B3fa
type ProposalFile struct {
	Defaults  ProposalEntry   `yaml:"defaults"`
	Proposals []ProposalEntry `yaml:"proposals"`
}

// ProposalEntry is one proposal in a ProposalFile
type ProposalEntry struct {
	Description string   `yaml:"description"`
	Duration    string   `yaml:"duration"`
	Target      string   `yaml:"target"`
	CallData    string   `yaml:"calldata"`
	Signature   string   `yaml:"signature"`
	Args        []string `yaml:"args"`
	Candidate   string   `yaml:"candidate"`
}

// ProposalFileParser reads proposal batches from YAML
type ProposalFileParser struct{}

// NewProposalFileParser creates a new parser
func NewProposalFileParser() *ProposalFileParser {
	return &ProposalFileParser{}
}

// ParseProposalFile parses a proposal batch from a YAML file
func (p *ProposalFileParser) ParseProposalFile(filePath string) ([]usecase.ProposalSpec, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("proposal file not found: %s", absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal file: %w", err)
	}

	return p.Parse(data)
}

// Parse parses a proposal batch from YAML data. A bare list of proposals is
// accepted as well as the full layout.
func (p *ProposalFileParser) Parse(data []byte) ([]usecase.ProposalSpec, error) {
	var file ProposalFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		var entries []ProposalEntry
		if listErr := yaml.Unmarshal(data, &entries); listErr != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		file.Proposals = entries
	}

	if len(file.Proposals) == 0 {
		return nil, fmt.Errorf("invalid proposal file: no proposals")
	}

	specs := make([]usecase.ProposalSpec, 0, len(file.Proposals))
	for i, entry := range file.Proposals {
		entry = entry.withDefaults(file.Defaults)
		if entry.Description == "" {
			return nil, fmt.Errorf("invalid proposal file: proposal %d has no description", i+1)
		}
		if entry.CallData != "" && entry.Signature != "" {
			return nil, fmt.Errorf("invalid proposal file: proposal %d sets both calldata and signature", i+1)
		}
		specs = append(specs, usecase.ProposalSpec{
			Description: entry.Description,
			Duration:    entry.Duration,
			Target:      entry.Target,
			CallData:    entry.CallData,
			Signature:   entry.Signature,
			Args:        entry.Args,
			Candidate:   entry.Candidate,
		})
	}
	return specs, nil
}

func (e ProposalEntry) withDefaults(d ProposalEntry) ProposalEntry {
	if e.Duration == "" {
		e.Duration = d.Duration
	}
	if e.Target == "" && e.Candidate == "" {
		e.Target = d.Target
	}
	return e
}

var _ usecase.ProposalFileParser = (*ProposalFileParser)(nil)

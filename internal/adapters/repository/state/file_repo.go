package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

const StateFile = "state.json"

// FileRepository stores the snapshot as a single JSON file
type FileRepository struct {
	dataDir string
	mu      sync.RWMutex
}

// NewFileRepository creates a file repository under dataDir
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileRepository{dataDir: dataDir}, nil
}

// Path returns the state file location
func (r *FileRepository) Path() string {
	return filepath.Join(r.dataDir, StateFile)
}

// Load reads the snapshot
func (r *FileRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", StateFile, err)
	}
	if snapshot.Governance == nil {
		return nil, domain.ErrNotInitialized
	}
	snapshot.Governance.EnsureMaps()
	return &snapshot, nil
}

// Save writes the snapshot through a temp file and an atomic rename
func (r *FileRepository) Save(ctx context.Context, snapshot *models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	path := r.Path()
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Close is a no-op
func (r *FileRepository) Close() error { return nil }

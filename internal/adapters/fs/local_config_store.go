package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	internalconfig "github.com/trebuchet-org/daovote/internal/config"
	"github.com/trebuchet-org/daovote/internal/domain/config"
	"github.com/trebuchet-org/daovote/internal/usecase"
)

// LocalConfigFile is read by viper from the project's .daovote directory
const LocalConfigFile = "config.local.json"

// LocalConfigStoreAdapter keeps config.local.json under the project root,
// independent of --data-dir, so viper finds it before the runtime config
// is built.
type LocalConfigStoreAdapter struct {
	path string
}

func NewLocalConfigStoreAdapter(cfg *config.RuntimeConfig) *LocalConfigStoreAdapter {
	return &LocalConfigStoreAdapter{
		path: filepath.Join(cfg.ProjectRoot, internalconfig.DataDirName, LocalConfigFile),
	}
}

func (s *LocalConfigStoreAdapter) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns an empty config when the file is missing. Keys other than
// from and store are rejected since viper would silently pick them up.
func (s *LocalConfigStoreAdapter) Load(ctx context.Context) (*config.LocalConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, iofs.ErrNotExist) {
		return config.DefaultLocalConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", LocalConfigFile, err)
	}

	var local config.LocalConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&local); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", LocalConfigFile, err)
	}
	return &local, nil
}

// Save writes through a temp file. An empty config deletes the file.
func (s *LocalConfigStoreAdapter) Save(ctx context.Context, local *config.LocalConfig) error {
	if local.IsEmpty() {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", LocalConfigFile, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", internalconfig.DataDirName, err)
	}
	data, err := json.MarshalIndent(local, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", LocalConfigFile, err)
	}
	return os.Rename(tmp, s.path)
}

func (s *LocalConfigStoreAdapter) GetPath() string {
	return s.path
}

var _ usecase.LocalConfigStore = (*LocalConfigStoreAdapter)(nil)

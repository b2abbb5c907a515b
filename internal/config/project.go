package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/daovote/internal/domain/config"
)

// ProjectFileName is the project configuration file looked up from the cwd
const ProjectFileName = "daovote.toml"

// loadEnvFiles loads .env and .env.local from the project root. Existing
// variables win.
func loadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadProjectFile parses daovote.toml. A missing file yields (nil, nil).
func loadProjectFile(projectRoot string) (*config.ProjectFile, error) {
	path := filepath.Join(projectRoot, ProjectFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var file config.ProjectFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFileName, err)
	}

	file.Store.Backend = os.ExpandEnv(file.Store.Backend)
	file.Store.DataDir = os.ExpandEnv(file.Store.DataDir)
	file.API.Listen = os.ExpandEnv(file.API.Listen)

	g := &file.Governance
	g.Chairman = os.ExpandEnv(g.Chairman)
	g.Token = os.ExpandEnv(g.Token)
	g.MinimumQuorum = os.ExpandEnv(g.MinimumQuorum)
	g.MinimumDuration = os.ExpandEnv(g.MinimumDuration)
	g.TokenSupply = os.ExpandEnv(g.TokenSupply)

	// Expand environment variables in all sender fields
	for name, sender := range file.Senders {
		sender.PrivateKey = os.ExpandEnv(sender.PrivateKey)
		sender.Address = os.ExpandEnv(sender.Address)
		file.Senders[name] = sender
	}

	return &file, nil
}

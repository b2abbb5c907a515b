package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/daovote/internal/domain/config"
)

const (
	// DataDirName is the default data directory under the project root
	DataDirName = ".daovote"

	DefaultListen = "127.0.0.1:8545"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	loadEnvFiles(projectRoot)

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, DataDirName),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		From:           v.GetString("from"),
		Senders:        make(map[string]config.SenderConfig),
	}

	file, err := loadProjectFile(projectRoot)
	if err != nil {
		return nil, err
	}
	if file != nil {
		cfg.ConfigSource = ProjectFileName
		cfg.Store = file.Store
		cfg.Governance = file.Governance
		cfg.API = file.API
		if file.Senders != nil {
			cfg.Senders = file.Senders
		}
		if file.Store.DataDir != "" {
			cfg.DataDir = resolvePath(projectRoot, file.Store.DataDir)
		}
	}

	// flags, env and config.local.json override daovote.toml
	if dataDir := v.GetString("data_dir"); dataDir != "" {
		cfg.DataDir = resolvePath(projectRoot, dataDir)
	}
	if store := v.GetString("store"); store != "" {
		cfg.Store.Backend = store
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "file"
	}
	if listen := v.GetString("listen"); listen != "" {
		cfg.API.Listen = listen
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = DefaultListen
	}

	return cfg, nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// FindProjectRoot walks up from the current directory to find daovote.toml.
// Without one the current directory is the project root.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDirName))

	// Set up environment variables
	v.SetEnvPrefix("DAOVOTE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "30s")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}

package state

import (
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/daovote/internal/usecase"
)

// Backend names accepted by New
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSqlite = "sqlite"
)

// Backends lists the supported storage backends
func Backends() []string {
	return []string{BackendFile, BackendBadger, BackendSqlite}
}

// New opens the state repository for backend under dataDir
func New(backend, dataDir string, logger *slog.Logger) (usecase.StateRepository, error) {
	switch backend {
	case "", BackendFile:
		return NewFileRepository(dataDir)
	case BackendBadger:
		return NewBadgerRepository(WithBadgerDataDir(dataDir), WithBadgerLogger(logger))
	case BackendSqlite:
		return NewSqliteRepository(dataDir)
	default:
		return nil, fmt.Errorf("unknown store backend %q (expected one of file, badger, sqlite)", backend)
	}
}

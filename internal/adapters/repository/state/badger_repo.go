package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

const (
	BadgerDir = "badger"

	keyParams          = "gov/params"
	prefixGov          = "gov/"
	prefixProposal     = "gov/proposal/"
	prefixDepositor    = "gov/depositor/"
	prefixVote         = "gov/vote/"
	prefixToken        = "token/"
	proposalIDKeyWidth = 20
)

// BadgerRepository stores one key per governance entity in badger
type BadgerRepository struct {
	db     *badger.DB
	logger *slog.Logger
}

// BadgerOptionFunc configures a BadgerRepository
type BadgerOptionFunc func(*badgerConfig)

type badgerConfig struct {
	dataDir string
	logger  *slog.Logger
}

// WithBadgerDataDir sets the data directory. Without one the store is in-memory.
func WithBadgerDataDir(dataDir string) BadgerOptionFunc {
	return func(c *badgerConfig) {
		c.dataDir = dataDir
	}
}

// WithBadgerLogger sets the logger badger reports to
func WithBadgerLogger(logger *slog.Logger) BadgerOptionFunc {
	return func(c *badgerConfig) {
		c.logger = logger
	}
}

// NewBadgerRepository opens the badger store
func NewBadgerRepository(opts ...BadgerOptionFunc) (*BadgerRepository, error) {
	cfg := &badgerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var badgerOpts badger.Options
	if cfg.dataDir == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dir := filepath.Join(cfg.dataDir, BadgerDir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		badgerOpts = badger.DefaultOptions(dir)
	}
	badgerOpts = badgerOpts.
		WithLogger(&badgerLogger{logger: cfg.logger}).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerRepository{db: db, logger: cfg.logger}, nil
}

func proposalKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%0*d", prefixProposal, proposalIDKeyWidth, id))
}

func depositorKey(addr common.Address) []byte {
	return []byte(prefixDepositor + addr.Hex())
}

func voteKey(id uint64, voter common.Address) []byte {
	return []byte(fmt.Sprintf("%s%0*d/%s", prefixVote, proposalIDKeyWidth, id, voter.Hex()))
}

func tokenKey(addr common.Address) []byte {
	return []byte(prefixToken + addr.Hex())
}

// Load reads the snapshot
func (r *BadgerRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	var snapshot *models.Snapshot
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyParams))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrNotInitialized
			}
			return err
		}
		var params paramsRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &params)
		}); err != nil {
			return fmt.Errorf("failed to decode params: %w", err)
		}
		snapshot = params.snapshot()
		gov := snapshot.Governance

		if err := iteratePrefix(txn, prefixProposal, func(_ string, val []byte) error {
			var p models.Proposal
			if err := json.Unmarshal(val, &p); err != nil {
				return err
			}
			gov.Proposals[p.ID] = &p
			return nil
		}); err != nil {
			return fmt.Errorf("failed to load proposals: %w", err)
		}

		if err := iteratePrefix(txn, prefixDepositor, func(key string, val []byte) error {
			var d models.Depositor
			if err := json.Unmarshal(val, &d); err != nil {
				return err
			}
			gov.Depositors[common.HexToAddress(strings.TrimPrefix(key, prefixDepositor))] = &d
			return nil
		}); err != nil {
			return fmt.Errorf("failed to load depositors: %w", err)
		}

		if err := iteratePrefix(txn, prefixVote, func(key string, val []byte) error {
			idPart, voterPart, ok := strings.Cut(strings.TrimPrefix(key, prefixVote), "/")
			if !ok {
				return fmt.Errorf("malformed vote key %q", key)
			}
			id, err := strconv.ParseUint(idPart, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed vote key %q: %w", key, err)
			}
			var v models.VoteRecord
			if err := json.Unmarshal(val, &v); err != nil {
				return err
			}
			if gov.Votes[id] == nil {
				gov.Votes[id] = make(map[common.Address]*models.VoteRecord)
			}
			gov.Votes[id][common.HexToAddress(voterPart)] = &v
			return nil
		}); err != nil {
			return fmt.Errorf("failed to load votes: %w", err)
		}

		return iteratePrefix(txn, prefixToken, func(key string, val []byte) error {
			var ledger models.TokenLedger
			if err := json.Unmarshal(val, &ledger); err != nil {
				return fmt.Errorf("failed to load token: %w", err)
			}
			snapshot.Tokens[common.HexToAddress(strings.TrimPrefix(key, prefixToken))] = &ledger
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func iteratePrefix(txn *badger.Txn, prefix string, fn func(key string, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(string(item.KeyCopy(nil)), val); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the stored snapshot in a single transaction
func (r *BadgerRepository) Save(ctx context.Context, snapshot *models.Snapshot) error {
	return r.db.Update(func(txn *badger.Txn) error {
		// drop entities that no longer exist
		for _, prefix := range []string{prefixGov, prefixToken} {
			keys, err := keysWithPrefix(txn, prefix)
			if err != nil {
				return err
			}
			for _, key := range keys {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
		}

		set := func(key []byte, v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return txn.Set(key, data)
		}

		gov := snapshot.Governance
		if err := set([]byte(keyParams), paramsFromSnapshot(snapshot)); err != nil {
			return err
		}
		for id, p := range gov.Proposals {
			if err := set(proposalKey(id), p); err != nil {
				return err
			}
		}
		for addr, d := range gov.Depositors {
			if err := set(depositorKey(addr), d); err != nil {
				return err
			}
		}
		for id, votes := range gov.Votes {
			for voter, v := range votes {
				if err := set(voteKey(id, voter), v); err != nil {
					return err
				}
			}
		}
		for addr, ledger := range snapshot.Tokens {
			if err := set(tokenKey(addr), ledger); err != nil {
				return err
			}
		}
		return nil
	})
}

func keysWithPrefix(txn *badger.Txn, prefix string) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

// Close closes the database
func (r *BadgerRepository) Close() error {
	return r.db.Close()
}

// badgerLogger forwards badger's log output to slog
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(msg string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(msg, args...)), "component", "badger")
}

func (l *badgerLogger) Warningf(msg string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(msg, args...)), "component", "badger")
}

func (l *badgerLogger) Infof(msg string, args ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(msg, args...)), "component", "badger")
}

func (l *badgerLogger) Debugf(msg string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(msg, args...)), "component", "badger")
}

package state

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/glebarez/sqlite"
	"github.com/trebuchet-org/daovote/internal/domain"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const SqliteFile = "state.sqlite"

// governanceParams is the single-row table of scalar governance fields
type governanceParams struct {
	ID                uint `gorm:"primaryKey"`
	GovernanceAddress string
	Chairman          string
	TokenAddress      string
	MinimumQuorum     string
	MinimumDuration   int64
	LastIndex         uint64
}

func (governanceParams) TableName() string { return "governance_params" }

type proposalRow struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement:false"`
	Kind           string
	Description    string
	Proposer       string
	CreatedAt      time.Time
	EndTime        time.Time
	Target         string
	CallData       []byte
	Candidate      string
	ForVotes       string
	AgainstVotes   string
	Settled        bool
	Accepted       bool
	Executed       bool
	ExecutionError string
	SettledAt      *time.Time
}

func (proposalRow) TableName() string { return "proposals" }

type depositorRow struct {
	Address    string `gorm:"primaryKey"`
	Balance    string
	UnlockTime time.Time
}

func (depositorRow) TableName() string { return "depositors" }

type voteRow struct {
	ProposalID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Voter      string `gorm:"primaryKey"`
	Weight     string
	Support    bool
	CastAt     time.Time
}

func (voteRow) TableName() string { return "votes" }

type tokenRow struct {
	Address string `gorm:"primaryKey"`
	Name    string
	Symbol  string
	Owner   string
}

func (tokenRow) TableName() string { return "tokens" }

type tokenAccountRow struct {
	Token   string `gorm:"primaryKey"`
	Holder  string `gorm:"primaryKey"`
	Balance string
}

func (tokenAccountRow) TableName() string { return "token_accounts" }

type tokenAllowanceRow struct {
	Token   string `gorm:"primaryKey"`
	Owner   string `gorm:"primaryKey"`
	Spender string `gorm:"primaryKey"`
	Amount  string
}

func (tokenAllowanceRow) TableName() string { return "token_allowances" }

var sqliteModels = []any{
	&governanceParams{},
	&proposalRow{},
	&depositorRow{},
	&voteRow{},
	&tokenRow{},
	&tokenAccountRow{},
	&tokenAllowanceRow{},
}

// SqliteRepository stores the snapshot in relational tables through gorm
type SqliteRepository struct {
	db *gorm.DB
}

// NewSqliteRepository opens the database. An empty dataDir uses a shared
// in-memory database.
func NewSqliteRepository(dataDir string) (*SqliteRepository, error) {
	dsn := "file::memory:?cache=shared"
	if dataDir != "" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", filepath.Join(dataDir, SqliteFile))
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	for _, model := range sqliteModels {
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return &SqliteRepository{db: db}, nil
}

// Load reads the snapshot
func (r *SqliteRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	db := r.db.WithContext(ctx)

	var params governanceParams
	if err := db.First(&params, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotInitialized
		}
		return nil, err
	}
	quorum, err := parseBig(params.MinimumQuorum)
	if err != nil {
		return nil, err
	}
	snapshot := paramsRecord{
		GovernanceAddress: common.HexToAddress(params.GovernanceAddress),
		Chairman:          common.HexToAddress(params.Chairman),
		TokenAddress:      common.HexToAddress(params.TokenAddress),
		MinimumQuorum:     quorum,
		MinimumDuration:   time.Duration(params.MinimumDuration),
		LastIndex:         params.LastIndex,
	}.snapshot()
	gov := snapshot.Governance

	var proposals []proposalRow
	if err := db.Find(&proposals).Error; err != nil {
		return nil, err
	}
	for _, row := range proposals {
		p, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("proposal %d: %w", row.ID, err)
		}
		gov.Proposals[p.ID] = p
	}

	var depositors []depositorRow
	if err := db.Find(&depositors).Error; err != nil {
		return nil, err
	}
	for _, row := range depositors {
		balance, err := parseBig(row.Balance)
		if err != nil {
			return nil, err
		}
		gov.Depositors[common.HexToAddress(row.Address)] = &models.Depositor{
			Balance:    balance,
			UnlockTime: row.UnlockTime.UTC(),
		}
	}

	var votes []voteRow
	if err := db.Find(&votes).Error; err != nil {
		return nil, err
	}
	for _, row := range votes {
		weight, err := parseBig(row.Weight)
		if err != nil {
			return nil, err
		}
		if gov.Votes[row.ProposalID] == nil {
			gov.Votes[row.ProposalID] = make(map[common.Address]*models.VoteRecord)
		}
		gov.Votes[row.ProposalID][common.HexToAddress(row.Voter)] = &models.VoteRecord{
			Weight:  weight,
			Support: row.Support,
			CastAt:  row.CastAt.UTC(),
		}
	}

	if err := r.loadTokens(db, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *SqliteRepository) loadTokens(db *gorm.DB, snapshot *models.Snapshot) error {
	var tokens []tokenRow
	if err := db.Find(&tokens).Error; err != nil {
		return err
	}
	for _, row := range tokens {
		snapshot.Tokens[common.HexToAddress(row.Address)] = &models.TokenLedger{
			Name:       row.Name,
			Symbol:     row.Symbol,
			Owner:      common.HexToAddress(row.Owner),
			Balances:   make(map[common.Address]*big.Int),
			Allowances: make(map[common.Address]map[common.Address]*big.Int),
		}
	}

	var accounts []tokenAccountRow
	if err := db.Find(&accounts).Error; err != nil {
		return err
	}
	for _, row := range accounts {
		ledger, ok := snapshot.Tokens[common.HexToAddress(row.Token)]
		if !ok {
			continue
		}
		balance, err := parseBig(row.Balance)
		if err != nil {
			return err
		}
		ledger.Balances[common.HexToAddress(row.Holder)] = balance
	}

	var allowances []tokenAllowanceRow
	if err := db.Find(&allowances).Error; err != nil {
		return err
	}
	for _, row := range allowances {
		ledger, ok := snapshot.Tokens[common.HexToAddress(row.Token)]
		if !ok {
			continue
		}
		amount, err := parseBig(row.Amount)
		if err != nil {
			return err
		}
		owner := common.HexToAddress(row.Owner)
		if ledger.Allowances[owner] == nil {
			ledger.Allowances[owner] = make(map[common.Address]*big.Int)
		}
		ledger.Allowances[owner][common.HexToAddress(row.Spender)] = amount
	}
	return nil
}

// Save replaces every table's contents inside one transaction
func (r *SqliteRepository) Save(ctx context.Context, snapshot *models.Snapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range sqliteModels {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}

		gov := snapshot.Governance
		if err := tx.Create(&governanceParams{
			ID:                1,
			GovernanceAddress: snapshot.GovernanceAddress.Hex(),
			Chairman:          gov.Chairman.Hex(),
			TokenAddress:      gov.TokenAddress.Hex(),
			MinimumQuorum:     bigString(gov.MinimumQuorum),
			MinimumDuration:   int64(gov.MinimumDuration),
			LastIndex:         gov.LastIndex,
		}).Error; err != nil {
			return err
		}

		for _, p := range gov.Proposals {
			row := proposalFromModel(p)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for addr, d := range gov.Depositors {
			if err := tx.Create(&depositorRow{
				Address:    addr.Hex(),
				Balance:    bigString(d.Balance),
				UnlockTime: d.UnlockTime,
			}).Error; err != nil {
				return err
			}
		}
		for id, votes := range gov.Votes {
			for voter, v := range votes {
				if err := tx.Create(&voteRow{
					ProposalID: id,
					Voter:      voter.Hex(),
					Weight:     bigString(v.Weight),
					Support:    v.Support,
					CastAt:     v.CastAt,
				}).Error; err != nil {
					return err
				}
			}
		}

		for addr, ledger := range snapshot.Tokens {
			if err := tx.Create(&tokenRow{
				Address: addr.Hex(),
				Name:    ledger.Name,
				Symbol:  ledger.Symbol,
				Owner:   ledger.Owner.Hex(),
			}).Error; err != nil {
				return err
			}
			for holder, balance := range ledger.Balances {
				if err := tx.Create(&tokenAccountRow{
					Token:   addr.Hex(),
					Holder:  holder.Hex(),
					Balance: bigString(balance),
				}).Error; err != nil {
					return err
				}
			}
			for owner, spenders := range ledger.Allowances {
				for spender, amount := range spenders {
					if err := tx.Create(&tokenAllowanceRow{
						Token:   addr.Hex(),
						Owner:   owner.Hex(),
						Spender: spender.Hex(),
						Amount:  bigString(amount),
					}).Error; err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// Close closes the underlying connection pool
func (r *SqliteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func proposalFromModel(p *models.Proposal) proposalRow {
	row := proposalRow{
		ID:             p.ID,
		Kind:           string(p.Kind),
		Description:    p.Description,
		Proposer:       p.Proposer.Hex(),
		CreatedAt:      p.CreatedAt,
		EndTime:        p.EndTime,
		Target:         p.Target.Hex(),
		CallData:       p.CallData,
		ForVotes:       bigString(p.ForVotes),
		AgainstVotes:   bigString(p.AgainstVotes),
		Settled:        p.Settled,
		Accepted:       p.Accepted,
		Executed:       p.Executed,
		ExecutionError: p.ExecutionError,
		SettledAt:      p.SettledAt,
	}
	if p.Candidate != nil {
		row.Candidate = p.Candidate.Hex()
	}
	return row
}

func (row proposalRow) toModel() (*models.Proposal, error) {
	forVotes, err := parseBig(row.ForVotes)
	if err != nil {
		return nil, err
	}
	againstVotes, err := parseBig(row.AgainstVotes)
	if err != nil {
		return nil, err
	}
	p := &models.Proposal{
		ID:             row.ID,
		Kind:           models.ProposalKind(row.Kind),
		Description:    row.Description,
		Proposer:       common.HexToAddress(row.Proposer),
		CreatedAt:      row.CreatedAt.UTC(),
		EndTime:        row.EndTime.UTC(),
		Target:         common.HexToAddress(row.Target),
		CallData:       row.CallData,
		ForVotes:       forVotes,
		AgainstVotes:   againstVotes,
		Settled:        row.Settled,
		Accepted:       row.Accepted,
		Executed:       row.Executed,
		ExecutionError: row.ExecutionError,
	}
	if row.Candidate != "" {
		candidate := common.HexToAddress(row.Candidate)
		p.Candidate = &candidate
	}
	if row.SettledAt != nil {
		settledAt := row.SettledAt.UTC()
		p.SettledAt = &settledAt
	}
	return p, nil
}

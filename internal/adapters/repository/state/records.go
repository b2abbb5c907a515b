package state

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/daovote/internal/domain/models"
)

// paramsRecord holds the scalar governance fields shared by the keyed backends
type paramsRecord struct {
	GovernanceAddress common.Address `json:"governanceAddress"`
	Chairman          common.Address `json:"chairman"`
	TokenAddress      common.Address `json:"tokenAddress"`
	MinimumQuorum     *big.Int       `json:"minimumQuorum"`
	MinimumDuration   time.Duration  `json:"minimumDuration"`
	LastIndex         uint64         `json:"lastIndex"`
}

func paramsFromSnapshot(snapshot *models.Snapshot) paramsRecord {
	gov := snapshot.Governance
	return paramsRecord{
		GovernanceAddress: snapshot.GovernanceAddress,
		Chairman:          gov.Chairman,
		TokenAddress:      gov.TokenAddress,
		MinimumQuorum:     gov.MinimumQuorum,
		MinimumDuration:   gov.MinimumDuration,
		LastIndex:         gov.LastIndex,
	}
}

func (p paramsRecord) snapshot() *models.Snapshot {
	state := models.NewGovernanceState(p.Chairman, p.TokenAddress, p.MinimumQuorum, p.MinimumDuration)
	state.LastIndex = p.LastIndex
	return &models.Snapshot{
		GovernanceAddress: p.GovernanceAddress,
		Governance:        state,
		Tokens:            make(map[common.Address]*models.TokenLedger),
	}
}

// bigString renders nil as zero
func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

func parseBig(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

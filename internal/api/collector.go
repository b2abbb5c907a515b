package api

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	openProposalsDesc = prometheus.NewDesc(
		"daovote_open_proposals",
		"Proposals still accepting votes",
		nil, nil,
	)
	pendingSettlementDesc = prometheus.NewDesc(
		"daovote_pending_settlement_proposals",
		"Proposals past their end time that are not settled",
		nil, nil,
	)
	depositorsDesc = prometheus.NewDesc(
		"daovote_depositors",
		"Addresses with a non-zero deposit",
		nil, nil,
	)
	totalDepositedDesc = prometheus.NewDesc(
		"daovote_total_deposited_tokens",
		"Sum of all deposits",
		nil, nil,
	)
	minimumQuorumDesc = prometheus.NewDesc(
		"daovote_minimum_quorum_tokens",
		"Combined votes a proposal needs to be settled",
		nil, nil,
	)
	lastIndexDesc = prometheus.NewDesc(
		"daovote_last_proposal_id",
		"Id of the most recently created proposal",
		nil, nil,
	)
)

// StateCollector exports the persisted governance state on every scrape
type StateCollector struct {
	query   GovernanceQuery
	logger  *slog.Logger
	timeout time.Duration
}

// NewStateCollector creates a collector reading through query
func NewStateCollector(query GovernanceQuery, logger *slog.Logger) *StateCollector {
	return &StateCollector{query: query, logger: logger, timeout: 5 * time.Second}
}

func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- openProposalsDesc
	ch <- pendingSettlementDesc
	ch <- depositorsDesc
	ch <- totalDepositedDesc
	ch <- minimumQuorumDesc
	ch <- lastIndexDesc
}

// Collect emits nothing when the state cannot be read
func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	status, err := c.query.Run(ctx)
	if err != nil {
		c.logger.Debug("skipping state metrics", "component", "api", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(openProposalsDesc, prometheus.GaugeValue, float64(status.OpenProposals))
	ch <- prometheus.MustNewConstMetric(pendingSettlementDesc, prometheus.GaugeValue, float64(status.PendingSettle))
	ch <- prometheus.MustNewConstMetric(depositorsDesc, prometheus.GaugeValue, float64(status.Depositors))
	ch <- prometheus.MustNewConstMetric(totalDepositedDesc, prometheus.GaugeValue, bigFloat(status.TotalDeposited))
	ch <- prometheus.MustNewConstMetric(minimumQuorumDesc, prometheus.GaugeValue, bigFloat(status.MinimumQuorum))
	ch <- prometheus.MustNewConstMetric(lastIndexDesc, prometheus.GaugeValue, float64(status.LastIndex))
}

func bigFloat(n *big.Int) float64 {
	if n == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

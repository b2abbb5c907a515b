package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement outcomes used as metric labels
const (
	OutcomeAccepted     = "accepted"
	OutcomeRejected     = "rejected"
	OutcomeQuorumNotMet = "quorum_not_met"
	OutcomeCallFailed   = "call_failed"
)

// Metrics holds the engine's Prometheus collectors. A nil registry yields
// working but unregistered collectors.
type Metrics struct {
	ProposalsCreated prometheus.Counter
	VotesCast        *prometheus.CounterVec
	Settlements      *prometheus.CounterVec
	Deposits         prometheus.Counter
	Withdrawals      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		ProposalsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "daovote_proposals_created_total",
			Help: "Total number of proposals created",
		}),
		VotesCast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daovote_votes_cast_total",
			Help: "Total number of votes cast, by side",
		}, []string{"side"}),
		Settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "daovote_settlement_attempts_total",
			Help: "Total number of finishProposal attempts that passed the time checks, by outcome",
		}, []string{"outcome"}),
		Deposits: factory.NewCounter(prometheus.CounterOpts{
			Name: "daovote_deposits_total",
			Help: "Total number of deposits",
		}),
		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "daovote_withdrawals_total",
			Help: "Total number of deposit withdrawals",
		}),
	}
}

func sideLabel(support bool) string {
	if support {
		return "for"
	}
	return "against"
}

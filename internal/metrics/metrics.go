package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the prometheus instruments for the referral program.
type Metrics struct {
	CodesIssued        prometheus.Counter
	CodeCollisions     prometheus.Counter
	ReferralsRecorded  *prometheus.CounterVec
	Conversions        prometheus.Counter
	RewardsCreated     prometheus.Counter
	RewardsSettled     *prometheus.CounterVec
	RewardsFailed      *prometheus.CounterVec
	RewardsVoided      prometheus.Counter
	SettlementDuration prometheus.Histogram
}

// New registers the referral instruments against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perks_referral_codes_issued_total",
			Help: "Referral codes successfully issued.",
		}),
		CodeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perks_referral_code_collisions_total",
			Help: "Candidate referral codes rejected due to an existing code.",
		}),
		ReferralsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perks_referrals_recorded_total",
			Help: "Referrals recorded, by initial status.",
		}, []string{"status"}),
		Conversions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perks_referral_conversions_total",
			Help: "Referrals confirmed as converted.",
		}),
		RewardsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perks_rewards_created_total",
			Help: "Rewards scheduled at conversion time.",
		}),
		RewardsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perks_rewards_settled_total",
			Help: "Rewards paid out, by payout channel.",
		}, []string{"channel"}),
		RewardsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perks_rewards_failed_total",
			Help: "Reward settlements that failed, by payout channel.",
		}, []string{"channel"}),
		RewardsVoided: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perks_rewards_voided_total",
			Help: "Scheduled rewards voided by early cancellation.",
		}),
		SettlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "perks_settlement_run_duration_seconds",
			Help:    "Duration of a full settlement pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.CodesIssued,
		m.CodeCollisions,
		m.ReferralsRecorded,
		m.Conversions,
		m.RewardsCreated,
		m.RewardsSettled,
		m.RewardsFailed,
		m.RewardsVoided,
		m.SettlementDuration,
	)
	return m
}

func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// Module provides the shared metrics instance.
var Module = fx.Module("metrics",
	fx.Provide(NewDefault),
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "diggingboard", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "diggingboard", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	GatewayDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "diggingboard", Name: "gateway_decisions_total", Help: "Mutation gateway outcomes by action and result."},
		[]string{"action", "result"},
	)
	VotesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "diggingboard", Name: "votes_recorded_total", Help: "Vote ledger writes by direction."},
		[]string{"direction"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(GatewayDecisions)
	reg.MustRegister(VotesRecorded)
}

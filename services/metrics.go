package services

import "github.com/prometheus/client_golang/prometheus"

var (
	checkinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streakzilla_checkins_total",
			Help: "Check-in attempts by result",
		},
		[]string{"result"},
	)
	livesRedeemed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streakzilla_lives_redeemed_total",
			Help: "Lives spent on missed days",
		},
	)
	membersOut = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streakzilla_members_out_total",
			Help: "Members knocked out of a challenge",
		},
	)
	leaderboardCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streakzilla_leaderboard_cache_total",
			Help: "Leaderboard cache lookups by result",
		},
		[]string{"result"},
	)
)

// RegisterMetrics registers the domain counters with the default registry.
func RegisterMetrics() {
	prometheus.MustRegister(checkinsTotal, livesRedeemed, membersOut, leaderboardCache)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Game Metrics
	GamePlaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outletplay_game_plays_total",
		Help: "The total number of recorded plays by outcome",
	}, []string{"outcome"})
	GameRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outletplay_game_rejections_total",
		Help: "The total number of play requests rejected before a draw",
	}, []string{"reason"})
	GamePrizesDowngradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outletplay_game_prizes_downgraded_total",
		Help: "The total number of winning draws recorded as losses",
	}, []string{"reason"})
	GamePlayLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "outletplay_game_play_latency_seconds",
		Help:    "Latency of play requests from eligibility check to commit",
		Buckets: prometheus.DefBuckets,
	})

	// Live Metrics
	LiveViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "outletplay_live_viewers",
		Help: "The number of connected live-win viewers",
	})
	LiveEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outletplay_live_events_total",
		Help: "The total number of win events published",
	})
	LivePrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outletplay_live_pruned_total",
		Help: "The total number of viewer channels dropped after a failed write",
	})
)

// Outcome labels
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
)

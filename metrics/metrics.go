// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roundvote"

var (
	votesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "total number of accepted ballots, including overwrites",
	}, []string{"mode"})
	roundsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_started_total",
		Help:      "total number of rounds opened, including restarts",
	}, []string{"mode"})
	roundsDecided = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_decided_total",
		Help:      "total number of rounds evaluated, by outcome",
	}, []string{"mode", "outcome"})
	rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejections_total",
		Help:      "total number of rejected commands and votes, by reason",
	}, []string{"reason"})
	notificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "total number of notifications dropped because the delivery queue was full",
	})
	activeRounds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_rounds",
		Help:      "number of rounds currently collecting votes",
	})
)

func VoteCast(mode string)      { votesCast.WithLabelValues(mode).Inc() }
func RoundStarted(mode string)  { roundsStarted.WithLabelValues(mode).Inc() }
func Rejected(reason string)    { rejections.WithLabelValues(reason).Inc() }
func NotificationDropped()      { notificationsDropped.Inc() }
func RoundOpened()              { activeRounds.Inc() }
func RoundClosed()              { activeRounds.Dec() }
func RoundDecided(mode, outcome string) {
	roundsDecided.WithLabelValues(mode, outcome).Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

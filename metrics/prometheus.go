// Package metrics exposes the engine's prometheus instruments. Everything is
// nil-safe: an engine running without Setup (tests, library embedding) pays
// only a nil check per call.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"code.trustnet.io/repmarket/logging"
)

var (
	// tradeCount counts executed trades by side and outcome.
	tradeCount *prometheus.CounterVec
	// voteVolume accumulates votes moved by side and outcome.
	voteVolume *prometheus.CounterVec
	// marketGauge tracks markets by lifecycle state.
	marketGauge *prometheus.GaugeVec
	// engineTime accumulates seconds spent per engine operation.
	engineTime *prometheus.CounterVec
)

// Setup registers the engine instruments on the default registry. Calling it
// twice panics, the same way duplicate registration does in the client.
func Setup() {
	tradeCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repmarket",
		Subsystem: "engine",
		Name:      "trades_total",
		Help:      "Number of executed trades",
	}, []string{"side", "outcome"})
	prometheus.MustRegister(tradeCount)

	voteVolume = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repmarket",
		Subsystem: "engine",
		Name:      "vote_volume_total",
		Help:      "Votes bought and sold",
	}, []string{"side", "outcome"})
	prometheus.MustRegister(voteVolume)

	marketGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "repmarket",
		Subsystem: "engine",
		Name:      "markets",
		Help:      "Markets by lifecycle state",
	}, []string{"state"})
	prometheus.MustRegister(marketGauge)

	engineTime = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repmarket",
		Subsystem: "engine",
		Name:      "op_seconds_total",
		Help:      "Cumulative time spent per engine operation",
	}, []string{"op"})
	prometheus.MustRegister(engineTime)
}

// TradeCountInc increments the trade counter.
func TradeCountInc(side, outcome string) {
	if tradeCount == nil {
		return
	}
	tradeCount.WithLabelValues(side, outcome).Inc()
}

// VoteVolumeAdd adds to the vote volume counter.
func VoteVolumeAdd(side, outcome string, votes uint64) {
	if voteVolume == nil {
		return
	}
	voteVolume.WithLabelValues(side, outcome).Add(float64(votes))
}

// MarketGaugeAdd moves the market gauge for a lifecycle state.
func MarketGaugeAdd(n int, state string) {
	if marketGauge == nil {
		return
	}
	marketGauge.WithLabelValues(state).Add(float64(n))
}

// EngineTimeCounterAdd records the duration of one engine operation.
func EngineTimeCounterAdd(start time.Time, op string) {
	if engineTime == nil {
		return
	}
	engineTime.WithLabelValues(op).Add(time.Since(start).Seconds())
}

// Start serves the prometheus endpoint when enabled.
func Start(log *logging.Logger, cfg Config) {
	if !bool(cfg.Enabled) {
		return
	}
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	Setup()
	http.Handle(cfg.Path, promhttp.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("metrics server started",
			logging.String("address", addr),
			logging.String("path", cfg.Path))
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("metrics server failed", logging.Error(err))
		}
	}()
}

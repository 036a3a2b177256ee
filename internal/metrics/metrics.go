package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Wager metrics
	WagersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_wagers_placed_total",
			Help: "Total number of wager placements",
		},
		[]string{"market", "result"}, // accepted, or the rejection code
	)

	StakeCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_stake_collected_total",
			Help: "Sum of accepted stakes",
		},
		[]string{"market"},
	)

	// Round metrics
	RoundTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_round_transitions_total",
			Help: "Total number of round phase transitions won",
		},
		[]string{"market", "phase"},
	)

	CASConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_cas_conflicts_total",
			Help: "Total number of lost compare-and-swap attempts",
		},
		[]string{"operation"},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roundbet_tick_duration_seconds",
			Help:    "Duration of a scheduler tick over all markets",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// Settlement metrics
	Settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_settlements_total",
			Help: "Total number of settlement passes",
		},
		[]string{"market", "trigger"},
	)

	SettledWagers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_settled_wagers_total",
			Help: "Total number of wagers moved out of open",
		},
		[]string{"market", "status"}, // won, lost, refunded
	)

	SkippedWagers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_settlement_skipped_wagers_total",
			Help: "Total number of malformed wagers skipped during settlement",
		},
		[]string{"market", "reason"},
	)

	PayoutAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_payout_amount_total",
			Help: "Sum credited to wallets by settlement",
		},
		[]string{"market", "kind"}, // payout, refund
	)

	SettlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roundbet_settlement_duration_seconds",
			Help:    "Duration of a settlement pass",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"market"},
	)

	// Stream metrics
	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roundbet_stream_clients",
			Help: "Number of connected round stream clients",
		},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roundbet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roundbet_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordWagerPlaced records an accepted placement and its total stake
func RecordWagerPlaced(market string, stake float64) {
	WagersPlaced.WithLabelValues(market, "accepted").Inc()
	StakeCollected.WithLabelValues(market).Add(stake)
}

// RecordWagerRejected records a placement refused with code
func RecordWagerRejected(market, code string) {
	WagersPlaced.WithLabelValues(market, code).Inc()
}

// RecordTransition records a won phase transition
func RecordTransition(market, phase string) {
	RoundTransitions.WithLabelValues(market, phase).Inc()
}

// RecordCASConflict records a lost compare-and-swap
func RecordCASConflict(operation string) {
	CASConflicts.WithLabelValues(operation).Inc()
}

// RecordTick records one scheduler tick
func RecordTick(duration time.Duration) {
	TickDuration.Observe(duration.Seconds())
}

// RecordSettlement records the outcome of one settlement pass
func RecordSettlement(market, trigger string, duration time.Duration, won, lost, refunded int) {
	Settlements.WithLabelValues(market, trigger).Inc()
	SettlementDuration.WithLabelValues(market).Observe(duration.Seconds())
	SettledWagers.WithLabelValues(market, "won").Add(float64(won))
	SettledWagers.WithLabelValues(market, "lost").Add(float64(lost))
	SettledWagers.WithLabelValues(market, "refunded").Add(float64(refunded))
}

// RecordSkippedWager records a malformed wager left unsettled
func RecordSkippedWager(market, reason string) {
	SkippedWagers.WithLabelValues(market, reason).Inc()
}

// RecordCredit records money moved to a wallet by settlement
func RecordCredit(market, kind string, amount float64) {
	PayoutAmount.WithLabelValues(market, kind).Add(amount)
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves every registered metric in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}

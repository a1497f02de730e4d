package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "index_symbols_fetch_total",
		Help: "Source fetches by exchange and outcome",
	}, []string{"exchange", "outcome"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "index_symbols_fetch_duration_seconds",
		Help:    "Latency of source fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"exchange"})

	FetchBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "index_symbols_fetch_bytes_total",
		Help: "Payload bytes fetched per exchange",
	}, []string{"exchange"})

	ParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "index_symbols_parse_errors_total",
		Help: "Payloads that did not match their parse strategy",
	}, []string{"exchange"})

	Tickers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "index_symbols_tickers",
		Help: "Tickers parsed from the last successful fetch of each exchange",
	}, []string{"exchange"})

	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "index_symbols_runs_total",
		Help: "Acquisition runs by trigger",
	}, []string{"trigger"})
)

// Observer feeds acquisition events into the collectors above.
type Observer struct{}

func (Observer) ObserveFetch(exchange string, elapsed time.Duration, bytes int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	FetchTotal.WithLabelValues(exchange, outcome).Inc()
	FetchDuration.WithLabelValues(exchange).Observe(elapsed.Seconds())
	FetchBytes.WithLabelValues(exchange).Add(float64(bytes))
}

func (Observer) ObserveParse(exchange string, records int, err error) {
	if err != nil {
		ParseErrors.WithLabelValues(exchange).Inc()
		return
	}
	Tickers.WithLabelValues(exchange).Set(float64(records))
}

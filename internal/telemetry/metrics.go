// Package telemetry содержит метрики Prometheus для конвертаций и опроса.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки outcome для завершенных конвертаций.
const (
	OutcomeDone    = "done"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
	OutcomeNoVideo = "no_video"
)

var (
	once sync.Once

	ConversionsStarted  prometheus.Counter
	ConversionsFinished *prometheus.CounterVec
	PollAttempts        *prometheus.CounterVec
	AssetReadyDuration  prometheus.Observer
	ConversionsInFlight prometheus.Gauge
)

// Init регистрирует метрики; повторные вызовы ничего не делают.
func Init() {
	once.Do(func() {
		ConversionsStarted = promauto.NewCounter(prometheus.CounterOpts{
			Name: "convert_bot_conversions_started_total",
			Help: "Number of convert commands started",
		})
		ConversionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convert_bot_conversions_finished_total",
			Help: "Number of convert commands finished, by outcome",
		}, []string{"outcome"})
		PollAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convert_bot_poll_attempts_total",
			Help: "Number of asset status queries, by polling phase",
		}, []string{"phase"})
		AssetReadyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convert_bot_asset_ready_duration_seconds",
			Help:    "Time from asset creation to ready status",
			Buckets: []float64{5, 10, 30, 60, 120, 180, 300, 600},
		})
		ConversionsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "convert_bot_conversions_in_flight",
			Help: "Number of convert commands currently running",
		})
	})
}

// ConversionStarted отмечает запуск команды convert.
func ConversionStarted() {
	Init()
	ConversionsStarted.Inc()
	ConversionsInFlight.Inc()
}

// ConversionFinished отмечает итог команды convert.
func ConversionFinished(outcome string) {
	Init()
	ConversionsFinished.WithLabelValues(outcome).Inc()
	ConversionsInFlight.Dec()
}

// PollAttempt отмечает один запрос статуса ассета в фазе phase.
func PollAttempt(phase string) {
	Init()
	PollAttempts.WithLabelValues(phase).Inc()
}

// ObserveAssetReady записывает время от создания ассета до готовности.
func ObserveAssetReady(d time.Duration) {
	Init()
	AssetReadyDuration.Observe(d.Seconds())
}

// Package metrics регистрирует метрики леджера в Prometheus.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics — метрики операций леджера. Все методы безопасны для nil.
type LedgerMetrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	height        prometheus.Gauge
	supply        prometheus.Gauge
	verified      prometheus.Counter
	badges        *prometheus.CounterVec
	undistributed prometheus.Counter
	jobRuns       *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger возвращает метрики леджера, регистрируя их при первом вызове.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Count of ledger operations by name and result kind.",
			}, []string{"op", "result"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Ledger operation latency including commit.",
				Buckets: prometheus.DefBuckets,
			}, []string{"op"}),
			height: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ledger_commit_height",
				Help: "Height of the latest committed operation.",
			}),
			supply: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ledger_token_supply",
				Help: "Circulating reward token supply.",
			}),
			verified: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_actions_verified_total",
				Help: "Count of verified eco actions.",
			}),
			badges: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_badges_awarded_total",
				Help: "Count of awarded badges by badge id.",
			}, []string{"badge"}),
			undistributed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_rewards_undistributed_total",
				Help: "Cumulative rounding remainder left unallocated by periodic distributions.",
			}),
			jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_job_runs_total",
				Help: "Count of scheduled job runs by job and result.",
			}, []string{"job", "result"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.operations,
			ledgerRegistry.duration,
			ledgerRegistry.height,
			ledgerRegistry.supply,
			ledgerRegistry.verified,
			ledgerRegistry.badges,
			ledgerRegistry.undistributed,
			ledgerRegistry.jobRuns,
		)
	})
	return ledgerRegistry
}

// ObserveOperation учитывает завершённую операцию.
func (m *LedgerMetrics) ObserveOperation(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *LedgerMetrics) SetHeight(height uint64) {
	if m == nil {
		return
	}
	m.height.Set(float64(height))
}

func (m *LedgerMetrics) SetSupply(amount uint64) {
	if m == nil {
		return
	}
	m.supply.Set(float64(amount))
}

func (m *LedgerMetrics) IncVerified() {
	if m == nil {
		return
	}
	m.verified.Inc()
}

func (m *LedgerMetrics) IncBadgeAwarded(badgeID uint64) {
	if m == nil {
		return
	}
	m.badges.WithLabelValues(strconv.FormatUint(badgeID, 10)).Inc()
}

func (m *LedgerMetrics) AddUndistributed(remainder uint64) {
	if m == nil {
		return
	}
	m.undistributed.Add(float64(remainder))
}

// ObserveJobRun учитывает запуск фоновой задачи.
func (m *LedgerMetrics) ObserveJobRun(job, result string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
}

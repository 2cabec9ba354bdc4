// Package telemetry exposes Prometheus metrics and the small HTTP surface
// (metrics, health, latest leaderboard) used when the scanner runs as a
// service.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every Prometheus metric the pipeline emits.
type Registry struct {
	reg *prometheus.Registry

	ScanDuration    prometheus.Histogram
	ActiveScans     prometheus.Gauge
	TotalScans      prometheus.Counter
	FunnelSurvivors *prometheus.GaugeVec
	FetchErrors     *prometheus.CounterVec
	CandidatesSeen  prometheus.Counter
	AlertsEmitted   prometheus.Counter
	AlertsSkipped   prometheus.Counter
	Convergences    prometheus.Counter
	NearMisses      prometheus.Counter
}

// NewRegistry creates and registers all scanner metrics on a private
// Prometheus registry, so tests can build as many as they like.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pennywatch_scan_duration_seconds",
		Help:    "Wall time of a full scan run",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
	r.ActiveScans = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pennywatch_active_scans",
		Help: "Number of scans currently running",
	})
	r.TotalScans = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pennywatch_scans_total",
		Help: "Total scan runs since start",
	})
	r.FunnelSurvivors = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pennywatch_funnel_survivors",
		Help: "Candidates surviving each funnel stage in the latest run",
	}, []string{"stage"})
	r.FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pennywatch_fetch_errors_total",
		Help: "Upstream fetch failures by endpoint class",
	}, []string{"endpoint"})
	r.CandidatesSeen = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pennywatch_candidates_total",
		Help: "Candidates entering the funnel",
	})
	r.AlertsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pennywatch_alerts_emitted_total",
		Help: "Alerts successfully handed to the poster",
	})
	r.AlertsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pennywatch_alerts_skipped_cooldown_total",
		Help: "Ranked candidates skipped because of cooldown",
	})
	r.Convergences = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pennywatch_convergence_events_total",
		Help: "Candidates where all convergence criteria aligned",
	})
	r.NearMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pennywatch_convergence_near_misses_total",
		Help: "Candidates one criterion short of convergence",
	})

	r.reg.MustRegister(
		r.ScanDuration, r.ActiveScans, r.TotalScans, r.FunnelSurvivors,
		r.FetchErrors, r.CandidatesSeen, r.AlertsEmitted, r.AlertsSkipped,
		r.Convergences, r.NearMisses,
	)
	return r
}

// Prometheus returns the underlying registry for the HTTP handler.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

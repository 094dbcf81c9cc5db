// Package metrics holds the Prometheus collectors of the accident registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegistryMetrics groups the counters and histograms updated by the
// services. A nil *RegistryMetrics is valid and records nothing.
type RegistryMetrics struct {
	AccidentOps    *prometheus.CounterVec
	VehicleOps     *prometheus.CounterVec
	RollupDuration prometheus.Histogram
	Exports        *prometheus.CounterVec
	ExportRows     prometheus.Histogram
	SketchUploads  *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
}

// NewRegistryMetrics creates the collectors and registers them on reg.
func NewRegistryMetrics(reg prometheus.Registerer) (*RegistryMetrics, error) {
	m := &RegistryMetrics{}
	m.initMetrics()
	if err := reg.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register registry metrics: %w", err)
	}
	return m, nil
}

func (m *RegistryMetrics) initMetrics() {
	m.AccidentOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accidentes_accident_operations_total",
		Help: "Accident writes by operation and result",
	}, []string{"operation", "result"})

	m.VehicleOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accidentes_vehicle_operations_total",
		Help: "Vehicle-involvement writes by operation and result",
	}, []string{"operation", "result"})

	m.RollupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "accidentes_rollup_duration_seconds",
		Help:    "Time spent recomputing accident totals",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	m.Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accidentes_exports_total",
		Help: "Report exports by result",
	}, []string{"result"})

	m.ExportRows = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "accidentes_export_rows",
		Help:    "Rows written per exported workbook",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	m.SketchUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accidentes_sketch_uploads_total",
		Help: "Sketch uploads by result",
	}, []string{"result"})

	m.CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accidentes_cache_lookups_total",
		Help: "Cache lookups by cache name and outcome",
	}, []string{"cache", "outcome"})
}

// Describe implements the prometheus.Collector interface.
func (m *RegistryMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.AccidentOps.Describe(ch)
	m.VehicleOps.Describe(ch)
	m.RollupDuration.Describe(ch)
	m.Exports.Describe(ch)
	m.ExportRows.Describe(ch)
	m.SketchUploads.Describe(ch)
	m.CacheLookups.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *RegistryMetrics) Collect(ch chan<- prometheus.Metric) {
	m.AccidentOps.Collect(ch)
	m.VehicleOps.Collect(ch)
	m.RollupDuration.Collect(ch)
	m.Exports.Collect(ch)
	m.ExportRows.Collect(ch)
	m.SketchUploads.Collect(ch)
	m.CacheLookups.Collect(ch)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAccident counts an accident create, update or delete.
func (m *RegistryMetrics) RecordAccident(op string, err error) {
	if m == nil {
		return
	}
	m.AccidentOps.WithLabelValues(op, result(err)).Inc()
}

// RecordVehicle counts a vehicle add, update or delete.
func (m *RegistryMetrics) RecordVehicle(op string, err error) {
	if m == nil {
		return
	}
	m.VehicleOps.WithLabelValues(op, result(err)).Inc()
}

func (m *RegistryMetrics) ObserveRollup(d time.Duration) {
	if m == nil {
		return
	}
	m.RollupDuration.Observe(d.Seconds())
}

func (m *RegistryMetrics) RecordExport(rows int, err error) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(result(err)).Inc()
	if err == nil {
		m.ExportRows.Observe(float64(rows))
	}
}

func (m *RegistryMetrics) RecordSketchUpload(err error) {
	if m == nil {
		return
	}
	m.SketchUploads.WithLabelValues(result(err)).Inc()
}

func (m *RegistryMetrics) RecordCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, outcome).Inc()
}

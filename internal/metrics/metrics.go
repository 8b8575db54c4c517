// Package metrics exposes Prometheus counters and histograms for the
// attendance pipeline. All Collector methods are safe on a nil receiver.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	scans           *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	distance        *prometheus.HistogramVec
	positionUpdates *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	notifications   *prometheus.CounterVec
}

// NewCollector registers the attendance metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldcheck_scans_total",
			Help: "Scan attempts by outcome reason",
		}, []string{"reason"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldcheck_registrations_total",
			Help: "Register attempts by event type and outcome reason",
		}, []string{"event_type", "reason"}),
		distance: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fieldcheck_distance_meters",
			Help:    "Measured device to target distance per checkpoint",
			Buckets: []float64{5, 10, 25, 50, 75, 100, 150, 250, 500, 1000, 5000},
		}, []string{"checkpoint"}),
		positionUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldcheck_position_updates_total",
			Help: "Position samples received, split by whether they replaced the held sample",
		}, []string{"accepted"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fieldcheck_active_sessions",
			Help: "Scan sessions currently held in memory",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldcheck_notifications_total",
			Help: "Event notifications by notifier and result",
		}, []string{"notifier", "result"}),
	}

	reg.MustRegister(
		c.scans,
		c.registrations,
		c.distance,
		c.positionUpdates,
		c.activeSessions,
		c.notifications,
	)

	return c
}

func (c *Collector) RecordScan(reason string) {
	if c != nil {
		c.scans.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) RecordRegister(eventType, reason string) {
	if c != nil {
		c.registrations.WithLabelValues(eventType, reason).Inc()
	}
}

func (c *Collector) ObserveDistance(checkpoint string, meters float64) {
	if c != nil {
		c.distance.WithLabelValues(checkpoint).Observe(meters)
	}
}

func (c *Collector) RecordPositionUpdate(accepted bool) {
	if c == nil {
		return
	}
	label := "false"
	if accepted {
		label = "true"
	}
	c.positionUpdates.WithLabelValues(label).Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	if c != nil {
		c.activeSessions.Set(float64(n))
	}
}

func (c *Collector) RecordNotification(notifier string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.notifications.WithLabelValues(notifier, result).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

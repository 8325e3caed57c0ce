package utils

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector tracks messaging and real-time channel activity.
type MetricsCollector struct {
	registry *prometheus.Registry

	MessagesSent         prometheus.Counter
	NotificationsCreated prometheus.Counter
	PushesDelivered      prometheus.Counter
	PushesDropped        prometheus.Counter
	WSConnections        prometheus.Gauge

	operationDuration *prometheus.HistogramVec
}

func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		registry: registry,
		MessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkup_messages_sent_total",
			Help: "Direct messages persisted to the message log.",
		}),
		NotificationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkup_notifications_created_total",
			Help: "Notifications persisted to the notification log.",
		}),
		PushesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkup_pushes_delivered_total",
			Help: "Real-time events queued to at least one live connection.",
		}),
		PushesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkup_pushes_dropped_total",
			Help: "Real-time events dropped because the target had no live connections.",
		}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkup_ws_connections",
			Help: "Currently registered websocket connections.",
		}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "linkup_operation_duration_seconds",
			Help:    "Latency of actor-handled operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationDuration.WithLabelValues(operationName).Observe(duration.Seconds())
}

// Handler exposes the collector's registry for the /metrics endpoint.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

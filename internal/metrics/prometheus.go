package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts API requests by route pattern and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// CyclesTotal counts monitoring cycles by outcome (normal, alert, error).
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_cycles_total",
			Help: "Total number of monitoring cycles",
		},
		[]string{"outcome"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "monitor_cycle_duration_seconds",
			Help:    "Monitoring cycle duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	AlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "monitor_alerts_total",
			Help: "Total number of alert records created",
		},
	)

	// NotificationsTotal counts dispatch attempts by status (sent, failed).
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_notifications_total",
			Help: "Total number of notification attempts",
		},
		[]string{"status"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_recommendations_total",
			Help: "Total number of recommendations by source",
		},
		[]string{"source"},
	)

	// SensorReadingsTotal splits readings into live and synthetic.
	SensorReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_readings_total",
			Help: "Total number of sensor readings by source",
		},
		[]string{"source"},
	)

	// ThresholdBreaches counts breached bounds per field and severity.
	ThresholdBreaches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threshold_breaches_total",
			Help: "Total number of threshold breaches",
		},
		[]string{"field", "severity"},
	)

	MonitorRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_running",
			Help: "1 while periodic monitoring is active",
		},
	)

	// SensorValue holds the last value seen per field.
	SensorValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_value",
			Help: "Last observed sensor value",
		},
		[]string{"field"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected dashboard clients",
		},
	)

	// RedisOperations counts alert archive calls.
	RedisOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total number of Redis operations",
		},
		[]string{"operation", "status"},
	)
)

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_login_attempts_total", Help: "Login attempts by outcome"},
		[]string{"outcome"},
	)
	CSRFRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "csrf_rejected_total", Help: "Requests rejected by CSRF protection"},
	)
)

func MustRegister() {
	prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight, LoginAttempts, CSRFRejected)
}

package metrics

import (
	"qris-payment-service/internal/app/contracts"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricPaymentTransitionsTotal        = "payment_transitions_total"
	MetricPaymentGatewayRequestsTotal    = "payment_gateway_requests_total"
	MetricPaymentGatewayRequestDuration  = "payment_gateway_request_duration_seconds"
	MetricPaymentCallbackRejectionsTotal = "payment_callback_rejections_total"
)

// PaymentMetrics holds the Prometheus collectors for the payment lifecycle.
type PaymentMetrics struct {
	transitions        *prometheus.CounterVec
	gatewayRequests    *prometheus.CounterVec
	gatewayDuration    *prometheus.HistogramVec
	callbackRejections *prometheus.CounterVec
}

// NewPaymentMetrics creates the collectors. They are not registered, call
// Register with the target registry.
func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPaymentTransitionsTotal,
			Help: "Total number of applied payment order status transitions",
		}, []string{"from", "to", "source"}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPaymentGatewayRequestsTotal,
			Help: "Total number of payment gateway requests by outcome",
		}, []string{"operation", "outcome"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricPaymentGatewayRequestDuration,
			Help:    "Histogram of payment gateway request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"operation"}),
		callbackRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPaymentCallbackRejectionsTotal,
			Help: "Total number of rejected payment callbacks by reason",
		}, []string{"reason"}),
	}
}

func (m *PaymentMetrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.transitions,
		m.gatewayRequests,
		m.gatewayDuration,
		m.callbackRejections,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *PaymentMetrics) ObserveTransition(from, to, source string) {
	m.transitions.WithLabelValues(from, to, source).Inc()
}

func (m *PaymentMetrics) ObserveGatewayRequest(operation, outcome string, duration time.Duration) {
	m.gatewayRequests.WithLabelValues(operation, outcome).Inc()
	m.gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PaymentMetrics) ObserveCallbackRejection(reason string) {
	m.callbackRejections.WithLabelValues(reason).Inc()
}

type noopMetrics struct{}

// NewNoopMetrics returns a recorder that discards every observation.
func NewNoopMetrics() contracts.PaymentMetrics {
	return noopMetrics{}
}

func (noopMetrics) ObserveTransition(string, string, string) {}
func (noopMetrics) ObserveGatewayRequest(string, string, time.Duration) {}
func (noopMetrics) ObserveCallbackRejection(string) {}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMetrics(t *testing.T) {
	m := NewPaymentMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.ObserveTransition("PENDING", "SETTLED", "callback")
	m.ObserveTransition("PENDING", "SETTLED", "callback")
	m.ObserveGatewayRequest("create_invoice", "success", 150*time.Millisecond)
	m.ObserveCallbackRejection("invalid_signature")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("PENDING", "SETTLED", "callback")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.gatewayRequests.WithLabelValues("create_invoice", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.callbackRejections.WithLabelValues("invalid_signature")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.gatewayDuration))
}

func TestPaymentMetricsRegisterTwiceFails(t *testing.T) {
	m := NewPaymentMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	assert.Error(t, m.Register(reg))
}

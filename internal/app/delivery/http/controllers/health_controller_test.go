package controllers

import (
	"net/http"
	"net/http/httptest"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/pkg/constvars"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthCheck(t *testing.T) {
	ctrl := NewHealthController(zap.NewNop(), &config.InternalConfig{
		App: config.App{Env: constvars.EnvironmentDevelopment},
		PaymentGateway: config.AppPaymentGateway{
			ErrorURL: "https://shop.example.com/oops",
		},
	})

	req := httptest.NewRequest(http.MethodGet, constvars.RouteHealth, nil)
	req.Host = "pay.example.com"
	req.Header.Set(constvars.HeaderXForwardedProto, "http")
	rr := httptest.NewRecorder()

	ctrl.HealthCheck(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeResponse(t, rr)
	assert.Equal(t, constvars.HealthCheckStatusOK, body["status"])
	assert.Equal(t, constvars.EnvironmentDevelopment, body["environment"])
	assert.Equal(t, "http://pay.example.com", body["app_url"])
	assert.NotEmpty(t, body["timestamp"])

	endpoints := body["endpoints"].(map[string]interface{})
	assert.Equal(t, "http://pay.example.com/callback", endpoints["callback_url"])
	assert.Equal(t, "http://pay.example.com/success", endpoints["return_url"])
	assert.Equal(t, "https://shop.example.com/oops", endpoints["error_url"])
}

func TestNotFound(t *testing.T) {
	ctrl := NewHealthController(zap.NewNop(), &config.InternalConfig{})

	rr := httptest.NewRecorder()
	ctrl.NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decodeResponse(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, constvars.ErrClientEndpointNotFound, body["message"])
}

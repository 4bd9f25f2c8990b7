package middlewares

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/utils"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMiddlewares(app config.App) *Middlewares {
	return NewMiddlewares(zap.NewNop(), &config.InternalConfig{App: app})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	return envelope
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddlewares(config.App{})

	var seen string
	handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = utils.GetRequestID(r.Context())
	}))

	t.Run("Client Request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(constvars.HeaderXRequestID, "req-123")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rr.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("Malformed Client Request ID Is Replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(constvars.HeaderXRequestID, "bad id\r\ninjected")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.NotEqual(t, "bad id\r\ninjected", seen)
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("Generated Request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(constvars.HeaderXRequestID))
	})
}

func TestLoggingPassesThroughStatus(t *testing.T) {
	m := newTestMiddlewares(config.App{})
	handler := m.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	m := newTestMiddlewares(config.App{})
	handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	envelope := decodeEnvelope(t, rr.Body)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, constvars.ErrClientCannotProcessRequest, envelope["message"])
}

func TestBodyLimit(t *testing.T) {
	m := newTestMiddlewares(config.App{RequestBodyLimitInMegabyte: 1})
	assert.Equal(t, int64(1<<20), m.RequestBodyLimit())

	t.Run("Declared Length Too Large", func(t *testing.T) {
		body := bytes.NewReader(make([]byte, 2<<20))
		req := httptest.NewRequest(http.MethodPost, "/create-payment", body)
		rr := httptest.NewRecorder()

		m.BodyLimit(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, constvars.ErrClientRequestBodyTooLarge, decodeEnvelope(t, rr.Body)["message"])
	})

	t.Run("Streamed Body Is Capped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/create-payment", io.NopCloser(bytes.NewReader(make([]byte, 2<<20))))
		req.ContentLength = -1
		rr := httptest.NewRecorder()

		var readErr error
		handler := m.BodyLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))
		handler.ServeHTTP(rr, req)

		assert.Error(t, readErr)
	})

	t.Run("Small Body Passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/create-payment", strings.NewReader(`{"paymentAmount":15000}`))
		rr := httptest.NewRecorder()

		m.BodyLimit(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Default Limit", func(t *testing.T) {
		assert.Equal(t, int64(defaultRequestBodyLimitInMegabyte<<20), newTestMiddlewares(config.App{}).RequestBodyLimit())
	})
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(5, time.Minute, time.Minute, constvars.ErrClientTooManyPaymentRequests, zap.NewNop())
	limiter.now = func() time.Time { return now }
	handler := limiter.Limit(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/create-payment", nil)
		req.Header.Set(constvars.HeaderXForwardedFor, ip)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send("10.0.0.1").Code, "request %d should pass", i+1)
	}

	rr := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, constvars.ErrClientTooManyPaymentRequests, decodeEnvelope(t, rr.Body)["message"])

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "other clients keep their own bucket")

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1").Code, "still blocked")

	now = now.Add(31 * time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, time.Minute, time.Minute, constvars.ErrClientTooManyPaymentRequests, zap.NewNop())
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	limiter.Cleanup(5 * time.Minute)

	assert.Empty(t, limiter.visitors)
	assert.Empty(t, limiter.blocked)
}

func TestPaymentRateLimiterDefaults(t *testing.T) {
	limiter := newTestMiddlewares(config.App{}).PaymentRateLimiter()

	assert.Equal(t, 5, limiter.requests)
	assert.Equal(t, time.Minute, limiter.blockTime)
}

func TestGlobalRateLimit(t *testing.T) {
	m := newTestMiddlewares(config.App{MaxRequests: 2, RateLimitWindowInMinutes: 1})
	handler := m.GlobalRateLimit()(okHandler())

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(constvars.HeaderXForwardedFor, "10.0.0.9")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	rr := send()
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, constvars.ErrClientTooManyRequests, decodeEnvelope(t, rr.Body)["message"])
}

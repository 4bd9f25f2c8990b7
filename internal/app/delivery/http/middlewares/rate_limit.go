package middlewares

import (
	"net/http"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/exceptions"
	"qris-payment-service/internal/pkg/utils"
	"time"

	"github.com/go-chi/httprate"
)

// GlobalRateLimit applies the service wide MaxRequests per window, keyed by
// client IP.
func (m *Middlewares) GlobalRateLimit() func(http.Handler) http.Handler {
	requests := m.InternalConfig.App.MaxRequests
	if requests <= 0 {
		requests = 100
	}
	window := time.Duration(m.InternalConfig.App.RateLimitWindowInMinutes) * time.Minute
	if window <= 0 {
		window = 15 * time.Minute
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return utils.GetClientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTooManyRequests(nil, constvars.ErrClientTooManyRequests, utils.GetClientIP(r)))
		}),
	)
}

package middlewares

import (
	"net/http"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/exceptions"
	"qris-payment-service/internal/pkg/utils"

	"go.uber.org/zap"
)

const defaultRequestBodyLimitInMegabyte = 10

// BodyLimit caps the request body. Handlers see a read error once the limit
// is crossed.
func (m *Middlewares) BodyLimit(next http.Handler) http.Handler {
	limit := m.RequestBodyLimit()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > limit {
			m.writeBodyTooLarge(w, r, limit)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

func (m *Middlewares) RequestBodyLimit() int64 {
	megabytes := m.InternalConfig.App.RequestBodyLimitInMegabyte
	if megabytes <= 0 {
		megabytes = defaultRequestBodyLimitInMegabyte
	}
	return int64(megabytes) << 20
}

func (m *Middlewares) writeBodyTooLarge(w http.ResponseWriter, r *http.Request, limit int64) {
	utils.LogSecurityEvent(m.Log, "request_body_too_large", utils.GetRequestID(r.Context()), utils.SeverityLow,
		zap.String(constvars.LoggingEndpointKey, r.URL.Path),
		zap.Int64("content_length", r.ContentLength),
	)
	utils.BuildErrorResponse(m.Log, w, exceptions.ErrRequestBodyTooLarge(nil, limit))
}

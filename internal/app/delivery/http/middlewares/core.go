package middlewares

import (
	"context"
	"net/http"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/utils"
	"regexp"
	"time"

	"go.uber.org/zap"
)

var clientRequestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type responseRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytesWritten += n
	return n, err
}

// Logging writes one line when a request arrives and one when it completes.
// The processor callback is logged like any other request, its form body is
// never logged here.
func (m *Middlewares) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := utils.GetRequestID(r.Context())

		m.Log.Info("API request started",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Any("is_client_request_id", r.Context().Value(constvars.CONTEXT_IS_CLIENT_REQUEST_ID_KEY)),
			zap.String(constvars.LoggingMethodKey, r.Method),
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.String(constvars.LoggingRemoteAddrKey, utils.GetClientIP(r)),
			zap.String(constvars.LoggingUserAgentKey, r.UserAgent()),
		)

		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.Int(constvars.LoggingStatusCodeKey, rec.statusCode),
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMethodKey, r.Method),
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.Int("response_bytes", rec.bytesWritten),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Bool(constvars.LoggingSuccessKey, rec.statusCode < http.StatusBadRequest),
		}
		if rec.statusCode >= http.StatusInternalServerError {
			m.Log.Warn("API request completed", fields...)
			return
		}
		m.Log.Info("API request completed", fields...)
	})
}

// RequestIDMiddleware reuses a well formed X-Request-ID from the client and
// generates one otherwise. The id is echoed back on the response.
func (m *Middlewares) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constvars.HeaderXRequestID)
		isClientRequestID := clientRequestIDPattern.MatchString(requestID)
		if !isClientRequestID {
			requestID = utils.GenerateRequestID()
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_REQUEST_ID_KEY, requestID)
		ctx = context.WithValue(ctx, constvars.CONTEXT_IS_CLIENT_REQUEST_ID_KEY, isClientRequestID)

		w.Header().Set(constvars.HeaderXRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package utils

import (
	"context"
	"time"

	"qris-payment-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

const (
	SeverityInfo   = "info"
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// LogBusinessEvent records a payment lifecycle milestone such as a creation or
// a terminal transition.
func LogBusinessEvent(logger *zap.Logger, event string, requestID string, fields ...zap.Field) {
	allFields := make([]zap.Field, 0, len(fields)+3)
	allFields = append(allFields,
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("business_event", event),
		zap.Time("timestamp", time.Now()),
	)
	allFields = append(allFields, fields...)

	logger.Info("Business event occurred", allFields...)
}

// LogSecurityEvent records trust boundary events: rejected callbacks, rate
// limit hits, oversized bodies. Anything at SeverityHigh is logged as an error.
func LogSecurityEvent(logger *zap.Logger, event string, requestID string, severity string, fields ...zap.Field) {
	allFields := make([]zap.Field, 0, len(fields)+4)
	allFields = append(allFields,
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("security_event", event),
		zap.String("severity", severity),
		zap.Time("timestamp", time.Now()),
	)
	allFields = append(allFields, fields...)

	switch severity {
	case SeverityHigh:
		logger.Error("Security event detected", allFields...)
	case SeverityInfo:
		logger.Info("Security event detected", allFields...)
	default:
		logger.Warn("Security event detected", allFields...)
	}
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string); ok {
		return requestID
	}
	return ""
}

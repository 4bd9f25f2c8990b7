package payments

import (
	"qris-payment-service/internal/app/models"
	"qris-payment-service/internal/app/services/shared/payment_gateway"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/dto/responses"
)

const (
	callbackResultSuccess = "00"
	callbackResultFailed  = "01"
)

// statusFromProcessorCode maps a transaction status code. Codes other than
// success and failure leave the order pending.
func statusFromProcessorCode(code string) models.PaymentStatus {
	switch code {
	case payment_gateway.StatusCodeSuccess:
		return models.PaymentStatusSettled
	case payment_gateway.StatusCodeFailed:
		return models.PaymentStatusFailed
	default:
		return models.PaymentStatusPending
	}
}

// statusFromCallbackResult maps a callback resultCode. ok is false for codes
// that carry no final outcome.
func statusFromCallbackResult(resultCode string) (status models.PaymentStatus, ok bool) {
	switch resultCode {
	case callbackResultSuccess:
		return models.PaymentStatusSettled, true
	case callbackResultFailed:
		return models.PaymentStatusFailed, true
	default:
		return "", false
	}
}

func processorCodeFor(status models.PaymentStatus) string {
	switch status {
	case models.PaymentStatusSettled:
		return payment_gateway.StatusCodeSuccess
	case models.PaymentStatusFailed, models.PaymentStatusExpired:
		return payment_gateway.StatusCodeFailed
	default:
		return payment_gateway.StatusCodePending
	}
}

func statusMessageFor(status models.PaymentStatus) string {
	switch status {
	case models.PaymentStatusSettled:
		return constvars.PaymentSettledMessage
	case models.PaymentStatusFailed:
		return constvars.PaymentFailedMessage
	case models.PaymentStatusExpired:
		return constvars.PaymentExpiredMessage
	default:
		return constvars.PaymentWaitingMessage
	}
}

func toPaymentStatusResponse(order *models.PaymentOrder) *responses.PaymentStatus {
	return &responses.PaymentStatus{
		MerchantOrderID: order.MerchantOrderID,
		Reference:       order.ProcessorReference,
		Amount:          order.Amount,
		Status:          string(order.Status),
		StatusCode:      processorCodeFor(order.Status),
		StatusMessage:   statusMessageFor(order.Status),
		IsFinal:         order.Status.IsTerminal(),
		CreatedAt:       order.CreatedAt,
		ExpiresAt:       order.ExpiresAt,
		FinalizedAt:     order.FinalizedAt,
	}
}

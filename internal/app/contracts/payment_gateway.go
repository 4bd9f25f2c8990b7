package contracts

import (
	"context"
	"qris-payment-service/internal/pkg/dto/requests"
	"qris-payment-service/internal/pkg/dto/responses"
)

// PaymentGatewayService talks to the payment processor. Failures are returned
// as *exceptions.GatewayError.
type PaymentGatewayService interface {
	CreateInvoice(ctx context.Context, request *requests.PaymentInvoice) (*responses.PaymentInvoice, error)
	QueryStatus(ctx context.Context, merchantOrderID string) (*responses.PaymentGatewayStatus, error)
}

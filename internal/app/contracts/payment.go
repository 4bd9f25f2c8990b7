package contracts

import (
	"context"
	"qris-payment-service/internal/pkg/dto/requests"
	"qris-payment-service/internal/pkg/dto/responses"
	"time"
)

type PaymentUsecase interface {
	CreatePayment(ctx context.Context, request *requests.CreatePayment) (*responses.CreatePayment, error)
	GetPaymentStatus(ctx context.Context, merchantOrderID string) (*responses.PaymentStatus, error)
	HandleCallback(ctx context.Context, request *requests.PaymentCallback) error
	ExpireOrder(ctx context.Context, merchantOrderID string) (*responses.PaymentStatus, error)
	ExpireDueOrders(ctx context.Context, now time.Time, limit int) (int, error)
}

package contracts

import (
	"context"
	"qris-payment-service/internal/app/models"
)

type PaymentEventPublisher interface {
	PublishStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error
}

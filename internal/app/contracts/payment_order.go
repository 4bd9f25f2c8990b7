package contracts

import (
	"context"
	"qris-payment-service/internal/app/models"
	"time"
)

// PaymentOrderRepository is the authoritative store of payment orders.
//
// FindByMerchantOrderID returns nil without error when the order is absent.
// Create fails with exceptions.ErrOrderAlreadyExists on a duplicate id.
// CompareAndSetStatus applies update only while the stored status equals
// update.From and reports whether it did; the returned order is the state
// after the call, or nil when the order is absent.
type PaymentOrderRepository interface {
	FindByMerchantOrderID(ctx context.Context, merchantOrderID string) (*models.PaymentOrder, error)
	Create(ctx context.Context, order *models.PaymentOrder) error
	CompareAndSetStatus(ctx context.Context, merchantOrderID string, update models.StatusUpdate) (*models.PaymentOrder, bool, error)
	FindExpirable(ctx context.Context, now time.Time, limit int) ([]models.PaymentOrder, error)
}

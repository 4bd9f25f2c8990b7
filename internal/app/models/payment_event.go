package models

import "time"

type PaymentStatusChangedEvent struct {
	EventID         string           `json:"eventId"`
	MerchantOrderID string           `json:"merchantOrderId"`
	Reference       string           `json:"reference,omitempty"`
	Amount          int64            `json:"amount"`
	Status          PaymentStatus    `json:"status"`
	PreviousStatus  PaymentStatus    `json:"previousStatus"`
	Source          TransitionSource `json:"source"`
	OccurredAt      time.Time        `json:"occurredAt"`
}

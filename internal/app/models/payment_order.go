package models

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusCreated PaymentStatus = "CREATED"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSettled PaymentStatus = "SETTLED"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusExpired PaymentStatus = "EXPIRED"
)

// allowedTransitions lists every legal edge of the order lifecycle. Terminal
// states have no outgoing edges.
var allowedTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusCreated: {PaymentStatusPending},
	PaymentStatusPending: {PaymentStatusSettled, PaymentStatusFailed, PaymentStatusExpired},
}

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSettled || s == PaymentStatusFailed || s == PaymentStatusExpired
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

type TransitionSource string

const (
	TransitionSourceCreate   TransitionSource = "create"
	TransitionSourcePoll     TransitionSource = "poll"
	TransitionSourceCallback TransitionSource = "callback"
	TransitionSourceExpiry   TransitionSource = "expiry"
)

type PaymentOrder struct {
	MerchantOrderID      string           `json:"merchantOrderId" bson:"_id"`
	Amount               int64            `json:"amount" bson:"amount"`
	CustomerName         string           `json:"customerName" bson:"customer_name"`
	CustomerEmail        string           `json:"customerEmail" bson:"customer_email"`
	ItemDetails          string           `json:"itemDetails,omitempty" bson:"item_details,omitempty"`
	Status               PaymentStatus    `json:"status" bson:"status"`
	ProcessorReference   string           `json:"reference,omitempty" bson:"processor_reference,omitempty"`
	QRString             string           `json:"qrString,omitempty" bson:"qr_string,omitempty"`
	PaymentURL           string           `json:"paymentUrl,omitempty" bson:"payment_url,omitempty"`
	VANumber             string           `json:"vaNumber,omitempty" bson:"va_number,omitempty"`
	LastProcessorCode    string           `json:"lastProcessorCode,omitempty" bson:"last_processor_code,omitempty"`
	LastProcessorMessage string           `json:"lastProcessorMessage,omitempty" bson:"last_processor_message,omitempty"`
	FinalizedBy          TransitionSource `json:"finalizedBy,omitempty" bson:"finalized_by,omitempty"`
	CreatedAt            time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt            time.Time        `json:"updatedAt" bson:"updated_at"`
	ExpiresAt            time.Time        `json:"expiresAt" bson:"expires_at"`
	FinalizedAt          *time.Time       `json:"finalizedAt,omitempty" bson:"finalized_at,omitempty"`
	PurgeAt              *time.Time       `json:"-" bson:"purge_at,omitempty"`
}

// IsExpiredAt reports whether a pending order has outlived its payment window.
func (o *PaymentOrder) IsExpiredAt(now time.Time) bool {
	return o.Status == PaymentStatusPending && !now.Before(o.ExpiresAt)
}

// StatusUpdate describes a compare-and-set transition applied by an order store.
type StatusUpdate struct {
	From             PaymentStatus
	To               PaymentStatus
	Source           TransitionSource
	ProcessorCode    string
	ProcessorMessage string
	Reference        string
	At               time.Time
	Retention        time.Duration
}

// Apply returns a copy of order with the update applied.
func (u StatusUpdate) Apply(order PaymentOrder) PaymentOrder {
	order.Status = u.To
	order.UpdatedAt = u.At
	if u.ProcessorCode != "" {
		order.LastProcessorCode = u.ProcessorCode
	}
	if u.ProcessorMessage != "" {
		order.LastProcessorMessage = u.ProcessorMessage
	}
	if u.Reference != "" && order.ProcessorReference == "" {
		order.ProcessorReference = u.Reference
	}
	if u.To.IsTerminal() {
		finalizedAt := u.At
		order.FinalizedAt = &finalizedAt
		order.FinalizedBy = u.Source
		if u.Retention > 0 {
			purgeAt := u.At.Add(u.Retention)
			order.PurgeAt = &purgeAt
		}
	}
	return order
}

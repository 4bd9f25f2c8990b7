package responses

import "time"

type CreatePayment struct {
	MerchantOrderID string    `json:"merchantOrderId"`
	Reference       string    `json:"reference"`
	PaymentURL      string    `json:"paymentUrl,omitempty"`
	QRString        string    `json:"qrString"`
	VANumber        string    `json:"vaNumber,omitempty"`
	Amount          int64     `json:"amount"`
	CustomerName    string    `json:"customerName"`
	Status          string    `json:"status"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// PaymentStatus is the status snapshot returned to polling clients. StatusCode
// mirrors the processor's codes so existing clients keep working.
type PaymentStatus struct {
	MerchantOrderID string     `json:"merchantOrderId"`
	Reference       string     `json:"reference,omitempty"`
	Amount          int64      `json:"amount"`
	Status          string     `json:"status"`
	StatusCode      string     `json:"statusCode"`
	StatusMessage   string     `json:"statusMessage"`
	IsFinal         bool       `json:"isFinal"`
	CreatedAt       time.Time  `json:"createdAt"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	FinalizedAt     *time.Time `json:"finalizedAt,omitempty"`
}

package constvars

const (
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	CreatePaymentSuccessMessage    = "payment created successfully"
	GetPaymentStatusSuccessMessage = "get payment status successfully"
	PaymentWaitingMessage          = "waiting for payment"
	PaymentSettledMessage          = "payment successful"
	PaymentFailedMessage           = "payment failed"
	PaymentExpiredMessage          = "payment expired"
	HealthCheckStatusOK            = "OK"
)

package responses

type PaymentInvoice struct {
	Reference     string
	PaymentURL    string
	QRString      string
	VANumber      string
	StatusCode    string
	StatusMessage string
}

type PaymentGatewayStatus struct {
	MerchantOrderID string
	Reference       string
	StatusCode      string
	StatusMessage   string
}

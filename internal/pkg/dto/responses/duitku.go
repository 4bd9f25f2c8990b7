package responses

type DuitkuCreateInvoice struct {
	MerchantCode  string `json:"merchantCode"`
	Reference     string `json:"reference"`
	PaymentURL    string `json:"paymentUrl"`
	VANumber      string `json:"vaNumber"`
	QRString      string `json:"qrString"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

type DuitkuTransactionStatus struct {
	MerchantOrderID string `json:"merchantOrderId"`
	Reference       string `json:"reference"`
	StatusCode      string `json:"statusCode"`
	StatusMessage   string `json:"statusMessage"`
}

// DuitkuErrorBody is the shape of non-2xx bodies. The key casing of Message
// differs between endpoints, decoding matches it case-insensitively.
type DuitkuErrorBody struct {
	Message       string `json:"Message"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

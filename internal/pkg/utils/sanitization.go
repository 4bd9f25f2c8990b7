package utils

import (
	"html"
	"qris-payment-service/internal/pkg/dto/requests"
	"strings"
)

func collapseWhiteSpace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// SanitizeCreatePaymentRequest normalizes user input before validation.
func SanitizeCreatePaymentRequest(input *requests.CreatePayment) {
	input.CustomerName = collapseWhiteSpace(input.CustomerName)
	input.CustomerEmail = strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	input.ItemDetails = strings.TrimSpace(input.ItemDetails)
}

// EscapeCreatePaymentRequest HTML-escapes free text. Run it before validation.
func EscapeCreatePaymentRequest(input *requests.CreatePayment) {
	input.CustomerName = html.EscapeString(input.CustomerName)
	input.ItemDetails = html.EscapeString(input.ItemDetails)
}

func SanitizePaymentCallbackRequest(input *requests.PaymentCallback) {
	input.MerchantCode = strings.TrimSpace(input.MerchantCode)
	input.Amount = strings.TrimSpace(input.Amount)
	input.MerchantOrderID = strings.TrimSpace(input.MerchantOrderID)
	input.ResultCode = strings.TrimSpace(input.ResultCode)
	input.Signature = strings.ToLower(strings.TrimSpace(input.Signature))
}

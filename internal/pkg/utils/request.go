package utils

import (
	"fmt"
	"net"
	"net/http"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/dto/requests"
	"strings"
)

// BuildPublicBaseURL returns the externally visible base URL of the service
// for r. The scheme defaults to https unless a proxy says otherwise.
func BuildPublicBaseURL(r *http.Request) string {
	scheme := "https"
	if forwarded := r.Header.Get(constvars.HeaderXForwardedProto); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// ResolvePublicURL returns configured when set, otherwise base joined with path.
func ResolvePublicURL(configured, base, path string) string {
	if configured != "" {
		return configured
	}
	return strings.TrimRight(base, "/") + path
}

func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get(constvars.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BuildPaymentCallbackRequest reads the processor notification from a parsed form.
func BuildPaymentCallbackRequest(r *http.Request) *requests.PaymentCallback {
	return &requests.PaymentCallback{
		MerchantCode:     r.PostFormValue("merchantCode"),
		Amount:           r.PostFormValue("amount"),
		MerchantOrderID:  r.PostFormValue("merchantOrderId"),
		ProductDetail:    r.PostFormValue("productDetail"),
		AdditionalParam:  r.PostFormValue("additionalParam"),
		PaymentCode:      r.PostFormValue("paymentCode"),
		ResultCode:       r.PostFormValue("resultCode"),
		MerchantUserID:   r.PostFormValue("merchantUserId"),
		Reference:        r.PostFormValue("reference"),
		Signature:        r.PostFormValue("signature"),
		PublisherOrderID: r.PostFormValue("publisherOrderId"),
		SpUserHash:       r.PostFormValue("spUserHash"),
		SettlementDate:   r.PostFormValue("settlementDate"),
		IssuerCode:       r.PostFormValue("issuerCode"),
	}
}

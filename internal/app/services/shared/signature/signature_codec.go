package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"qris-payment-service/internal/app/contracts"
	"strings"
)

const (
	AlgorithmMD5        = "md5"
	AlgorithmHMACSHA256 = "hmac-sha256"
)

// Field orders fixed by the processor protocol. The secret is appended last by
// the codec, it is not part of these lists.
const (
	FieldMerchantCode    = "merchantCode"
	FieldAmount          = "amount"
	FieldPaymentMethod   = "paymentMethod"
	FieldMerchantOrderID = "merchantOrderId"
)

var (
	CreationFieldOrder = []string{FieldMerchantCode, FieldAmount, FieldPaymentMethod, FieldMerchantOrderID}
	CallbackFieldOrder = []string{FieldMerchantCode, FieldAmount, FieldMerchantOrderID}
	StatusFieldOrder   = []string{FieldMerchantCode, FieldMerchantOrderID}
)

// Fields picks values in the given protocol order. A missing key yields an
// empty string so the resulting signature simply will not verify.
func Fields(order []string, values map[string]string) []string {
	fields := make([]string, len(order))
	for i, key := range order {
		fields[i] = values[key]
	}
	return fields
}

type md5Codec struct{}

type hmacSHA256Codec struct{}

// NewSignatureCodec returns the codec for algorithm. Duitku itself only
// accepts md5.
func NewSignatureCodec(algorithm string) (contracts.SignatureCodec, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmMD5:
		return md5Codec{}, nil
	case AlgorithmHMACSHA256:
		return hmacSHA256Codec{}, nil
	default:
		return nil, fmt.Errorf("unsupported signature algorithm: %s", algorithm)
	}
}

func (md5Codec) Sign(fields []string, secret string) string {
	sum := md5.Sum([]byte(strings.Join(fields, "") + secret))
	return hex.EncodeToString(sum[:])
}

func (c md5Codec) Verify(fields []string, secret, candidate string) bool {
	return constantTimeEqualHex(c.Sign(fields, secret), candidate)
}

func (hmacSHA256Codec) Sign(fields []string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(fields, "")))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c hmacSHA256Codec) Verify(fields []string, secret, candidate string) bool {
	return constantTimeEqualHex(c.Sign(fields, secret), candidate)
}

func constantTimeEqualHex(expected, candidate string) bool {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}

package payment_gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/app/services/shared/signature"
	"qris-payment-service/internal/pkg/dto/requests"
	"qris-payment-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testMerchantCode = "D1234"
	testAPIKey       = "secretkey123"
	testOrderID      = "ORDER-1700000000000-ABCDEF12"
)

func newTestService(t *testing.T, baseURL string, timeout int) *duitkuService {
	t.Helper()
	codec, err := signature.NewSignatureCodec(signature.AlgorithmMD5)
	require.NoError(t, err)

	svc := NewDuitkuService(config.AppPaymentGateway{
		MerchantCode:            testMerchantCode,
		APIKey:                  testAPIKey,
		BaseURL:                 baseURL,
		PaymentMethod:           "SP",
		UserAgent:               "Simple-QRIS-Payment/1.0",
		RequestTimeoutInSeconds: timeout,
		MaxRequestsPerSecond:    100,
	}, codec, nil, zap.NewNop())
	return svc.(*duitkuService)
}

func testInvoice() *requests.PaymentInvoice {
	return &requests.PaymentInvoice{
		MerchantOrderID:       testOrderID,
		Amount:                10000,
		ProductDetails:        "Payment by Budi",
		CustomerName:          "Budi",
		CustomerEmail:         "budi@example.com",
		CallbackURL:           "https://merchant.example/callback",
		ReturnURL:             "https://merchant.example/return",
		ExpiryPeriodInMinutes: 15,
	}
}

func gatewayErrorOf(t *testing.T, err error) *exceptions.GatewayError {
	t.Helper()
	var gatewayErr *exceptions.GatewayError
	require.True(t, errors.As(err, &gatewayErr), "expected gateway error, got %v", err)
	return gatewayErr
}

func TestCreateInvoiceSuccess(t *testing.T) {
	var received requests.DuitkuCreateInvoice
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/merchant/createinvoice", r.URL.Path)
		assert.Equal(t, "Simple-QRIS-Payment/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"merchantCode":"D1234","reference":"DS1234ABC","paymentUrl":"https://pay.example/DS1234ABC","qrString":"00020101021226","statusCode":"00","statusMessage":"SUCCESS"}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL+"/", 5)
	result, err := svc.CreateInvoice(context.Background(), testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "DS1234ABC", result.Reference)
	assert.Equal(t, "https://pay.example/DS1234ABC", result.PaymentURL)
	assert.Equal(t, "00020101021226", result.QRString)

	assert.Equal(t, testMerchantCode, received.MerchantCode)
	assert.Equal(t, int64(10000), received.PaymentAmount)
	assert.Equal(t, "SP", received.PaymentMethod)
	assert.Equal(t, testOrderID, received.MerchantOrderID)
	assert.Equal(t, 15, received.ExpiryPeriod)
	assert.Equal(t, "48efa6fe8db1347a8e47c85dea307595", received.Signature)
}

func TestCreateInvoiceRejectedByProcessor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"statusCode":"01","statusMessage":"Minimum payment amount is 10000"}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, 5)
	_, err := svc.CreateInvoice(context.Background(), testInvoice())

	gatewayErr := gatewayErrorOf(t, err)
	assert.Equal(t, exceptions.GatewayErrorRejected, gatewayErr.Kind)
	assert.Equal(t, "01", gatewayErr.Code)
	assert.Equal(t, "Minimum payment amount is 10000", gatewayErr.Details)
}

func TestCreateInvoiceHTTPStatusClassification(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		wantKind    exceptions.GatewayErrorKind
		wantDetails string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"Message":"Wrong signature"}`, wantKind: exceptions.GatewayErrorAuthRejected, wantDetails: "Wrong signature"},
		{name: "forbidden", status: http.StatusForbidden, wantKind: exceptions.GatewayErrorAuthRejected},
		{name: "bad request", status: http.StatusBadRequest, body: `{"Message":"Invalid email"}`, wantKind: exceptions.GatewayErrorBadRequest, wantDetails: "Invalid email"},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantKind: exceptions.GatewayErrorUpstream, wantDetails: "boom"},
		{name: "bad gateway", status: http.StatusBadGateway, wantKind: exceptions.GatewayErrorUpstream},
		{name: "unexpected status", status: http.StatusNotFound, wantKind: exceptions.GatewayErrorUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			svc := newTestService(t, server.URL, 5)
			_, err := svc.CreateInvoice(context.Background(), testInvoice())

			gatewayErr := gatewayErrorOf(t, err)
			assert.Equal(t, tc.wantKind, gatewayErr.Kind)
			assert.Equal(t, tc.status, gatewayErr.HTTPStatus)
			assert.Equal(t, tc.wantDetails, gatewayErr.Details)
			assert.Equal(t, OperationCreateInvoice, gatewayErr.Operation)
		})
	}
}

func TestCreateInvoiceUndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, 5)
	_, err := svc.CreateInvoice(context.Background(), testInvoice())

	assert.Equal(t, exceptions.GatewayErrorUnknown, gatewayErrorOf(t, err).Kind)
}

func TestCreateInvoiceTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	svc := newTestService(t, server.URL, 5)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.CreateInvoice(ctx, testInvoice())

	assert.Equal(t, exceptions.GatewayErrorTimeout, gatewayErrorOf(t, err).Kind)
}

func TestCreateInvoiceConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	svc := newTestService(t, url, 5)
	_, err := svc.CreateInvoice(context.Background(), testInvoice())

	assert.Equal(t, exceptions.GatewayErrorUpstream, gatewayErrorOf(t, err).Kind)
}

func TestQueryStatus(t *testing.T) {
	var received requests.DuitkuTransactionStatus
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchant/transactionStatus", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"merchantOrderId":"ORDER-1700000000000-ABCDEF12","reference":"DS1234ABC","amount":"10000","statusCode":"00","statusMessage":"SUCCESS"}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, 5)
	result, err := svc.QueryStatus(context.Background(), testOrderID)
	require.NoError(t, err)

	assert.Equal(t, StatusCodeSuccess, result.StatusCode)
	assert.Equal(t, "DS1234ABC", result.Reference)
	assert.Equal(t, testOrderID, result.MerchantOrderID)

	codec, _ := signature.NewSignatureCodec(signature.AlgorithmMD5)
	assert.True(t, codec.Verify([]string{testMerchantCode, testOrderID}, testAPIKey, received.Signature))
}

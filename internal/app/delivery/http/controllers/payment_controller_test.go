package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/dto/requests"
	"qris-payment-service/internal/pkg/dto/responses"
	"qris-payment-service/internal/pkg/exceptions"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePaymentUsecase struct {
	createRequest   *requests.CreatePayment
	createResult    *responses.CreatePayment
	createErr       error
	statusOrderID   string
	statusResult    *responses.PaymentStatus
	statusErr       error
	callbackRequest *requests.PaymentCallback
	callbackErr     error
}

func (f *fakePaymentUsecase) CreatePayment(ctx context.Context, request *requests.CreatePayment) (*responses.CreatePayment, error) {
	f.createRequest = request
	return f.createResult, f.createErr
}

func (f *fakePaymentUsecase) GetPaymentStatus(ctx context.Context, merchantOrderID string) (*responses.PaymentStatus, error) {
	f.statusOrderID = merchantOrderID
	return f.statusResult, f.statusErr
}

func (f *fakePaymentUsecase) HandleCallback(ctx context.Context, request *requests.PaymentCallback) error {
	f.callbackRequest = request
	return f.callbackErr
}

func (f *fakePaymentUsecase) ExpireOrder(ctx context.Context, merchantOrderID string) (*responses.PaymentStatus, error) {
	return nil, nil
}

func (f *fakePaymentUsecase) ExpireDueOrders(ctx context.Context, now time.Time, limit int) (int, error) {
	return 0, nil
}

func newPaymentTestRouter(usecase *fakePaymentUsecase, gatewayConfig config.AppPaymentGateway) http.Handler {
	ctrl := NewPaymentController(zap.NewNop(), usecase, &config.InternalConfig{PaymentGateway: gatewayConfig})

	r := chi.NewRouter()
	r.Post(constvars.RouteCreatePayment, ctrl.CreatePayment)
	r.Get(constvars.RoutePaymentStatus, ctrl.GetPaymentStatus)
	r.Post(constvars.RouteCallback, ctrl.PaymentCallback)
	return r
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestCreatePayment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		usecase := &fakePaymentUsecase{
			createResult: &responses.CreatePayment{
				MerchantOrderID: "ORDER-1700000000000-ABCD1234",
				Reference:       "DK-REF-1",
				QRString:        "00020101021226",
				Amount:          15000,
				CustomerName:    "Jane Doe",
				Status:          "PENDING",
			},
		}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		body := `{"customerName":"  Jane   Doe ","customerEmail":" Jane@Example.com ","paymentAmount":15000}`
		req := httptest.NewRequest(http.MethodPost, constvars.RouteCreatePayment, strings.NewReader(body))
		req.Host = "pay.example.com"
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		response := decodeResponse(t, rr)
		assert.Equal(t, true, response["success"])
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "ORDER-1700000000000-ABCD1234", data["merchantOrderId"])
		assert.Equal(t, "00020101021226", data["qrString"])

		require.NotNil(t, usecase.createRequest)
		assert.Equal(t, "Jane Doe", usecase.createRequest.CustomerName)
		assert.Equal(t, "jane@example.com", usecase.createRequest.CustomerEmail)
		assert.Equal(t, "https://pay.example.com/callback", usecase.createRequest.CallbackURL)
		assert.Equal(t, "https://pay.example.com/success", usecase.createRequest.ReturnURL)
	})

	t.Run("Configured URLs Win", func(t *testing.T) {
		usecase := &fakePaymentUsecase{createResult: &responses.CreatePayment{}}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{
			CallbackURL: "https://hooks.example.com/duitku",
			ReturnURL:   "https://shop.example.com/thanks",
		})

		req := httptest.NewRequest(http.MethodPost, constvars.RouteCreatePayment, strings.NewReader(`{"customerName":"Jane Doe","customerEmail":"jane@example.com","paymentAmount":15000}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://hooks.example.com/duitku", usecase.createRequest.CallbackURL)
		assert.Equal(t, "https://shop.example.com/thanks", usecase.createRequest.ReturnURL)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		usecase := &fakePaymentUsecase{}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		req := httptest.NewRequest(http.MethodPost, constvars.RouteCreatePayment, strings.NewReader(`{"customerName":`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, false, decodeResponse(t, rr)["success"])
		assert.Nil(t, usecase.createRequest)
	})

	t.Run("Usecase Error Envelope", func(t *testing.T) {
		usecase := &fakePaymentUsecase{createErr: exceptions.ErrGatewayTimeout(errors.New("deadline"), "create_invoice")}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		req := httptest.NewRequest(http.MethodPost, constvars.RouteCreatePayment, strings.NewReader(`{"customerName":"Jane Doe","customerEmail":"jane@example.com","paymentAmount":15000}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
		response := decodeResponse(t, rr)
		assert.Equal(t, false, response["success"])
		assert.Equal(t, constvars.ErrClientPaymentGatewayTimeout, response["message"])
	})

	t.Run("Gateway Timeout Unwraps To Deadline", func(t *testing.T) {
		gatewayErr := exceptions.NewGatewayError(exceptions.GatewayErrorTimeout, "create_invoice", context.DeadlineExceeded)
		usecase := &fakePaymentUsecase{createErr: exceptions.ErrPaymentGateway(gatewayErr)}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		require.ErrorIs(t, usecase.createErr, context.DeadlineExceeded)

		req := httptest.NewRequest(http.MethodPost, constvars.RouteCreatePayment, strings.NewReader(`{"customerName":"Jane Doe","customerEmail":"jane@example.com","paymentAmount":15000}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
		assert.Equal(t, constvars.ErrClientPaymentGatewayTimeout, decodeResponse(t, rr)["message"])
	})

	t.Run("Bare Deadline Exceeded", func(t *testing.T) {
		usecase := &fakePaymentUsecase{createErr: context.DeadlineExceeded}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		req := httptest.NewRequest(http.MethodPost, constvars.RouteCreatePayment, strings.NewReader(`{"customerName":"Jane Doe","customerEmail":"jane@example.com","paymentAmount":15000}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
		assert.Equal(t, constvars.ErrClientServerLongRespond, decodeResponse(t, rr)["message"])
	})
}

func TestGetPaymentStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		usecase := &fakePaymentUsecase{
			statusResult: &responses.PaymentStatus{
				MerchantOrderID: "ORDER-1-ABC",
				Status:          "SETTLED",
				StatusCode:      "00",
				IsFinal:         true,
			},
		}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payment-status/ORDER-1-ABC", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ORDER-1-ABC", usecase.statusOrderID)
		data := decodeResponse(t, rr)["data"].(map[string]interface{})
		assert.Equal(t, "SETTLED", data["status"])
		assert.Equal(t, true, data["isFinal"])
	})

	t.Run("Invalid Order ID", func(t *testing.T) {
		usecase := &fakePaymentUsecase{}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payment-status/ORDER_1%24", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, usecase.statusOrderID)
	})

	t.Run("Unknown Order", func(t *testing.T) {
		usecase := &fakePaymentUsecase{statusErr: exceptions.ErrUnknownOrder(nil, "ORDER-404")}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payment-status/ORDER-404", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, constvars.ErrClientOrderNotFound, decodeResponse(t, rr)["message"])
	})
}

func TestPaymentCallback(t *testing.T) {
	form := url.Values{
		"merchantCode":    {"DS12345"},
		"amount":          {"15000"},
		"merchantOrderId": {"ORDER-1-ABC"},
		"resultCode":      {"00"},
		"reference":       {"DK-REF-1"},
		"signature":       {" ABCDEF0123 "},
	}

	send := func(router http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, constvars.RouteCallback, strings.NewReader(form.Encode()))
		req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationForm)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("OK", func(t *testing.T) {
		usecase := &fakePaymentUsecase{}
		rr := send(newPaymentTestRouter(usecase, config.AppPaymentGateway{}))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, constvars.CallbackReplyOK, rr.Body.String())
		assert.Equal(t, constvars.MIMETextPlainCharsetUTF8, rr.Header().Get(constvars.HeaderContentType))

		require.NotNil(t, usecase.callbackRequest)
		assert.Equal(t, "ORDER-1-ABC", usecase.callbackRequest.MerchantOrderID)
		assert.Equal(t, "15000", usecase.callbackRequest.Amount)
		assert.Equal(t, "DK-REF-1", usecase.callbackRequest.Reference)
		assert.Equal(t, "abcdef0123", usecase.callbackRequest.Signature)
	})

	testCases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"Invalid Signature", exceptions.ErrSignatureMismatch(nil), http.StatusBadRequest, constvars.CallbackReplyInvalidSignature},
		{"Invalid Amount", exceptions.ErrCallbackAmountMismatch(nil, 1, 2), http.StatusBadRequest, constvars.CallbackReplyInvalidAmount},
		{"Unknown Order", exceptions.ErrUnknownOrder(nil, "ORDER-1-ABC"), http.StatusNotFound, constvars.CallbackReplyOrderNotFound},
		{"Store Failure", exceptions.ErrServerProcess(errors.New("redis down")), http.StatusInternalServerError, constvars.CallbackReplyInternalServerError},
		{"Plain Error", errors.New("unexpected"), http.StatusInternalServerError, constvars.CallbackReplyInternalServerError},
	}

	t.Run("Malformed Form", func(t *testing.T) {
		usecase := &fakePaymentUsecase{}
		router := newPaymentTestRouter(usecase, config.AppPaymentGateway{})

		req := httptest.NewRequest(http.MethodPost, constvars.RouteCallback, strings.NewReader("merchantOrderId=%zz"))
		req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationForm)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, constvars.CallbackReplyInvalidSignature, rr.Body.String())
		assert.Nil(t, usecase.callbackRequest)
	})

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := send(newPaymentTestRouter(&fakePaymentUsecase{callbackErr: tc.err}, config.AppPaymentGateway{}))

			assert.Equal(t, tc.wantCode, rr.Code)
			assert.Equal(t, tc.wantBody, rr.Body.String())
		})
	}
}

package payment_gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/app/services/shared/metrics"
	"qris-payment-service/internal/app/services/shared/signature"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/dto/requests"
	"qris-payment-service/internal/pkg/dto/responses"
	"qris-payment-service/internal/pkg/exceptions"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	OperationCreateInvoice = "create_invoice"
	OperationQueryStatus   = "query_status"

	createInvoicePath     = "/merchant/createinvoice"
	transactionStatusPath = "/merchant/transactionStatus"

	StatusCodeSuccess = "00"
	StatusCodePending = "01"
	StatusCodeFailed  = "02"

	maxErrorBodyBytes = 4 << 10
)

type duitkuService struct {
	baseURL       string
	merchantCode  string
	apiKey        string
	paymentMethod string
	userAgent     string
	client        *http.Client
	limiter       *rate.Limiter
	codec         contracts.SignatureCodec
	metrics       contracts.PaymentMetrics
	Log           *zap.Logger
}

// NewDuitkuService builds the processor client. Outbound calls share a token
// bucket so a burst of customers cannot exceed the processor quota.
func NewDuitkuService(
	cfg config.AppPaymentGateway,
	codec contracts.SignatureCodec,
	paymentMetrics contracts.PaymentMetrics,
	logger *zap.Logger,
) contracts.PaymentGatewayService {
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perSecond := cfg.MaxRequestsPerSecond
	if perSecond <= 0 {
		perSecond = 20
	}
	if paymentMetrics == nil {
		paymentMetrics = metrics.NewNoopMetrics()
	}

	return &duitkuService{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		merchantCode:  cfg.MerchantCode,
		apiKey:        cfg.APIKey,
		paymentMethod: cfg.PaymentMethod,
		userAgent:     cfg.UserAgent,
		client:        &http.Client{Timeout: timeout},
		limiter:       rate.NewLimiter(rate.Limit(perSecond), perSecond),
		codec:         codec,
		metrics:       paymentMetrics,
		Log:           logger,
	}
}

func (s *duitkuService) CreateInvoice(ctx context.Context, request *requests.PaymentInvoice) (*responses.PaymentInvoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("duitkuService.CreateInvoice called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
		zap.Int64(constvars.LoggingPaymentAmountKey, request.Amount),
	)

	amount := strconv.FormatInt(request.Amount, 10)
	payload := requests.DuitkuCreateInvoice{
		MerchantCode:    s.merchantCode,
		PaymentAmount:   request.Amount,
		PaymentMethod:   s.paymentMethod,
		MerchantOrderID: request.MerchantOrderID,
		ProductDetails:  request.ProductDetails,
		CustomerVaName:  request.CustomerName,
		Email:           request.CustomerEmail,
		CallbackURL:     request.CallbackURL,
		ReturnURL:       request.ReturnURL,
		ExpiryPeriod:    request.ExpiryPeriodInMinutes,
		Signature: s.codec.Sign(signature.Fields(signature.CreationFieldOrder, map[string]string{
			signature.FieldMerchantCode:    s.merchantCode,
			signature.FieldAmount:          amount,
			signature.FieldPaymentMethod:   s.paymentMethod,
			signature.FieldMerchantOrderID: request.MerchantOrderID,
		}), s.apiKey),
	}

	result := new(responses.DuitkuCreateInvoice)
	if err := s.post(ctx, OperationCreateInvoice, createInvoicePath, payload, result); err != nil {
		return nil, err
	}

	if result.StatusCode != StatusCodeSuccess {
		s.Log.Warn("duitkuService.CreateInvoice rejected by processor",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			zap.String(constvars.LoggingProcessorCodeKey, result.StatusCode),
			zap.String(constvars.LoggingProcessorMessageKey, result.StatusMessage),
		)
		return nil, &exceptions.GatewayError{
			Kind:      exceptions.GatewayErrorRejected,
			Operation: OperationCreateInvoice,
			Code:      result.StatusCode,
			Details:   result.StatusMessage,
		}
	}

	s.Log.Info("duitkuService.CreateInvoice succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
		zap.String(constvars.LoggingProcessorReferenceKey, result.Reference),
	)

	return &responses.PaymentInvoice{
		Reference:     result.Reference,
		PaymentURL:    result.PaymentURL,
		QRString:      result.QRString,
		VANumber:      result.VANumber,
		StatusCode:    result.StatusCode,
		StatusMessage: result.StatusMessage,
	}, nil
}

func (s *duitkuService) QueryStatus(ctx context.Context, merchantOrderID string) (*responses.PaymentGatewayStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("duitkuService.QueryStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
	)

	payload := requests.DuitkuTransactionStatus{
		MerchantCode:    s.merchantCode,
		MerchantOrderID: merchantOrderID,
		Signature: s.codec.Sign(signature.Fields(signature.StatusFieldOrder, map[string]string{
			signature.FieldMerchantCode:    s.merchantCode,
			signature.FieldMerchantOrderID: merchantOrderID,
		}), s.apiKey),
	}

	result := new(responses.DuitkuTransactionStatus)
	if err := s.post(ctx, OperationQueryStatus, transactionStatusPath, payload, result); err != nil {
		return nil, err
	}

	s.Log.Info("duitkuService.QueryStatus succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
		zap.String(constvars.LoggingProcessorCodeKey, result.StatusCode),
	)

	orderID := result.MerchantOrderID
	if orderID == "" {
		orderID = merchantOrderID
	}
	return &responses.PaymentGatewayStatus{
		MerchantOrderID: orderID,
		Reference:       result.Reference,
		StatusCode:      result.StatusCode,
		StatusMessage:   result.StatusMessage,
	}, nil
}

// post sends payload as JSON and decodes a 2xx body into out. Every failure is
// returned as a classified *exceptions.GatewayError.
func (s *duitkuService) post(ctx context.Context, operation, path string, payload, out interface{}) (err error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	start := time.Now()
	defer func() {
		outcome := constvars.ResponseSuccess
		var gatewayErr *exceptions.GatewayError
		if errors.As(err, &gatewayErr) {
			outcome = string(gatewayErr.Kind)
			s.Log.Error("duitkuService request failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingGatewayOperationKey, operation),
				zap.String(constvars.LoggingGatewayErrorKindKey, outcome),
				zap.Int(constvars.LoggingHTTPStatusKey, gatewayErr.HTTPStatus),
				zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
				zap.Error(err),
			)
		}
		s.metrics.ObserveGatewayRequest(operation, outcome, time.Since(start))
	}()

	if err := s.limiter.Wait(ctx); err != nil {
		return exceptions.NewGatewayError(exceptions.GatewayErrorTimeout, operation, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return exceptions.NewGatewayError(exceptions.GatewayErrorUnknown, operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return exceptions.NewGatewayError(exceptions.GatewayErrorUnknown, operation, err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderUserAgent, s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return exceptions.NewGatewayError(classifyTransportError(err), operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return buildHTTPStatusError(operation, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &exceptions.GatewayError{
			Kind:       exceptions.GatewayErrorUnknown,
			Operation:  operation,
			HTTPStatus: resp.StatusCode,
			Details:    "undecodable response body",
			Err:        err,
		}
	}
	return nil
}

func classifyTransportError(err error) exceptions.GatewayErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return exceptions.GatewayErrorTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return exceptions.GatewayErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return exceptions.GatewayErrorUpstream
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return exceptions.GatewayErrorUpstream
	}

	return exceptions.GatewayErrorUnknown
}

func buildHTTPStatusError(operation string, resp *http.Response) *exceptions.GatewayError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	gatewayErr := &exceptions.GatewayError{
		Operation:  operation,
		HTTPStatus: resp.StatusCode,
		Details:    describeErrorBody(raw),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		gatewayErr.Kind = exceptions.GatewayErrorAuthRejected
	case resp.StatusCode == http.StatusBadRequest:
		gatewayErr.Kind = exceptions.GatewayErrorBadRequest
	case resp.StatusCode >= http.StatusInternalServerError:
		gatewayErr.Kind = exceptions.GatewayErrorUpstream
	default:
		gatewayErr.Kind = exceptions.GatewayErrorUnknown
	}
	return gatewayErr
}

func describeErrorBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var body responses.DuitkuErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.StatusMessage != "":
			return body.StatusMessage
		}
	}
	return fmt.Sprintf("%.200s", strings.TrimSpace(string(raw)))
}

package controllers

import (
	"context"
	"errors"
	"net/http"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/dto/requests"
	"qris-payment-service/internal/pkg/exceptions"
	"qris-payment-service/internal/pkg/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type PaymentController struct {
	Log            *zap.Logger
	PaymentUsecase contracts.PaymentUsecase
	InternalConfig *config.InternalConfig
}

func NewPaymentController(logger *zap.Logger, paymentUsecase contracts.PaymentUsecase, internalConfig *config.InternalConfig) *PaymentController {
	return &PaymentController{
		Log:            logger,
		PaymentUsecase: paymentUsecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *PaymentController) CreatePayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := utils.GetRequestID(r.Context())

	request := new(requests.CreatePayment)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("Failed to parse create payment request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "JSON parsing"),
			zap.Error(err),
		)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRequestBodyTooLarge(err, maxBytesErr.Limit))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	utils.SanitizeCreatePaymentRequest(request)

	gatewayConfig := ctrl.InternalConfig.PaymentGateway
	baseURL := utils.BuildPublicBaseURL(r)
	request.CallbackURL = utils.ResolvePublicURL(gatewayConfig.CallbackURL, baseURL, constvars.RouteCallback)
	request.ReturnURL = utils.ResolvePublicURL(gatewayConfig.ReturnURL, baseURL, constvars.RoutePaymentSuccess)

	result, err := ctrl.PaymentUsecase.CreatePayment(r.Context(), request)
	if err != nil {
		ctrl.Log.Error("Failed to create payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "usecase error"),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("Payment created",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, result.MerchantOrderID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CreatePaymentSuccessMessage, result)
}

func (ctrl *PaymentController) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())

	request := &requests.GetPaymentStatus{
		MerchantOrderID: chi.URLParam(r, constvars.URLParamMerchantOrder),
	}
	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Warn("Invalid merchant order id",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamValidation(err, constvars.URLParamMerchantOrder))
		return
	}

	result, err := ctrl.PaymentUsecase.GetPaymentStatus(r.Context(), request.MerchantOrderID)
	if err != nil {
		ctrl.Log.Error("Failed to get payment status",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPaymentStatusSuccessMessage, result)
}

// PaymentCallback answers the processor in plain text. The processor retries
// anything other than a 200.
func (ctrl *PaymentController) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := utils.GetRequestID(r.Context())

	utils.LogSecurityEvent(ctrl.Log, "payment_callback_received", requestID, utils.SeverityInfo,
		zap.String(constvars.LoggingRemoteAddrKey, utils.GetClientIP(r)),
		zap.String(constvars.LoggingUserAgentKey, r.UserAgent()),
	)

	if err := r.ParseForm(); err != nil {
		ctrl.Log.Error("Failed to parse payment callback form",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "form parsing"),
			zap.Error(err),
		)
		utils.BuildTextResponse(w, constvars.StatusBadRequest, constvars.CallbackReplyInvalidSignature)
		return
	}

	request := utils.BuildPaymentCallbackRequest(r)
	utils.SanitizePaymentCallbackRequest(request)

	if err := ctrl.PaymentUsecase.HandleCallback(r.Context(), request); err != nil {
		code, reply := callbackReply(err)
		ctrl.Log.Warn("Payment callback rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			zap.Int(constvars.LoggingStatusCodeKey, code),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		utils.BuildTextResponse(w, code, reply)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "payment_callback_processed", requestID,
		zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
		zap.String(constvars.LoggingProcessorCodeKey, request.ResultCode),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildTextResponse(w, constvars.StatusOK, constvars.CallbackReplyOK)
}

func callbackReply(err error) (int, string) {
	var customErr *exceptions.CustomError
	if !errors.As(err, &customErr) {
		return constvars.StatusInternalServerError, constvars.CallbackReplyInternalServerError
	}

	switch customErr.StatusCode {
	case constvars.StatusBadRequest:
		return constvars.StatusBadRequest, customErr.ClientMessage
	case constvars.StatusNotFound:
		return constvars.StatusNotFound, constvars.CallbackReplyOrderNotFound
	default:
		return constvars.StatusInternalServerError, constvars.CallbackReplyInternalServerError
	}
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/app/models"
	"qris-payment-service/internal/app/services/shared/metrics"
	"qris-payment-service/internal/app/services/shared/signature"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/dto/requests"
	"qris-payment-service/internal/pkg/dto/responses"
	"qris-payment-service/internal/pkg/exceptions"
	"qris-payment-service/internal/pkg/utils"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultOperationTimeout = 45 * time.Second
	defaultExpiryWindow     = 15 * time.Minute

	rejectionInvalidSignature = "invalid_signature"
	rejectionUnknownOrder     = "unknown_order"
	rejectionAmountMismatch   = "amount_mismatch"
)

type paymentUsecase struct {
	PaymentGateway   contracts.PaymentGatewayService
	OrderRepository  contracts.PaymentOrderRepository
	SignatureCodec   contracts.SignatureCodec
	OrderIDGenerator contracts.OrderIDGenerator
	EventPublisher   contracts.PaymentEventPublisher
	CallbackArchive  contracts.CallbackArchive
	Metrics          contracts.PaymentMetrics
	InternalConfig   *config.InternalConfig
	Log              *zap.Logger
	now              func() time.Time
}

func NewPaymentUsecase(
	paymentGateway contracts.PaymentGatewayService,
	orderRepository contracts.PaymentOrderRepository,
	signatureCodec contracts.SignatureCodec,
	orderIDGenerator contracts.OrderIDGenerator,
	eventPublisher contracts.PaymentEventPublisher,
	callbackArchive contracts.CallbackArchive,
	paymentMetrics contracts.PaymentMetrics,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentUsecase {
	if paymentMetrics == nil {
		paymentMetrics = metrics.NewNoopMetrics()
	}
	return &paymentUsecase{
		PaymentGateway:   paymentGateway,
		OrderRepository:  orderRepository,
		SignatureCodec:   signatureCodec,
		OrderIDGenerator: orderIDGenerator,
		EventPublisher:   eventPublisher,
		CallbackArchive:  callbackArchive,
		Metrics:          paymentMetrics,
		InternalConfig:   internalConfig,
		Log:              logger,
		now:              time.Now,
	}
}

func (uc *paymentUsecase) CreatePayment(ctx context.Context, request *requests.CreatePayment) (*responses.CreatePayment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CreatePayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPaymentAmountKey, request.PaymentAmount),
	)

	// Length limits apply to the escaped text, which is what gets stored and sent.
	utils.EscapeCreatePaymentRequest(request)
	if err := utils.ValidateStruct(request); err != nil {
		uc.Log.Warn("paymentUsecase.CreatePayment validation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrInputValidation(err)
	}

	gatewayConfig := uc.InternalConfig.PaymentGateway
	if !gatewayConfig.IsConfigured() {
		uc.Log.Error("paymentUsecase.CreatePayment payment gateway is not configured",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, exceptions.ErrGatewayNotConfigured(nil)
	}

	opCtx, cancel := uc.detach(ctx)
	defer cancel()

	merchantOrderID := uc.OrderIDGenerator.Generate()
	productDetails := request.ItemDetails
	if productDetails == "" {
		productDetails = fmt.Sprintf("Payment by %s", request.CustomerName)
	}
	callbackURL := firstNonEmpty(request.CallbackURL, gatewayConfig.CallbackURL)
	returnURL := firstNonEmpty(request.ReturnURL, gatewayConfig.ReturnURL)
	expiryWindow := uc.expiryWindow()

	invoice, err := uc.PaymentGateway.CreateInvoice(opCtx, &requests.PaymentInvoice{
		MerchantOrderID:       merchantOrderID,
		Amount:                request.PaymentAmount,
		ProductDetails:        productDetails,
		CustomerName:          request.CustomerName,
		CustomerEmail:         request.CustomerEmail,
		CallbackURL:           callbackURL,
		ReturnURL:             returnURL,
		ExpiryPeriodInMinutes: int(math.Ceil(expiryWindow.Minutes())),
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.CreatePayment error calling PaymentGateway.CreateInvoice",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPaymentGateway(err)
	}

	now := uc.now()
	order := &models.PaymentOrder{
		MerchantOrderID:      merchantOrderID,
		Amount:               request.PaymentAmount,
		CustomerName:         request.CustomerName,
		CustomerEmail:        request.CustomerEmail,
		ItemDetails:          request.ItemDetails,
		Status:               models.PaymentStatusPending,
		ProcessorReference:   invoice.Reference,
		QRString:             invoice.QRString,
		PaymentURL:           invoice.PaymentURL,
		VANumber:             invoice.VANumber,
		LastProcessorCode:    invoice.StatusCode,
		LastProcessorMessage: invoice.StatusMessage,
		CreatedAt:            now,
		UpdatedAt:            now,
		ExpiresAt:            now.Add(expiryWindow),
	}

	if err := uc.OrderRepository.Create(opCtx, order); err != nil {
		uc.Log.Error("paymentUsecase.CreatePayment error calling OrderRepository.Create",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Metrics.ObserveTransition(string(models.PaymentStatusCreated), string(models.PaymentStatusPending), string(models.TransitionSourceCreate))
	utils.LogBusinessEvent(uc.Log, "payment_created", requestID,
		zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
		zap.String(constvars.LoggingProcessorReferenceKey, invoice.Reference),
		zap.Int64(constvars.LoggingPaymentAmountKey, order.Amount),
	)

	return &responses.CreatePayment{
		MerchantOrderID: order.MerchantOrderID,
		Reference:       order.ProcessorReference,
		PaymentURL:      order.PaymentURL,
		QRString:        order.QRString,
		VANumber:        order.VANumber,
		Amount:          order.Amount,
		CustomerName:    order.CustomerName,
		Status:          string(order.Status),
		ExpiresAt:       order.ExpiresAt,
	}, nil
}

// GetPaymentStatus answers terminal orders from the store. Pending orders past
// their window are expired instead of polled.
func (uc *paymentUsecase) GetPaymentStatus(ctx context.Context, merchantOrderID string) (*responses.PaymentStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.GetPaymentStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
	)

	opCtx, cancel := uc.detach(ctx)
	defer cancel()

	order, err := uc.findOrder(opCtx, merchantOrderID)
	if err != nil {
		return nil, err
	}

	if order.Status.IsTerminal() {
		return toPaymentStatusResponse(order), nil
	}

	if order.IsExpiredAt(uc.now()) {
		expired, _, err := uc.transition(opCtx, order, models.PaymentStatusExpired, models.TransitionSourceExpiry, "", "", "")
		if err != nil {
			return nil, err
		}
		return toPaymentStatusResponse(expired), nil
	}

	if !uc.InternalConfig.PaymentGateway.IsConfigured() {
		return nil, exceptions.ErrGatewayNotConfigured(nil)
	}

	snapshot, err := uc.PaymentGateway.QueryStatus(opCtx, merchantOrderID)
	if err != nil {
		uc.Log.Error("paymentUsecase.GetPaymentStatus error calling PaymentGateway.QueryStatus",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
			zap.Error(err),
		)
		return nil, exceptions.ErrPaymentGateway(err)
	}

	next := statusFromProcessorCode(snapshot.StatusCode)
	if next == models.PaymentStatusPending {
		uc.Log.Info("paymentUsecase.GetPaymentStatus order still waiting",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
			zap.String(constvars.LoggingProcessorCodeKey, snapshot.StatusCode),
		)
		return toPaymentStatusResponse(order), nil
	}

	updated, _, err := uc.transition(opCtx, order, next, models.TransitionSourcePoll, snapshot.StatusCode, snapshot.StatusMessage, snapshot.Reference)
	if err != nil {
		return nil, err
	}
	return toPaymentStatusResponse(updated), nil
}

// HandleCallback verifies the signature before reading any other field. A
// rejected callback never mutates the order.
func (uc *paymentUsecase) HandleCallback(ctx context.Context, request *requests.PaymentCallback) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.HandleCallback called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
		zap.String(constvars.LoggingProcessorCodeKey, request.ResultCode),
	)

	gatewayConfig := uc.InternalConfig.PaymentGateway
	if !gatewayConfig.IsConfigured() {
		return exceptions.ErrGatewayNotConfigured(nil)
	}

	fields := signature.Fields(signature.CallbackFieldOrder, map[string]string{
		signature.FieldMerchantCode:    gatewayConfig.MerchantCode,
		signature.FieldAmount:          request.Amount,
		signature.FieldMerchantOrderID: request.MerchantOrderID,
	})
	if !uc.SignatureCodec.Verify(fields, gatewayConfig.APIKey, request.Signature) {
		uc.Metrics.ObserveCallbackRejection(rejectionInvalidSignature)
		utils.LogSecurityEvent(uc.Log, "callback_signature_mismatch", requestID, utils.SeverityHigh,
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
		)
		return exceptions.ErrSignatureMismatch(errors.New("callback signature does not match"))
	}

	opCtx, cancel := uc.detach(ctx)
	defer cancel()

	order, err := uc.findOrder(opCtx, request.MerchantOrderID)
	if err != nil {
		var customErr *exceptions.CustomError
		if errors.As(err, &customErr) && customErr.StatusCode == constvars.StatusNotFound {
			uc.Metrics.ObserveCallbackRejection(rejectionUnknownOrder)
			utils.LogSecurityEvent(uc.Log, "callback_unknown_order", requestID, utils.SeverityMedium,
				zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			)
		}
		return err
	}

	amount, err := parseCallbackAmount(request.Amount)
	if err != nil || amount != order.Amount {
		uc.Metrics.ObserveCallbackRejection(rejectionAmountMismatch)
		utils.LogSecurityEvent(uc.Log, "callback_amount_mismatch", requestID, utils.SeverityHigh,
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			zap.String(constvars.LoggingPaymentAmountKey, request.Amount),
		)
		return exceptions.ErrCallbackAmountMismatch(err, amount, order.Amount)
	}

	uc.archiveCallback(opCtx, request)

	next, ok := statusFromCallbackResult(request.ResultCode)
	if !ok {
		uc.Log.Warn("paymentUsecase.HandleCallback unhandled result code",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			zap.String(constvars.LoggingProcessorCodeKey, request.ResultCode),
		)
		return nil
	}

	updated, applied, err := uc.transition(opCtx, order, next, models.TransitionSourceCallback, request.ResultCode, "", request.Reference)
	if err != nil {
		return err
	}
	if !applied && updated.Status != next {
		uc.Log.Warn("paymentUsecase.HandleCallback ignored callback for finalized order",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			zap.String(constvars.LoggingPaymentStatusKey, string(updated.Status)),
			zap.String(constvars.LoggingProcessorCodeKey, request.ResultCode),
		)
	}
	return nil
}

// ExpireOrder expires a pending order whose window has elapsed and returns the
// resulting status. Orders still inside their window are returned unchanged.
func (uc *paymentUsecase) ExpireOrder(ctx context.Context, merchantOrderID string) (*responses.PaymentStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ExpireOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
	)

	order, err := uc.findOrder(ctx, merchantOrderID)
	if err != nil {
		return nil, err
	}
	if !order.IsExpiredAt(uc.now()) {
		return toPaymentStatusResponse(order), nil
	}

	updated, _, err := uc.transition(ctx, order, models.PaymentStatusExpired, models.TransitionSourceExpiry, "", "", "")
	if err != nil {
		return nil, err
	}
	return toPaymentStatusResponse(updated), nil
}

func (uc *paymentUsecase) ExpireDueOrders(ctx context.Context, now time.Time, limit int) (int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	due, err := uc.OrderRepository.FindExpirable(ctx, now, limit)
	if err != nil {
		uc.Log.Error("paymentUsecase.ExpireDueOrders error calling OrderRepository.FindExpirable",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return 0, err
	}

	expired := 0
	for i := range due {
		_, applied, err := uc.transition(ctx, &due[i], models.PaymentStatusExpired, models.TransitionSourceExpiry, "", "", "")
		if err != nil {
			return expired, err
		}
		if applied {
			expired++
		}
	}

	if expired > 0 {
		uc.Log.Info("paymentUsecase.ExpireDueOrders expired orders",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int(constvars.LoggingExpiredCountKey, expired),
		)
	}
	return expired, nil
}

func (uc *paymentUsecase) findOrder(ctx context.Context, merchantOrderID string) (*models.PaymentOrder, error) {
	order, err := uc.OrderRepository.FindByMerchantOrderID(ctx, merchantOrderID)
	if err != nil {
		uc.Log.Error("paymentUsecase error calling OrderRepository.FindByMerchantOrderID",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
			zap.Error(err),
		)
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrUnknownOrder(nil, merchantOrderID)
	}
	return order, nil
}

// transition moves order to next through the store's compare-and-set. Only
// the caller whose write lands records metrics and publishes the event; the
// others get the stored state back with applied false.
func (uc *paymentUsecase) transition(
	ctx context.Context,
	order *models.PaymentOrder,
	next models.PaymentStatus,
	source models.TransitionSource,
	processorCode, processorMessage, reference string,
) (*models.PaymentOrder, bool, error) {
	requestID := utils.GetRequestID(ctx)
	if !order.Status.CanTransitionTo(next) {
		return order, false, nil
	}

	update := models.StatusUpdate{
		From:             order.Status,
		To:               next,
		Source:           source,
		ProcessorCode:    processorCode,
		ProcessorMessage: processorMessage,
		Reference:        reference,
		At:               uc.now(),
		Retention:        uc.InternalConfig.App.OrderRetention(),
	}

	updated, applied, err := uc.OrderRepository.CompareAndSetStatus(ctx, order.MerchantOrderID, update)
	if err != nil {
		uc.Log.Error("paymentUsecase error calling OrderRepository.CompareAndSetStatus",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, order.MerchantOrderID),
			zap.Error(err),
		)
		return nil, false, err
	}
	if updated == nil {
		return nil, false, exceptions.ErrUnknownOrder(nil, order.MerchantOrderID)
	}
	if !applied {
		uc.Log.Info("paymentUsecase transition lost to a concurrent update",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMerchantOrderIDKey, order.MerchantOrderID),
			zap.String(constvars.LoggingPaymentStatusKey, string(updated.Status)),
			zap.String(constvars.LoggingTransitionSourceKey, string(source)),
		)
		return updated, false, nil
	}

	uc.Metrics.ObserveTransition(string(update.From), string(update.To), string(source))
	utils.LogBusinessEvent(uc.Log, "payment_"+strings.ToLower(string(next)), requestID,
		zap.String(constvars.LoggingMerchantOrderIDKey, updated.MerchantOrderID),
		zap.String(constvars.LoggingPreviousStatusKey, string(update.From)),
		zap.String(constvars.LoggingTransitionSourceKey, string(source)),
		zap.String(constvars.LoggingProcessorReferenceKey, updated.ProcessorReference),
	)

	if next.IsTerminal() {
		uc.publishStatusChanged(ctx, update.From, updated)
	}
	return updated, true, nil
}

func (uc *paymentUsecase) publishStatusChanged(ctx context.Context, previous models.PaymentStatus, order *models.PaymentOrder) {
	event := &models.PaymentStatusChangedEvent{
		EventID:         utils.GenerateEventID(),
		MerchantOrderID: order.MerchantOrderID,
		Reference:       order.ProcessorReference,
		Amount:          order.Amount,
		Status:          order.Status,
		PreviousStatus:  previous,
		Source:          order.FinalizedBy,
		OccurredAt:      order.UpdatedAt,
	}
	if err := uc.EventPublisher.PublishStatusChanged(ctx, event); err != nil {
		uc.Log.Error("paymentUsecase error calling EventPublisher.PublishStatusChanged",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingMerchantOrderIDKey, order.MerchantOrderID),
			zap.Error(err),
		)
	}
}

func (uc *paymentUsecase) archiveCallback(ctx context.Context, request *requests.PaymentCallback) {
	if _, err := uc.CallbackArchive.Archive(ctx, request.MerchantOrderID, request); err != nil {
		uc.Log.Warn("paymentUsecase.HandleCallback error calling CallbackArchive.Archive",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingMerchantOrderIDKey, request.MerchantOrderID),
			zap.Error(err),
		)
	}
}

// detach keeps the work running when the client goes away, bounded by the
// configured request timeout.
func (uc *paymentUsecase) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(uc.InternalConfig.App.RequestTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (uc *paymentUsecase) expiryWindow() time.Duration {
	if window := uc.InternalConfig.App.PaymentExpiryWindow(); window > 0 {
		return window
	}
	return defaultExpiryWindow
}

// parseCallbackAmount accepts whole numbers and decimals with a zero fraction
// such as "10000.00".
func parseCallbackAmount(raw string) (int64, error) {
	if amount, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return amount, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if value != math.Trunc(value) {
		return 0, fmt.Errorf("amount %q is not a whole number", raw)
	}
	return int64(value), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

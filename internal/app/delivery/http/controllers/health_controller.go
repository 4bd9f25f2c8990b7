package controllers

import (
	"net/http"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/dto/responses"
	"qris-payment-service/internal/pkg/exceptions"
	"qris-payment-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type HealthController struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
}

func NewHealthController(logger *zap.Logger, internalConfig *config.InternalConfig) *HealthController {
	return &HealthController{
		Log:            logger,
		InternalConfig: internalConfig,
	}
}

func (ctrl *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	baseURL := utils.BuildPublicBaseURL(r)
	gatewayConfig := ctrl.InternalConfig.PaymentGateway

	utils.BuildJSONResponse(w, constvars.StatusOK, responses.HealthCheck{
		Status:      constvars.HealthCheckStatusOK,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: ctrl.InternalConfig.App.Env,
		AppURL:      baseURL,
		Endpoints: responses.HealthCheckEndpoints{
			CallbackURL: utils.ResolvePublicURL(gatewayConfig.CallbackURL, baseURL, constvars.RouteCallback),
			ReturnURL:   utils.ResolvePublicURL(gatewayConfig.ReturnURL, baseURL, constvars.RoutePaymentSuccess),
			ErrorURL:    utils.ResolvePublicURL(gatewayConfig.ErrorURL, baseURL, constvars.RoutePaymentError),
		},
	})
}

func (ctrl *HealthController) NotFound(w http.ResponseWriter, r *http.Request) {
	utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrEndpointNotFound(nil))
}

package routers

import (
	"qris-payment-service/internal/app/delivery/http/controllers"
	"qris-payment-service/internal/app/delivery/http/middlewares"
	"qris-payment-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(router chi.Router, middlewares *middlewares.Middlewares, paymentController *controllers.PaymentController) {
	paymentLimiter := middlewares.PaymentRateLimiter()

	router.With(paymentLimiter.Limit).Post(constvars.RouteCreatePayment, paymentController.CreatePayment)
	router.Get(constvars.RoutePaymentStatus, paymentController.GetPaymentStatus)
	router.Post(constvars.RouteCallback, paymentController.PaymentCallback)
}

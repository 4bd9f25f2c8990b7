package routers

import (
	"net/http"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/app/delivery/http/controllers"
	"qris-payment-service/internal/app/delivery/http/middlewares"
	"qris-payment-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// SetupRoutes mounts the payment API on router. metricsHandler may be nil when
// metrics are disabled.
func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	paymentController *controllers.PaymentController,
	healthController *controllers.HealthController,
	metricsHandler http.Handler,
) {
	allowedOrigins := internalConfig.App.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	corsOptions := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{constvars.MethodGet, constvars.MethodPost, constvars.MethodOptions},
		AllowedHeaders:   []string{constvars.HeaderAccept, constvars.HeaderContentType, constvars.HeaderXRequestID},
		ExposedHeaders:   []string{constvars.HeaderXRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging)
	router.Use(middlewares.ErrorHandler)
	router.Use(middlewares.BodyLimit)
	router.Use(middlewares.GlobalRateLimit())

	attachPaymentRoutes(router, middlewares, paymentController)
	attachHealthRoutes(router, healthController, metricsHandler)

	router.NotFound(healthController.NotFound)
}

package routers

import (
	"net/http"
	"qris-payment-service/internal/app/delivery/http/controllers"
	"qris-payment-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

func attachHealthRoutes(router chi.Router, healthController *controllers.HealthController, metricsHandler http.Handler) {
	router.Get(constvars.RouteHealth, healthController.HealthCheck)
	if metricsHandler != nil {
		router.Handle(constvars.RouteMetrics, metricsHandler)
	}
}

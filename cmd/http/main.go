package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"qris-payment-service/internal/app/config"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/app/delivery/http/controllers"
	"qris-payment-service/internal/app/delivery/http/middlewares"
	"qris-payment-service/internal/app/delivery/http/routers"
	"qris-payment-service/internal/app/drivers/database"
	"qris-payment-service/internal/app/drivers/logger"
	"qris-payment-service/internal/app/drivers/messaging"
	"qris-payment-service/internal/app/drivers/storage"
	"qris-payment-service/internal/app/services/core/payments"
	"qris-payment-service/internal/app/services/shared/eventpublisher"
	"qris-payment-service/internal/app/services/shared/jwtmanager"
	"qris-payment-service/internal/app/services/shared/locker"
	"qris-payment-service/internal/app/services/shared/metrics"
	"qris-payment-service/internal/app/services/shared/orderid"
	"qris-payment-service/internal/app/services/shared/orderstore"
	"qris-payment-service/internal/app/services/shared/payment_gateway"
	redisRepository "qris-payment-service/internal/app/services/shared/redis"
	"qris-payment-service/internal/app/services/shared/signature"
	objectStorage "qris-payment-service/internal/app/services/shared/storage"
	"qris-payment-service/internal/pkg/constvars"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)

	warnings, err := internalConfig.Validate()
	for _, warning := range warnings {
		log.Warn("Configuration warning", zap.String("detail", warning))
	}
	if err != nil {
		if internalConfig.IsProduction() {
			log.Fatal("Invalid configuration", zap.Error(err))
		}
		log.Warn("Running with incomplete configuration, payment endpoints will fail", zap.Error(err))
	}

	printBanner(internalConfig)

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		Logger:         log,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	if driverConfig.Redis.Enabled {
		bootstrap.Redis = database.NewRedisClient(driverConfig)
	}
	if driverConfig.MongoDB.Enabled {
		bootstrap.MongoDB = database.NewMongoDB(driverConfig)
	}
	if driverConfig.RabbitMQ.Enabled {
		bootstrap.RabbitMQ = messaging.NewRabbitMQ(driverConfig)
	}
	if driverConfig.Minio.Enabled {
		bootstrap.Minio = storage.NewMinio(driverConfig)
	}

	if err := bootstrapingTheApp(bootstrap); err != nil {
		log.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              internalConfig.App.Port,
		Handler:           bootstrap.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to release resources", zap.Error(err))
	}

	fmt.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	internalConfig := bootstrap.InternalConfig
	log := bootstrap.Logger

	// Signature
	signatureCodec, err := signature.NewSignatureCodec(internalConfig.PaymentGateway.SignatureAlgorithm)
	if err != nil {
		return err
	}

	// Metrics
	var metricsHandler http.Handler
	var paymentMetrics contracts.PaymentMetrics = metrics.NewNoopMetrics()
	if internalConfig.App.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prometheusMetrics := metrics.NewPaymentMetrics()
		if err := prometheusMetrics.Register(registry); err != nil {
			return err
		}
		paymentMetrics = prometheusMetrics
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	// Order store
	orderRepository, err := newOrderRepository(bootstrap)
	if err != nil {
		return err
	}

	// Events
	var eventPublisher contracts.PaymentEventPublisher = eventpublisher.NewNoopPublisher(log)
	if bootstrap.RabbitMQ != nil {
		var tokens *jwtmanager.JWTManager
		if internalConfig.Event.SigningSecret != "" {
			tokens, err = jwtmanager.NewJWTManager(internalConfig, log)
			if err != nil {
				return err
			}
		}
		publisher, err := eventpublisher.NewRabbitMQPublisher(bootstrap.RabbitMQ, internalConfig.RabbitMQ.PaymentEventsQueue, tokens, log)
		if err != nil {
			return err
		}
		eventPublisher = publisher
	}

	// Callback archive
	callbackArchive := objectStorage.NewNoopCallbackArchive()
	if bootstrap.Minio != nil {
		callbackArchive = objectStorage.NewCallbackArchive(
			objectStorage.NewMinioStorage(bootstrap.Minio),
			bootstrap.DriverConfig.Minio.BucketName,
			internalConfig.App.CallbackArchivePrefix,
			log,
		)
	}

	// Payment
	paymentGateway := payment_gateway.NewDuitkuService(internalConfig.PaymentGateway, signatureCodec, paymentMetrics, log)
	paymentUsecase := payments.NewPaymentUsecase(
		paymentGateway,
		orderRepository,
		signatureCodec,
		orderid.NewGenerator(internalConfig.App.OrderIDPrefix, internalConfig.App.OrderIDSuffixLength, time.Now),
		eventPublisher,
		callbackArchive,
		paymentMetrics,
		internalConfig,
		log,
	)

	// Expiry worker
	var lockerService contracts.LockerService
	if bootstrap.Redis != nil {
		lockerService = locker.NewLockService(redisRepository.NewRedisRepository(bootstrap.Redis), log)
	}
	expiryWorker := payments.NewExpiryWorker(
		log,
		paymentUsecase,
		lockerService,
		time.Duration(internalConfig.App.ExpiryWorkerIntervalInSeconds)*time.Second,
		internalConfig.App.ExpiryWorkerBatchSize,
	)
	expiryWorker.Start(context.Background())
	bootstrap.WorkerStop = expiryWorker.Stop

	// HTTP
	middlewares := middlewares.NewMiddlewares(log, internalConfig)
	paymentController := controllers.NewPaymentController(log, paymentUsecase, internalConfig)
	healthController := controllers.NewHealthController(log, internalConfig)

	routers.SetupRoutes(bootstrap.Router, internalConfig, middlewares, paymentController, healthController, metricsHandler)
	return nil
}

func newOrderRepository(bootstrap *config.Bootstrap) (contracts.PaymentOrderRepository, error) {
	switch bootstrap.InternalConfig.App.OrderStoreDriver {
	case constvars.OrderStoreDriverRedis:
		if bootstrap.Redis == nil {
			return nil, fmt.Errorf("ORDER_STORE_DRIVER=%s requires REDIS_ENABLED=true", constvars.OrderStoreDriverRedis)
		}
		return orderstore.NewRedisOrderStore(bootstrap.Redis), nil
	case constvars.OrderStoreDriverMongo:
		if bootstrap.MongoDB == nil {
			return nil, fmt.Errorf("ORDER_STORE_DRIVER=%s requires MONGODB_ENABLED=true", constvars.OrderStoreDriverMongo)
		}
		repository := orderstore.NewPaymentOrderMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repository.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repository, nil
	default:
		return orderstore.NewMemoryOrderStore(time.Now), nil
	}
}

func printBanner(internalConfig *config.InternalConfig) {
	gateway := internalConfig.PaymentGateway
	fmt.Println("==============================================")
	fmt.Println(" QRIS Payment Service")
	fmt.Printf(" Environment      : %s\n", internalConfig.App.Env)
	fmt.Printf(" Listening on     : %s\n", internalConfig.App.Port)
	fmt.Printf(" Processor URL    : %s (%s)\n", gateway.BaseURL, gateway.Mode())
	fmt.Printf(" Merchant code    : %s\n", presence(gateway.MerchantCode != ""))
	fmt.Printf(" API key          : %s\n", presence(gateway.APIKey != ""))
	fmt.Printf(" Order store      : %s\n", internalConfig.App.OrderStoreDriver)
	fmt.Println("==============================================")
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}

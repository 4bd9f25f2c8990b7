package config

import (
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/utils"
	"strings"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Enabled:  utils.GetEnvBool("MONGODB_ENABLED", false),
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "qris_payment"),
			Username: utils.GetEnvString("MONGODB_USERNAME", ""),
			Password: utils.GetEnvString("MONGODB_PASSWORD", ""),
		},
		Redis: Redis{
			Enabled:  utils.GetEnvBool("REDIS_ENABLED", false),
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "info"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Enabled:  utils.GetEnvBool("RABBITMQ_ENABLED", false),
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Enabled:    utils.GetEnvBool("MINIO_ENABLED", false),
			Port:       utils.GetEnvString("MINIO_PORT", "9000"),
			Host:       utils.GetEnvString("MINIO_HOST", "localhost"),
			Username:   utils.GetEnvString("MINIO_USERNAME", ""),
			Password:   utils.GetEnvString("MINIO_PASSWORD", ""),
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "payment-callbacks"),
			UseSSL:     utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                            utils.GetEnvString("APP_ENV", constvars.EnvironmentDevelopment),
			Port:                           utils.GetEnvString("APP_PORT", ":3000"),
			URL:                            utils.GetEnvString("APP_URL", "http://localhost:3000"),
			ShutdownTimeout:                utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			MaxRequests:                    utils.GetEnvInt("APP_MAX_REQUESTS", 100),
			RateLimitWindowInMinutes:       utils.GetEnvInt("APP_RATE_LIMIT_WINDOW_IN_MINUTES", 15),
			PaymentMaxRequestsPerMinute:    utils.GetEnvInt("APP_PAYMENT_MAX_REQUESTS_PER_MINUTE", 5),
			PaymentRateLimitBlockInMinutes: utils.GetEnvInt("APP_PAYMENT_RATE_LIMIT_BLOCK_IN_MINUTES", 1),
			RequestBodyLimitInMegabyte:     utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 10),
			RequestTimeoutInSeconds:        utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 45),
			OrderIDPrefix:                  utils.GetEnvString("APP_ORDER_ID_PREFIX", "ORDER"),
			OrderIDSuffixLength:            utils.GetEnvInt("APP_ORDER_ID_SUFFIX_LENGTH", 8),
			OrderStoreDriver:               strings.ToLower(utils.GetEnvString("ORDER_STORE_DRIVER", constvars.OrderStoreDriverMemory)),
			PaymentExpiredTimeInMinutes:    utils.GetEnvInt("PAYMENT_EXPIRED_TIME_IN_MINUTES", 15),
			OrderRetentionTimeInHours:      utils.GetEnvInt("ORDER_RETENTION_TIME_IN_HOURS", 24),
			ExpiryWorkerIntervalInSeconds:  utils.GetEnvInt("EXPIRY_WORKER_INTERVAL_IN_SECONDS", 30),
			ExpiryWorkerBatchSize:          utils.GetEnvInt("EXPIRY_WORKER_BATCH_SIZE", 100),
			CallbackArchivePrefix:          utils.GetEnvString("APP_CALLBACK_ARCHIVE_PREFIX", "callbacks"),
			CORSAllowedOrigins:             strings.Split(utils.GetEnvString("APP_CORS_ALLOWED_ORIGINS", "*"), ","),
			MetricsEnabled:                 utils.GetEnvBool("APP_METRICS_ENABLED", true),
		},
		PaymentGateway: AppPaymentGateway{
			MerchantCode:            utils.GetEnvString("DUITKU_MERCHANT_CODE", ""),
			APIKey:                  utils.GetEnvString("DUITKU_API_KEY", ""),
			BaseURL:                 strings.TrimRight(utils.GetEnvString("DUITKU_BASE_URL", DuitkuSandboxBaseURL), "/"),
			CallbackURL:             utils.GetEnvString("DUITKU_CALLBACK_URL", ""),
			ReturnURL:               utils.GetEnvString("DUITKU_RETURN_URL", ""),
			ErrorURL:                utils.GetEnvString("DUITKU_ERROR_URL", ""),
			PaymentMethod:           utils.GetEnvString("DUITKU_PAYMENT_METHOD", "SP"),
			UserAgent:               utils.GetEnvString("DUITKU_USER_AGENT", "Simple-QRIS-Payment/1.0"),
			SignatureAlgorithm:      strings.ToLower(utils.GetEnvString("SIGNATURE_ALGORITHM", "md5")),
			RequestTimeoutInSeconds: utils.GetEnvInt("PAYMENT_GATEWAY_REQUEST_TIMEOUT_IN_SECONDS", 30),
			MaxRequestsPerSecond:    utils.GetEnvInt("PAYMENT_GATEWAY_MAX_REQUESTS_PER_SECOND", 20),
		},
		RabbitMQ: AppRabbitMQ{
			PaymentEventsQueue: utils.GetEnvString("RABBITMQ_PAYMENT_EVENTS_QUEUE", "payment_status_events"),
		},
		Event: AppEvent{
			SigningSecret:     utils.GetEnvString("EVENT_SIGNING_SECRET", ""),
			Issuer:            utils.GetEnvString("EVENT_ISSUER", "qris-payment-service"),
			TokenTTLInMinutes: utils.GetEnvInt("EVENT_TOKEN_TTL_IN_MINUTES", 5),
		},
	}
}

package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX = "QRIS_SVC_"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

const (
	OrderStoreDriverMemory = "memory"
	OrderStoreDriverRedis  = "redis"
	OrderStoreDriverMongo  = "mongo"
)

const (
	AppAPIKeyMinLength       = 10
	AppMerchantCodeMinLength = 5
)

const (
	RedisKeyOrderPrefix        = "payment:order:"
	RedisKeyPendingOrdersIndex = "payment:orders:pending"
	RedisKeyExpiryWorkerLock   = "payment:expiry_worker:lock"
)

const (
	MongoCollectionPaymentOrders = "payment_orders"
)

package constvars

const (
	LoggingRequestIDKey       = "request_id"
	LoggingMethodKey          = "method"
	LoggingEndpointKey        = "endpoint"
	LoggingRemoteAddrKey      = "remote_addr"
	LoggingUserAgentKey       = "user_agent"
	LoggingQueryKey           = "query"
	LoggingStatusCodeKey      = "status_code"
	LoggingDurationKey        = "duration"
	LoggingSuccessKey         = "success"
	LoggingOperationKey       = "operation"
	LoggingErrorTypeKey       = "error_type"
	LoggingErrorCodeKey       = "error_code"
	LoggingErrorMessageKey    = "error_message"
	LoggingRedisKey           = "redis_key"
	LoggingLockValueKey       = "lock_value"
	LoggingLockExpirationKey  = "lock_expiration"
	LoggingLockStoredValueKey = "lock_stored_value"
	LoggingQueueNameKey       = "queue_name"
	LoggingBucketNameKey      = "bucket_name"
	LoggingObjectNameKey      = "object_name"
)

const (
	LoggingMerchantOrderIDKey    = "merchant_order_id"
	LoggingPaymentAmountKey      = "payment_amount"
	LoggingPaymentStatusKey      = "payment_status"
	LoggingPreviousStatusKey     = "previous_status"
	LoggingTransitionSourceKey   = "transition_source"
	LoggingProcessorCodeKey      = "processor_code"
	LoggingProcessorMessageKey   = "processor_message"
	LoggingProcessorReferenceKey = "processor_reference"
	LoggingGatewayOperationKey   = "gateway_operation"
	LoggingGatewayErrorKindKey   = "gateway_error_kind"
	LoggingHTTPStatusKey         = "http_status"
	LoggingExpiredCountKey       = "expired_count"
)

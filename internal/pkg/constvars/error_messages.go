package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":    "is required",
	"email":       "must be a valid email",
	"min":         "must be at least %s characters long",
	"max":         "maximum at %s characters long",
	"gte":         "must be greater than or equal to %s",
	"lte":         "must be less than or equal to %s",
	"url":         "must be a valid URL",
	"alpha_space": "must contain only letters and spaces",
	"order_id":    "must contain only letters, digits and hyphens",
}

var TagsWithParams = map[string]bool{
	"min": true,
	"max": true,
	"gte": true,
	"lte": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientEndpointNotFound              = "Endpoint not found"
	ErrClientOrderNotFound                 = "Order not found"
	ErrClientPaymentGatewayConfig          = "payment gateway configuration incomplete"
	ErrClientPaymentGatewayTimeout         = "payment gateway did not respond in time, please try again"
	ErrClientPaymentGatewayAuth            = "payment gateway rejected the merchant credentials"
	ErrClientPaymentGatewayBadRequest      = "payment gateway rejected the payment request"
	ErrClientPaymentGatewayUnavailable     = "payment gateway is currently unavailable, please try again"
	ErrClientPaymentGatewayUnknown         = "failed to create payment"
	ErrClientPaymentRejected               = "payment was rejected by the payment gateway"
	ErrClientTooManyRequests               = "Too many requests, please try again later."
	ErrClientTooManyPaymentRequests        = "Too many payment requests, please wait a minute before trying again."
	ErrClientRequestBodyTooLarge           = "request body too large"
)

// Plain text replies for the processor callback
const (
	CallbackReplyOK                  = "OK"
	CallbackReplyInvalidSignature    = "Invalid signature"
	CallbackReplyInvalidAmount       = "Invalid amount"
	CallbackReplyOrderNotFound       = "Order not found"
	CallbackReplyInternalServerError = "Internal server error"
)

// Error messages for developers
const (
	ErrDevInvalidInput               = "invalid input"
	ErrDevValidationFailed           = "validation failed"
	ErrDevCannotParseJSON            = "cannot parse JSON"
	ErrDevCannotParseForm            = "cannot parse form body"
	ErrDevCannotMarshalJSON          = "cannot marshal JSON"
	ErrDevServerDeadlineExceeded     = "server deadline exceeded"
	ErrDevServerProcess              = "server failed to process the request"
	ErrDevMissingRequestID           = "request id missing from context"
	ErrDevURLParamValidationFailed   = "url param %s validation failed"
	ErrDevOrderNotFound              = "payment order %s not found"
	ErrDevOrderAlreadyExists         = "payment order %s already exists"
	ErrDevSignatureMismatch          = "callback signature mismatch"
	ErrDevCallbackAmountMismatch     = "callback amount %d does not match order amount %d"
	ErrDevGatewayNotConfigured       = "payment gateway credentials are not configured"
	ErrDevGatewayFailure             = "payment gateway %s failed (%s)"
	ErrDevDBFailedToFindDocument     = "failed to find document"
	ErrDevDBFailedToInsertDocument   = "failed to insert document"
	ErrDevDBFailedToUpdateDocument   = "failed to update document"
	ErrDevDBFailedToIterateDocuments = "failed to iterate documents"
	ErrDevRedisGetData               = "failed to get data from redis"
	ErrDevRedisGetNoData             = "no data found in redis for key %s"
	ErrDevRedisSetData               = "failed to set data in redis"
	ErrDevRedisDeleteData            = "failed to delete data in redis"
	ErrDevRedisScript                = "failed to run redis script"
	ErrDevRedisUnlock                = "failed to release redis lock"
	ErrDevRabbitMQPublishMessage     = "failed to publish message to queue %s"
	ErrDevMinioFailedToCreateObject  = "failed to create object in bucket %s"
	ErrDevEventTokenSign             = "failed to sign event token"
	ErrDevRateLimitExceeded          = "rate limit exceeded for client %s"
	ErrDevRequestBodyTooLarge        = "request body exceeds %d bytes"
)

package constvars

const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
)

const (
	MIMETextPlain            = "text/plain"
	MIMEApplicationJSON      = "application/json"
	MIMEApplicationForm      = "application/x-www-form-urlencoded"
	MIMETextPlainCharsetUTF8 = "text/plain; charset=utf-8"
)

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusRequestEntityTooBig = 413
	StatusUnprocessableEntity = 422
	StatusTooManyRequests     = 429
	StatusInternalServerError = 500
	StatusBadGateway          = 502
	StatusServiceUnavailable  = 503
	StatusGatewayTimeout      = 504
)

const (
	HeaderAccept          = "Accept"
	HeaderAuthorization   = "Authorization"
	HeaderContentType     = "Content-Type"
	HeaderUserAgent       = "User-Agent"
	HeaderXRequestID      = "X-Request-ID"
	HeaderXForwardedFor   = "X-Forwarded-For"
	HeaderXForwardedProto = "X-Forwarded-Proto"
	HeaderXEventToken     = "X-Event-Token"
)

const (
	RouteCreatePayment    = "/create-payment"
	RoutePaymentStatus    = "/payment-status/{merchantOrderId}"
	RouteCallback         = "/callback"
	RouteHealth           = "/health"
	RouteMetrics          = "/metrics"
	RoutePaymentSuccess   = "/success"
	RoutePaymentError     = "/error"
	URLParamMerchantOrder = "merchantOrderId"
)

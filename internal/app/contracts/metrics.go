package contracts

import "time"

type PaymentMetrics interface {
	ObserveTransition(from, to, source string)
	ObserveGatewayRequest(operation, outcome string, duration time.Duration)
	ObserveCallbackRejection(reason string)
}

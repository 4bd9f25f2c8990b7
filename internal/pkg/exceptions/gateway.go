package exceptions

import (
	"errors"
	"fmt"
)

type GatewayErrorKind string

const (
	GatewayErrorTimeout      GatewayErrorKind = "timeout"
	GatewayErrorAuthRejected GatewayErrorKind = "auth_rejected"
	GatewayErrorBadRequest   GatewayErrorKind = "bad_request"
	GatewayErrorUpstream     GatewayErrorKind = "upstream"
	GatewayErrorUnknown      GatewayErrorKind = "unknown"
	GatewayErrorRejected     GatewayErrorKind = "rejected"
)

// GatewayError classifies a failed call to the payment processor.
type GatewayError struct {
	Kind       GatewayErrorKind
	Operation  string
	HTTPStatus int
	Code       string
	Details    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("payment gateway %s %s", e.Operation, e.Kind)
	if e.HTTPStatus != 0 {
		msg = fmt.Sprintf("%s (http %d)", msg, e.HTTPStatus)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func NewGatewayError(kind GatewayErrorKind, operation string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Operation: operation, Err: err}
}

// ErrPaymentGateway maps a processor failure to the client facing error for
// its kind. Non gateway errors are treated as unknown failures.
func ErrPaymentGateway(err error) *CustomError {
	var gatewayErr *GatewayError
	if !errors.As(err, &gatewayErr) {
		return ErrGatewayUnknown(err, "call")
	}

	switch gatewayErr.Kind {
	case GatewayErrorTimeout:
		return ErrGatewayTimeout(err, gatewayErr.Operation)
	case GatewayErrorAuthRejected:
		return ErrGatewayAuthRejected(err, gatewayErr.Operation)
	case GatewayErrorBadRequest:
		return ErrGatewayBadRequest(err, gatewayErr.Operation)
	case GatewayErrorUpstream:
		return ErrGatewayUpstream(err, gatewayErr.Operation)
	case GatewayErrorRejected:
		customErr := ErrPaymentRejected(err, gatewayErr.Operation)
		if gatewayErr.Details != "" {
			customErr.ClientMessage = gatewayErr.Details
		}
		return customErr
	default:
		return ErrGatewayUnknown(err, gatewayErr.Operation)
	}
}

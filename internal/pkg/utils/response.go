package utils

import (
	"errors"
	"net/http"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/dto/responses"
	"qris-payment-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func BuildSuccessResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	response := responses.ResponseDTO{
		Success: true,
		Message: message,
		Data:    data,
	}
	BuildJSONResponse(w, code, response)
}

func BuildJSONResponse(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func BuildTextResponse(w http.ResponseWriter, code int, body string) {
	w.Header().Set(constvars.HeaderContentType, constvars.MIMETextPlainCharsetUTF8)
	w.WriteHeader(code)
	w.Write([]byte(body))
}

// BuildErrorResponse renders err as the error envelope. Developer detail is
// only exposed outside production.
func BuildErrorResponse(log *zap.Logger, w http.ResponseWriter, err error) {
	code := constvars.StatusInternalServerError
	clientMessage := constvars.ErrClientSomethingWrongWithApplication

	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		code = customErr.StatusCode
		clientMessage = customErr.ClientMessage
		for _, location := range customErr.Locations {
			log.Error(customErr.DevMessage,
				zap.Int(constvars.LoggingStatusCodeKey, code),
				zap.String("file", location.File),
				zap.Int("line", location.Line),
				zap.String("function_name", location.FunctionName),
			)
		}
	} else if err != nil {
		log.Error(err.Error(), zap.Int(constvars.LoggingStatusCodeKey, code))
	}

	response := exceptions.CustomError{
		Success:       false,
		ClientMessage: clientMessage,
	}

	if IsProductionEnvironment() {
		response.DevMessage = http.StatusText(code)
	} else if customErr != nil {
		response.DevMessage = customErr.DevMessage
		response.Locations = customErr.Locations
	} else if err != nil {
		response.DevMessage = err.Error()
	}

	BuildJSONResponse(w, code, response)
}

func IsProductionEnvironment() bool {
	return GetEnvString("APP_ENV", constvars.EnvironmentDevelopment) == constvars.EnvironmentProduction
}

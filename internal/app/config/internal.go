package config

import (
	"fmt"
	"qris-payment-service/internal/pkg/constvars"
	"strings"
	"time"
)

const (
	DuitkuSandboxBaseURL        = "https://sandbox.duitku.com/webapi/api"
	duitkuProductionURLPrefix   = "https://passport.duitku.com"
	PaymentGatewayModeSandbox   = "sandbox"
	PaymentGatewayModeLive      = "production"
	PaymentGatewayModeCustomURL = "custom"
)

type InternalConfig struct {
	App            App
	PaymentGateway AppPaymentGateway
	RabbitMQ       AppRabbitMQ
	Event          AppEvent
}

type App struct {
	Env                            string
	Port                           string
	URL                            string
	ShutdownTimeout                int
	MaxRequests                    int
	RateLimitWindowInMinutes       int
	PaymentMaxRequestsPerMinute    int
	PaymentRateLimitBlockInMinutes int
	RequestBodyLimitInMegabyte     int
	RequestTimeoutInSeconds        int
	OrderIDPrefix                  string
	OrderIDSuffixLength            int
	OrderStoreDriver               string
	PaymentExpiredTimeInMinutes    int
	OrderRetentionTimeInHours      int
	ExpiryWorkerIntervalInSeconds  int
	ExpiryWorkerBatchSize          int
	CallbackArchivePrefix          string
	CORSAllowedOrigins             []string
	MetricsEnabled                 bool
}

type AppPaymentGateway struct {
	MerchantCode            string
	APIKey                  string
	BaseURL                 string
	CallbackURL             string
	ReturnURL               string
	ErrorURL                string
	PaymentMethod           string
	UserAgent               string
	SignatureAlgorithm      string
	RequestTimeoutInSeconds int
	MaxRequestsPerSecond    int
}

type AppRabbitMQ struct {
	PaymentEventsQueue string
}

type AppEvent struct {
	SigningSecret     string
	Issuer            string
	TokenTTLInMinutes int
}

// ConfigurationError lists the settings required to talk to the processor.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

func (c *InternalConfig) IsProduction() bool {
	return c.App.Env == constvars.EnvironmentProduction
}

// Validate reports missing processor credentials as a ConfigurationError and
// suspicious but usable values as warnings.
func (c *InternalConfig) Validate() (warnings []string, err error) {
	var missing []string
	if c.PaymentGateway.MerchantCode == "" {
		missing = append(missing, "DUITKU_MERCHANT_CODE")
	} else if len(c.PaymentGateway.MerchantCode) < constvars.AppMerchantCodeMinLength {
		warnings = append(warnings, "DUITKU_MERCHANT_CODE looks too short")
	}

	if c.PaymentGateway.APIKey == "" {
		missing = append(missing, "DUITKU_API_KEY")
	} else if len(c.PaymentGateway.APIKey) < constvars.AppAPIKeyMinLength {
		warnings = append(warnings, "DUITKU_API_KEY looks too short")
	}

	switch c.App.OrderStoreDriver {
	case constvars.OrderStoreDriverMemory, constvars.OrderStoreDriverRedis, constvars.OrderStoreDriverMongo:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown ORDER_STORE_DRIVER %q, falling back to %s", c.App.OrderStoreDriver, constvars.OrderStoreDriverMemory))
		c.App.OrderStoreDriver = constvars.OrderStoreDriverMemory
	}
	if c.IsProduction() && c.App.OrderStoreDriver == constvars.OrderStoreDriverMemory {
		warnings = append(warnings, "ORDER_STORE_DRIVER is memory in production, pending orders are lost on restart")
	}

	if len(missing) > 0 {
		return warnings, &ConfigurationError{Missing: missing}
	}
	return warnings, nil
}

func (p AppPaymentGateway) IsConfigured() bool {
	return p.MerchantCode != "" && p.APIKey != ""
}

// Mode classifies the processor base URL.
func (p AppPaymentGateway) Mode() string {
	switch {
	case strings.HasPrefix(p.BaseURL, DuitkuSandboxBaseURL):
		return PaymentGatewayModeSandbox
	case strings.HasPrefix(p.BaseURL, duitkuProductionURLPrefix):
		return PaymentGatewayModeLive
	default:
		return PaymentGatewayModeCustomURL
	}
}

func (p AppPaymentGateway) RequestTimeout() time.Duration {
	return time.Duration(p.RequestTimeoutInSeconds) * time.Second
}

func (a App) PaymentExpiryWindow() time.Duration {
	return time.Duration(a.PaymentExpiredTimeInMinutes) * time.Minute
}

func (a App) OrderRetention() time.Duration {
	return time.Duration(a.OrderRetentionTimeInHours) * time.Hour
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalConfigValidate(t *testing.T) {
	t.Run("Missing credentials", func(t *testing.T) {
		cfg := &InternalConfig{App: App{OrderStoreDriver: "memory"}}

		_, err := cfg.Validate()

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"DUITKU_MERCHANT_CODE", "DUITKU_API_KEY"}, cfgErr.Missing)
	})

	t.Run("Short credentials warn", func(t *testing.T) {
		cfg := &InternalConfig{
			App:            App{OrderStoreDriver: "redis"},
			PaymentGateway: AppPaymentGateway{MerchantCode: "D1", APIKey: "short"},
		}

		warnings, err := cfg.Validate()

		assert.NoError(t, err)
		assert.Len(t, warnings, 2)
	})

	t.Run("Unknown store driver falls back to memory", func(t *testing.T) {
		cfg := &InternalConfig{
			App:            App{OrderStoreDriver: "cassandra"},
			PaymentGateway: AppPaymentGateway{MerchantCode: "D12345", APIKey: "0123456789abcdef"},
		}

		warnings, err := cfg.Validate()

		assert.NoError(t, err)
		assert.Len(t, warnings, 1)
		assert.Equal(t, "memory", cfg.App.OrderStoreDriver)
	})

	t.Run("Memory store in production warns", func(t *testing.T) {
		credentials := AppPaymentGateway{MerchantCode: "D12345", APIKey: "0123456789abcdef"}

		production := &InternalConfig{App: App{Env: "production", OrderStoreDriver: "memory"}, PaymentGateway: credentials}
		warnings, err := production.Validate()
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "ORDER_STORE_DRIVER is memory in production")

		durable := &InternalConfig{App: App{Env: "production", OrderStoreDriver: "redis"}, PaymentGateway: credentials}
		warnings, err = durable.Validate()
		require.NoError(t, err)
		assert.Empty(t, warnings)

		development := &InternalConfig{App: App{Env: "development", OrderStoreDriver: "memory"}, PaymentGateway: credentials}
		warnings, err = development.Validate()
		require.NoError(t, err)
		assert.Empty(t, warnings)
	})
}

func TestPaymentGatewayMode(t *testing.T) {
	assert.Equal(t, PaymentGatewayModeSandbox, AppPaymentGateway{BaseURL: DuitkuSandboxBaseURL}.Mode())
	assert.Equal(t, PaymentGatewayModeLive, AppPaymentGateway{BaseURL: "https://passport.duitku.com/webapi/api"}.Mode())
	assert.Equal(t, PaymentGatewayModeCustomURL, AppPaymentGateway{BaseURL: "http://127.0.0.1:9999"}.Mode())
}

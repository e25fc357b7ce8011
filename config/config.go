// Package config provides environment based configuration helpers
package config

import "os"

// Environment variable names used by the connector
const (
	// EnvAPIKey is the Productbird API key used for outbound calls
	EnvAPIKey = "PRODUCTBIRD_API_KEY"

	// EnvAPIBaseURL overrides the Productbird API base URL
	EnvAPIBaseURL = "PRODUCTBIRD_API_BASE_URL"

	// EnvWebhookSecret is the shared secret used to verify webhook signatures
	EnvWebhookSecret = "PRODUCTBIRD_WEBHOOK_SECRET"

	// EnvManagementToken is the bearer token required on management endpoints
	EnvManagementToken = "PRODUCTBIRD_MANAGEMENT_TOKEN"

	// EnvCallbackBaseURL is the public base URL webhooks are delivered to
	EnvCallbackBaseURL = "PRODUCTBIRD_CALLBACK_BASE_URL"

	// EnvTone is the default tone passed with generation payloads
	EnvTone = "PRODUCTBIRD_TONE"

	// EnvFormality is the default formality passed with generation payloads
	EnvFormality = "PRODUCTBIRD_FORMALITY"

	// EnvSweepInterval is the poll sweep interval (Go duration string)
	EnvSweepInterval = "PRODUCTBIRD_SWEEP_INTERVAL"

	// EnvServerPort is the port the API server listens on
	EnvServerPort = "PORT"
)

// Database environment variable names
const (
	// EnvDBHost is the database host
	EnvDBHost = "DB_HOST"

	// EnvDBPort is the database port
	EnvDBPort = "DB_PORT"

	// EnvDBUser is the database user
	EnvDBUser = "DB_USER"

	// EnvDBPassword is the database password
	EnvDBPassword = "DB_PASSWORD"

	// EnvDBName is the database name
	EnvDBName = "DB_NAME"

	// EnvDBSSLMode enables SSL on the database connection when set to "enable"
	EnvDBSSLMode = "DB_SSL_MODE"
)

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

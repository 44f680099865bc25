package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultGraphBase is the WhatsApp Cloud API root used when WABA_API_BASE is unset.
const DefaultGraphBase = "https://graph.facebook.com/v21.0"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Sheets   SheetsConfig
	WhatsApp WhatsAppConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port     string
	LogLevel string
}

type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsPath string
}

type WhatsAppConfig struct {
	PhoneNumberID string
	Token         string
	VerifyToken   string
	APIBase       string
	// LogInbound appends every webhook message to the Messages range.
	LogInbound bool
}

type MetricsConfig struct {
	Namespace string
}

// Load returns application configuration from environment variables.
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "4001"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("GOOGLE_SHEET_ID", ""),
			CredentialsPath: getEnv("GOOGLE_CREDENTIALS_PATH", ""),
		},
		WhatsApp: WhatsAppConfig{
			PhoneNumberID: getEnv("WABA_PHONE_NUMBER_ID", ""),
			Token:         getEnv("WABA_TOKEN", ""),
			VerifyToken:   getEnv("WABA_VERIFY_TOKEN", ""),
			APIBase:       getEnv("WABA_API_BASE", DefaultGraphBase),
			LogInbound:    getEnvBool("LOG_INBOUND_MESSAGES", true),
		},
		Metrics: MetricsConfig{
			Namespace: getEnv("METRICS_NAMESPACE", "relay"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err == nil {
			return boolVal
		}
	}
	return defaultValue
}

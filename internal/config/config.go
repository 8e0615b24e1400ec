package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded from environment
// variables (a .env file is loaded in main for local development)
type Config struct {
	Port        string
	Environment string

	UseMemoryStore bool

	Database DatabaseConfig
	WhatsApp WhatsAppConfig
	Twilio   TwilioConfig

	JWTSecret            string
	JWTExpirationMinutes int

	// NoShowKeyword routes a cancellation to the no_show status when the
	// cancellation reason contains it (case-insensitive).
	NoShowKeyword string
}

// DatabaseConfig holds Postgres connection details
type DatabaseConfig struct {
	User                   string
	Password               string
	Name                   string
	Host                   string
	Port                   string
	InstanceConnectionName string // set on Cloud Run, switches to socket DSN
}

// WhatsAppConfig holds Meta WhatsApp Business Cloud API credentials
type WhatsAppConfig struct {
	Token         string
	PhoneNumberID string
	VerifyToken   string
}

// TwilioConfig holds credentials for the SMS reminder fallback channel
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	SMSFrom    string
}

// Load builds the configuration from the environment
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		UseMemoryStore: getEnv("USE_MEMORY_STORE", "") == "true",
		Database: DatabaseConfig{
			User:                   getEnv("DB_USER", "postgres"),
			Password:               getEnv("DB_PASS", ""),
			Name:                   getEnv("DB_NAME", "consultorio"),
			Host:                   getEnv("DB_HOST", "localhost"),
			Port:                   getEnv("DB_PORT", "5432"),
			InstanceConnectionName: getEnv("INSTANCE_CONNECTION_NAME", ""),
		},
		WhatsApp: WhatsAppConfig{
			Token:         getEnv("WHATSAPP_TOKEN", ""),
			PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			VerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			SMSFrom:    getEnv("TWILIO_SMS_FROM", ""),
		},
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpirationMinutes: getEnvInt("JWT_EXPIRATION_MINUTES", 12*60),
		NoShowKeyword:        getEnv("NO_SHOW_KEYWORD", "faltou"),
	}
}

// WhatsAppConfigured reports whether the outbound chat transport can send
func (c *Config) WhatsAppConfigured() bool {
	return c.WhatsApp.Token != "" && c.WhatsApp.PhoneNumberID != ""
}

// SMSConfigured reports whether the Twilio fallback channel can send
func (c *Config) SMSConfigured() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.SMSFrom != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Package config loads environment configuration for the binaries. Third-party
// credentials are only ever read here; missing required variables fail fast at
// startup instead of surfacing mid-request.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full environment surface of the application.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// CronSecret is the bearer token shared with the external cron caller.
	CronSecret string

	MidtransServerKey    string
	MidtransClientKey    string
	MidtransIsProduction bool

	WahaBaseURL string
	WahaAPIKey  string

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	FirebaseCredentialsPath string
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := &Config{
		Port:                    getenv("PORT", "8080"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisURL:                os.Getenv("REDIS_URL"),
		CronSecret:              os.Getenv("CRON_SECRET"),
		MidtransServerKey:       os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey:       os.Getenv("MIDTRANS_CLIENT_KEY"),
		MidtransIsProduction:    os.Getenv("MIDTRANS_IS_PRODUCTION") == "true",
		WahaBaseURL:             getenv("WAHA_BASE_URL", "http://waha:3000"),
		WahaAPIKey:              os.Getenv("WAHA_API_KEY"),
		SMTPHost:                os.Getenv("SMTP_HOST"),
		SMTPPort:                os.Getenv("SMTP_PORT"),
		SMTPUser:                os.Getenv("SMTP_USER"),
		SMTPPass:                os.Getenv("SMTP_PASS"),
		EmailFrom:               os.Getenv("EMAIL_FROM"),
		FirebaseCredentialsPath: getenv("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),
	}
	return cfg
}

// Require verifies that the named variables were set, returning one error
// listing everything missing.
func (c *Config) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if c.lookup(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RequireServer validates the variables the API server cannot run without.
func (c *Config) RequireServer() error {
	return c.Require("DATABASE_URL", "MIDTRANS_SERVER_KEY", "CRON_SECRET")
}

// RequireWorker validates the variables the task worker cannot run without.
func (c *Config) RequireWorker() error {
	return c.Require("DATABASE_URL")
}

func (c *Config) lookup(name string) string {
	switch name {
	case "DATABASE_URL":
		return c.DatabaseURL
	case "REDIS_URL":
		return c.RedisURL
	case "CRON_SECRET":
		return c.CronSecret
	case "MIDTRANS_SERVER_KEY":
		return c.MidtransServerKey
	case "MIDTRANS_CLIENT_KEY":
		return c.MidtransClientKey
	case "WAHA_API_KEY":
		return c.WahaAPIKey
	case "SMTP_HOST":
		return c.SMTPHost
	default:
		return os.Getenv(name)
	}
}

func getenv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

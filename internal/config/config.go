package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "PadiPay"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultOTPTTL         = 5 * time.Minute
	defaultOTPPerMinute   = 5
	defaultBankName       = "Moniepoint"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	WebhookSecret  string
	BankName       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	OTPTTL         time.Duration
	OTPPerMinute   int

	// Optional external integrations. Empty values select the built-in
	// fallbacks: deterministic account provisioning and log-only dispatch.
	ProvisionBaseURL      string
	ProvisionAPIKey       string
	ProvisionContractCode string
	GatewayBaseURL        string
	GatewayAPIKey         string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		BankName:       getEnv("BANK_NAME", defaultBankName),
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
		OTPTTL:         defaultOTPTTL,
		OTPPerMinute:   defaultOTPPerMinute,

		ProvisionBaseURL:      os.Getenv("PROVISION_BASE_URL"),
		ProvisionAPIKey:       os.Getenv("PROVISION_API_KEY"),
		ProvisionContractCode: os.Getenv("PROVISION_CONTRACT_CODE"),
		GatewayBaseURL:        os.Getenv("GATEWAY_BASE_URL"),
		GatewayAPIKey:         os.Getenv("GATEWAY_API_KEY"),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = durationEnv("OTP_TTL", cfg.OTPTTL); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("OTP_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OTP_PER_MINUTE: %w", err)
		}
		cfg.OTPPerMinute = n
	}

	if !cfg.Dev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set")
		}
		if cfg.WebhookSecret == "" {
			return Config{}, fmt.Errorf("WEBHOOK_SECRET must be set")
		}
	}

	return cfg, nil
}

// Dev reports whether the app runs in a local development environment.
func (c Config) Dev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// durationEnv reads KEY as a Go duration, or KEY_SECONDS as an integer second
// count, preferring the seconds form when both are set.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package config

import (
	"errors"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AppPort               int    `mapstructure:"APP_PORT"`
	BcryptCost            int    `mapstructure:"BCRYPT_COST"`
	SignInRatePerMin      int    `mapstructure:"SIGNIN_RATE_PER_MIN"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	LogFormat             string `mapstructure:"LOG_FORMAT"`
	MongoURI              string `mapstructure:"MONGO_URI"`
	MongoDBName           string `mapstructure:"MONGO_DB_NAME"`
	JWTSecret             string `mapstructure:"JWT_SECRET"`
	SessionHours          int    `mapstructure:"SESSION_HOURS"`
	CalendarTimezone      string `mapstructure:"CALENDAR_TIMEZONE"`
	BillingURL            string `mapstructure:"BILLING_URL"`
	DevMode               bool   `mapstructure:"DEV_MODE"`
	RouteMetricsEnabled   bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	RequestLoggingEnabled bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
	PyroscopeAddress      string `mapstructure:"PYROSCOPE_SERVER_ADDRESS"`
}

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file
// It caches the result for subsequent calls
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SIGNIN_RATE_PER_MIN", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "notely")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_HOURS", 24*7)
	v.SetDefault("CALENDAR_TIMEZONE", "Local")
	v.SetDefault("BILLING_URL", "")
	v.SetDefault("DEV_MODE", false)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("REQUEST_LOGGING_ENABLED", true)
	v.SetDefault("PYROSCOPE_SERVER_ADDRESS", "")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// A missing .env file is fine, the environment alone is enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DevMode && cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cachedConfig = &cfg

	return cfg, nil
}

// devJWTSecret is only ever used when DEV_MODE=true and no secret was provided.
const devJWTSecret = "notely-dev-mode-secret-do-not-use-in-production"

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 {
		return errors.New("APP_PORT must be greater than 0")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 16 {
		return errors.New("BCRYPT_COST must be between 4 and 16")
	}
	if c.SignInRatePerMin < 1 {
		return errors.New("SIGNIN_RATE_PER_MIN must be greater than or equal to 1")
	}
	if c.LogLevel == "" {
		return errors.New("LOG_LEVEL cannot be empty")
	}
	if c.LogFormat == "" {
		return errors.New("LOG_FORMAT cannot be empty")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI cannot be empty")
	}
	if c.MongoDBName == "" {
		return errors.New("MONGO_DB_NAME cannot be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET cannot be empty")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if !c.DevMode && c.BillingURL == "" {
		return errors.New("BILLING_URL cannot be empty")
	}
	if c.SessionHours <= 0 {
		return errors.New("SESSION_HOURS must be greater than 0")
	}
	if _, err := c.Location(); err != nil {
		return errors.New("CALENDAR_TIMEZONE must be a valid IANA zone name")
	}
	return nil
}

// Location resolves CALENDAR_TIMEZONE. An empty value or "Local" means time.Local.
func (c Config) Location() (*time.Location, error) {
	switch c.CalendarTimezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.CalendarTimezone)
	}
}

// SessionTTL is the lifetime of a sign-in session.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionHours) * time.Hour
}

// Package config defines the global configuration for the Tenki weather
// application. Configuration is loaded once at process startup and is
// immutable thereafter, following 12-Factor principles: values come from the
// OS environment, with a .env file as a development convenience.
//
// Any missing required value or invalid format fails the process immediately
// on startup.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the top-level configuration struct. Sub-components receive only
// the specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Port        string `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DefaultLocale is the language used when a request does not specify one.
	DefaultLocale string `envconfig:"DEFAULT_LOCALE" default:"ja" validate:"oneof=ja en zh"`

	Database    DatabaseConfig
	OpenWeather OpenWeatherConfig
	Hotpepper   HotpepperConfig
	Places      PlacesConfig
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL               string        `envconfig:"DATABASE_URL" validate:"required"`
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// OpenWeatherConfig holds the weather provider's credentials and endpoint.
type OpenWeatherConfig struct {
	APIKey  string        `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	BaseURL string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5"`
	Timeout time.Duration `envconfig:"OPENWEATHER_TIMEOUT" default:"10s"`
}

// HotpepperConfig holds the restaurant provider's credentials and endpoint.
// The API key is optional: when absent the restaurant recommendation feature
// short-circuits to an explicit "not enabled" result.
type HotpepperConfig struct {
	APIKey  string        `envconfig:"HOTPEPPER_API_KEY"`
	BaseURL string        `envconfig:"HOTPEPPER_BASE_URL" default:"https://webservice.recruit.co.jp/hotpepper"`
	Timeout time.Duration `envconfig:"HOTPEPPER_TIMEOUT" default:"10s"`
}

// PlacesConfig holds the facility provider's credentials and endpoint.
// Like the restaurant provider, the key is optional.
type PlacesConfig struct {
	APIKey  string        `envconfig:"GOOGLE_PLACES_API_KEY"`
	BaseURL string        `envconfig:"GOOGLE_PLACES_BASE_URL" default:"https://maps.googleapis.com"`
	Timeout time.Duration `envconfig:"GOOGLE_PLACES_TIMEOUT" default:"10s"`

	// RequestPause is the fixed pause between consecutive facility category
	// queries, respecting provider quotas.
	RequestPause time.Duration `envconfig:"GOOGLE_PLACES_REQUEST_PAUSE" default:"200ms"`
}

// Load loads and validates the configuration.
//
// The sequence is:
//  1. Enforce UTC to keep the per-day cache keyed on a single calendar.
//  2. Load a .env file if present (non-fatal when missing; existing
//     environment variables are never overridden).
//  3. Process envconfig struct tags.
//  4. Validate the resulting struct.
func Load() (*Config, error) {
	time.Local = time.UTC

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

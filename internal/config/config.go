package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"5000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"meetDoc"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	StripeAPIURL    string `envconfig:"STRIPE_API_URL"`

	// Payment intent throttling is off unless PAYMENT_INTENT_RATE is positive.
	IntentRate  float64 `envconfig:"PAYMENT_INTENT_RATE" default:"0"`
	IntentBurst int     `envconfig:"PAYMENT_INTENT_BURST" default:"10"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"1h"`

	StrictLifecycle bool `envconfig:"STRICT_LIFECYCLE" default:"false"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, relying on environment variables.")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive (got %s)", c.JWTTTL)
	}
	return nil
}

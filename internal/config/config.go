package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	appenv "github.com/garrettladley/ebaynotify/internal/env"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	// TrustedProxies is the number of reverse proxies in front of the server
	// that append to X-Forwarded-For. Zero keys clients by socket address.
	TrustedProxies int `env:"TRUSTED_PROXIES" envDefault:"0"`

	EBay      EBay      `envPrefix:"EBAY_"`
	KeyCache  KeyCache  `envPrefix:"KEY_CACHE_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	RateLimit RateLimit `envPrefix:"RATE_"`
}

// EBay holds the per-deployment settings handed to the notification pipeline.
// Both credential sets may be configured; Environment picks the active one.
type EBay struct {
	Environment       appenv.Environment `env:"ENVIRONMENT" envDefault:"PRODUCTION"`
	Sandbox           Credentials        `envPrefix:"SANDBOX_"`
	Production        Credentials        `envPrefix:"PRODUCTION_"`
	Endpoint          string             `env:"ENDPOINT"`
	VerificationToken string             `env:"VERIFICATION_TOKEN"`
}

type Credentials struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

type KeyCache struct {
	Size int           `env:"SIZE" envDefault:"100"`
	TTL  time.Duration `env:"TTL" envDefault:"24h"`
}

type Redis struct {
	// URL is optional. When empty, public keys are cached in memory only.
	URL string `env:"URL"`
}

type RateLimit struct {
	Limit float64 `env:"LIMIT" envDefault:"50"`
	Burst int     `env:"BURST" envDefault:"100"`
}

// CredentialsFor returns the credentials configured for the given environment.
// Unknown environments yield empty credentials.
func (e EBay) CredentialsFor(environment appenv.Environment) Credentials {
	switch environment {
	case appenv.Sandbox:
		return e.Sandbox
	case appenv.Production:
		return e.Production
	default:
		return Credentials{}
	}
}

func Read() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT must be positive, got %v", ErrInvalidConfig, c.RateLimit.Limit)
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("%w: RATE_BURST must be positive, got %d", ErrInvalidConfig, c.RateLimit.Burst)
	}
	if c.TrustedProxies < 0 {
		return fmt.Errorf("%w: TRUSTED_PROXIES must not be negative, got %d", ErrInvalidConfig, c.TrustedProxies)
	}
	return nil
}

func ReadEBay() (EBay, error) {
	return env.ParseAsWithOptions[EBay](env.Options{Prefix: "EBAY_"})
}

package authflow

import (
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

// Config carries the env-driven settings for wiring the service.
type Config struct {
	SigningKey      string        `env:"AUTH_SIGNING_KEY,required"`               // Symmetric key for token signatures, at least 32 bytes
	TokenVersion    string        `env:"AUTH_TOKEN_VERSION" envDefault:"0.3"`     // Supported protocol version, dotted integers
	Issuer          string        `env:"AUTH_ISSUER" envDefault:"authkit"`        // Service name shown in authenticator apps
	LoginTokenTTL   time.Duration `env:"AUTH_LOGIN_TOKEN_TTL" envDefault:"10m"`   // Unverified token lifetime
	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"744h"` // Verified token lifetime (31 days)
	ResetSessionTTL time.Duration `env:"AUTH_RESET_SESSION_TTL" envDefault:"10m"` // Reset nonce and carrier lifetime
	StoreTimeout    time.Duration `env:"AUTH_STORE_TIMEOUT" envDefault:"5s"`      // Bound on credential/session store calls
	OTPDigits       int           `env:"AUTH_OTP_DIGITS" envDefault:"6"`          // OTP length for login verification
}

// LoadConfig reads the service configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options expands the config into service options for New.
func (c Config) Options() []Option {
	return []Option{
		WithIssuer(c.Issuer),
		WithLoginTokenTTL(c.LoginTokenTTL),
		WithAccessTokenTTL(c.AccessTokenTTL),
		WithResetSessionTTL(c.ResetSessionTTL),
		WithStoreTimeout(c.StoreTimeout),
		WithOTPDigits(c.OTPDigits),
	}
}

package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v10"
)

// Config centralizes the service configuration. Everything is loaded once at
// startup; a missing TOKEN_SECRET or database credential aborts the process.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"3000"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER,required,notEmpty"`
	DBPassword string `env:"DB_PASSWORD,required,notEmpty"`
	DBName     string `env:"DB_NAME,required,notEmpty"`

	TokenSecret     string `env:"TOKEN_SECRET,required,notEmpty"`
	TokenTTLSeconds int    `env:"TOKEN_TTL_SECONDS" envDefault:"1800"`

	// LegacyStatusCodes reproduces the wire behavior of the original API:
	// 403 for missing rows and 409 for bad login credentials. The default
	// is the corrected 404/401 mapping.
	LegacyStatusCodes bool `env:"LEGACY_STATUS_CODES" envDefault:"false"`

	// PlaintextPasswords compares the user table's password column verbatim
	// instead of treating it as a bcrypt hash. Compatibility switch only.
	PlaintextPasswords bool `env:"PLAINTEXT_PASSWORDS" envDefault:"false"`

	QueryTimeoutSeconds int `env:"QUERY_TIMEOUT_SECONDS" envDefault:"5"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LoginMaxAttempts   int `env:"LOGIN_MAX_ATTEMPTS" envDefault:"10"`
	LoginWindowSeconds int `env:"LOGIN_WINDOW_SECONDS" envDefault:"600"`
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DatabaseURL assembles a pgx connection string from the discrete DB_*
// settings. url.URL applies userinfo escaping, which differs from query
// escaping: a space must become %20, not +.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

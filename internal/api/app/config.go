package app

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration, read from the environment
// with an optional .env file for local development.
type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	// Driver selects the store backend: "sqlite" or "postgres".
	Driver       string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseFile string `env:"DATABASE_FILE" envDefault:"clientdesk.db"`
	PostgresURL  string `env:"POSTGRES_URL"`

	Issuer     string `env:"TOKEN_ISSUER" envDefault:"clientdesk"`
	KeyFile    string `env:"TOKEN_KEY_FILE" envDefault:"signing.key"`
	PepperFile string `env:"PEPPER_FILE" envDefault:"pepper"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	OTPTTL          time.Duration `env:"OTP_TTL" envDefault:"10m"`
	InviteTTL       time.Duration `env:"INVITE_TTL" envDefault:"24h"`

	// BaseURL is the public frontend origin invite links point at.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig reads the environment, first merging a .env file when one is
// present. A missing .env is not an error.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Driver == "postgres" && cfg.PostgresURL == "" {
		return Config{}, errors.New("POSTGRES_URL is required when DB_DRIVER=postgres")
	}

	return cfg, nil
}

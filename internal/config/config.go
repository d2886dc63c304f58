package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port     string `env:"PORT" env-default:"4000"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// UsersFile is ignored when DatabaseURL is set.
	UsersFile   string `env:"USERS_FILE" env-default:"users.json"`
	DatabaseURL string `env:"DATABASE_URL"`

	// SessionTTL of zero means sessions never expire, matching the
	// original behavior.
	SessionTTL    time.Duration `env:"SESSION_TTL"`
	SingleSession bool          `env:"SINGLE_SESSION"`

	MetricsEnabled bool   `env:"METRICS_ENABLED"`
	MetricsToken   string `env:"METRICS_TOKEN"`

	LoginLimitPerMin  int `env:"LOGIN_RATE_LIMIT" env-default:"20"`
	SignupLimitPerMin int `env:"SIGNUP_RATE_LIMIT" env-default:"10"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

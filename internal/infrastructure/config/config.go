package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,   default=24h"`

	// EventWorkers is the number of audit log writers.
	EventWorkers int `env:"EVENT_WORKERS, default=4"`
	// RewardPointsOnResolve is credited to a reporter when their case is
	// first resolved. Zero disables rewards.
	RewardPointsOnResolve int `env:"REWARD_POINTS_ON_RESOLVE, default=10"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Bootstrap BootstrapAdminConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=smartcity"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// BootstrapAdminConfig seeds the first admin account at startup. Seeding is
// skipped when Email is empty.
type BootstrapAdminConfig struct {
	Username    string `env:"BOOTSTRAP_ADMIN_USERNAME, default=admin"`
	Email       string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Password    string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
	State       string `env:"BOOTSTRAP_ADMIN_STATE"`
	District    string `env:"BOOTSTRAP_ADMIN_DISTRICT"`
	City        string `env:"BOOTSTRAP_ADMIN_CITY"`
	PhoneNumber string `env:"BOOTSTRAP_ADMIN_PHONE"`
}

// Enabled reports whether an admin should be seeded.
func (b BootstrapAdminConfig) Enabled() bool {
	return b.Email != ""
}

// IsProduction reports whether the service runs with production defaults
// (JSON logs, no swagger UI).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive")
	}
	if c.RewardPointsOnResolve < 0 {
		return fmt.Errorf("config: REWARD_POINTS_ON_RESOLVE must not be negative")
	}
	if c.Bootstrap.Enabled() && len(c.Bootstrap.Password) < 8 {
		return fmt.Errorf("config: BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// Development-only fallbacks. Load refuses them when ENV=production.
	devJWTSecret = "dev-only-insecure-jwt-secret"
	devMongoURI  = "mongodb://localhost:27017"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	CORSOrigins   []string `env:"CORS_ORIGINS,    default=http://localhost:5173"`
	AuthRateLimit float64  `env:"AUTH_RATE_LIMIT, default=10"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTIssuer   string        `env:"JWT_ISSUER,  default=event-planner"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,   default=720h"`
	CookieName  string        `env:"COOKIE_NAME, default=token"`
	BcryptCost  int           `env:"BCRYPT_COST, default=10"`
	MaxFailures int           `env:"LOGIN_MAX_FAILURES, default=5"`
	Lockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

type MongoConfig struct {
	URI              string        `env:"MONGO_URI"`
	Database         string        `env:"MONGO_DB,                default=event_planner"`
	ConnectTimeout   time.Duration `env:"MONGO_CONNECT_TIMEOUT,   default=10s"`
	SelectionTimeout time.Duration `env:"MONGO_SELECTION_TIMEOUT, default=5s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether the process runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
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
	if err := cfg.applyFallbacks(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyFallbacks fills the insecure development defaults, or fails when they
// would be needed in production.
func (c *Config) applyFallbacks() error {
	var missing []string
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Mongo.URI == "" {
		missing = append(missing, "MONGO_URI")
	}

	if c.IsProduction() {
		if len(missing) > 0 {
			return fmt.Errorf("config: %s must be set in production", strings.Join(missing, ", "))
		}
		if c.Auth.JWTSecret == devJWTSecret {
			return errors.New("config: JWT_SECRET must not use the development value in production")
		}
		return nil
	}

	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = devJWTSecret
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = devMongoURI
	}
	return nil
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port          string `env:"PORT,           default=5000"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	StorageDriver string `env:"STORAGE_DRIVER, default=mongo"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	GitHub    GitHubConfig
	RateLimit RateLimitConfig

	// AggregateWorkers is the number of serializer shards.
	AggregateWorkers int `env:"AGGREGATE_WORKERS, default=8"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"JWT_TTL,    default=10h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=devconnector"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type GitHubConfig struct {
	BaseURL  string        `env:"GITHUB_API_URL,   default=https://api.github.com"`
	Token    string        `env:"GITHUB_TOKEN"`
	CacheTTL time.Duration `env:"GITHUB_CACHE_TTL, default=10m"`
}

type RateLimitConfig struct {
	Max    int           `env:"RATE_LIMIT_MAX,    default=20"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig. Variables already set in the environment win
// over the file.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.StorageDriver {
	case StorageMongo, StorageMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return &cfg, nil
}

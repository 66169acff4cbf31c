package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageBadger   = "badger"

	AuthDev    = "dev"
	AuthJWT    = "jwt"
	AuthRemote = "remote"

	IdempotencyMemory = "memory"
	IdempotencyRedis  = "redis"
)

type Config struct {
	Port      int    `env:"PORT,default=8080" validate:"min=1,max=65535"`
	AppName   string `env:"APP_NAME,default=virtual-pet"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text" validate:"oneof=text json"`

	StorageDriver string `env:"STORAGE_DRIVER,default=memory" validate:"oneof=memory postgres badger"`
	DBDSN         string `env:"DB_DSN" validate:"required_if=StorageDriver postgres"`
	BadgerPath    string `env:"BADGER_PATH" validate:"required_if=StorageDriver badger"`

	AuthMode    string `env:"AUTH_MODE,default=dev" validate:"oneof=dev jwt remote"`
	JWTSecret   string `env:"JWT_SECRET" validate:"required_if=AuthMode jwt"`
	JWTIssuer   string `env:"JWT_ISSUER"`
	AuthBaseURL string `env:"AUTH_BASE_URL" validate:"required_if=AuthMode remote"`
	AuthAPIKey  string `env:"AUTH_API_KEY" validate:"required_if=AuthMode remote"`

	IdempotencyDriver string        `env:"IDEMPOTENCY_DRIVER,default=memory" validate:"oneof=memory redis"`
	IdempotencyTTL    time.Duration `env:"IDEMPOTENCY_TTL,default=24h"`
	RedisAddr         string        `env:"REDIS_ADDR" validate:"required_if=IdempotencyDriver redis"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB,default=0"`

	StoreCallTimeout time.Duration `env:"STORE_CALL_TIMEOUT,default=3s" validate:"gt=0"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=10s" validate:"gt=0"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT,default=5s"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	// 0 desactiva el rate limit.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=0" validate:"gte=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=10" validate:"gte=1"`
}

var validate = validator.New()

// Load lee .env si existe (dev) y luego el entorno del proceso.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg.normalize()
}

// FromMap arma la config desde un map (tests).
func FromMap(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(env.EnvSet(vars), &cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	c.IdempotencyDriver = strings.ToLower(strings.TrimSpace(c.IdempotencyDriver))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	if err := validate.Struct(c); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return c, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

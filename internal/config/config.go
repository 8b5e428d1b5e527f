package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type Database struct {
	URL             string        `yaml:"DATABASE_URL" env:"DATABASE_URL" env-required:"true"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"MAX_IDLE_CONNS" env-default:"10"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"CONN_MAX_IDLE_TIME" env-default:"5m"`
}

type RedisConnect struct {
	URL string `yaml:"REDIS_URL" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"MAX_ATTEMPTS" env-default:"5"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"WINDOW_SIZE" env-default:"15m"`
}

type Security struct {
	JWTKey           string        `yaml:"JWT_SECRET_KEY" env:"JWT_SECRET_KEY" env-required:"true"`
	CSRFKey          string        `yaml:"CSRF_SECRET_KEY" env:"CSRF_SECRET_KEY"`
	TrustedOrigins   []string      `yaml:"TRUSTED_ORIGINS" env:"TRUSTED_ORIGINS" env-default:"http://localhost:3000,http://localhost:5173"`
	AccessTokenTTL   time.Duration `yaml:"ACCESS_TOKEN_TTL" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL  time.Duration `yaml:"REFRESH_TOKEN_TTL" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	CSRFTokenTTL     time.Duration `yaml:"CSRF_TOKEN_TTL" env:"CSRF_TOKEN_TTL" env-default:"1h"`
	SessionCookieTTL time.Duration `yaml:"SESSION_COOKIE_TTL" env:"SESSION_COOKIE_TTL" env-default:"720h"`
}

type CartConfig struct {
	MaxLineQuantity int `yaml:"MAX_LINE_QUANTITY" env:"MAX_LINE_QUANTITY" env-default:"10000"`
}

type Telemetry struct {
	OTLPEndpoint string `yaml:"OTLP_ENDPOINT" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	Security     Security     `yaml:"security"`
	Cart         CartConfig   `yaml:"cart"`
	Telemetry    Telemetry    `yaml:"telemetry"`
}

// LoadConfigFromPath reads configuration from a yaml file when the path is
// non-empty, otherwise from the process environment. Environment variables
// override file values either way.
func LoadConfigFromPath(configPath string) (*Config, error) {

	var cfg Config

	if configPath != "" {

		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("can not read config file: %w", err)
		}

	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("can not read config from environment: %w", err)
	}

	// The CSRF guard needs its own secret only when one is provided.
	if cfg.Security.CSRFKey == "" {
		cfg.Security.CSRFKey = cfg.Security.JWTKey
	}

	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or the -config flag.
// Missing DATABASE_URL or JWT_SECRET_KEY is a fatal startup error, never a
// per-request one.
func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "gets the config flag value")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}

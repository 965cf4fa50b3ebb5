package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string `env:"APP_ENV" env-default:"development"`
	Port   string `env:"PORT" env-default:"8080"`

	DatabaseURL             string        `env:"DATABASE_URL" env-required:"true"`
	DatabaseMaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" env-default:"20"`
	DatabaseMaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" env-default:"5"`
	DatabaseConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" env-default:"30m"`
	DatabaseAutoMigrate     bool          `env:"DATABASE_AUTO_MIGRATE" env-default:"true"`

	AuthSecret       string        `env:"AUTH_SECRET"`
	AuthAllowHeaders bool          `env:"AUTH_ALLOW_HEADERS" env-default:"false"`
	SessionTTL       time.Duration `env:"SESSION_TTL" env-default:"720h"`
	GoogleAudience   string        `env:"GOOGLE_AUDIENCE"`
	AdminEmails      []string      `env:"ADMIN_EMAILS" env-separator:","`
	AllowOrigins     []string      `env:"ALLOW_ORIGINS" env-separator:"," env-default:"*"`

	LogLevel        string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string `env:"LOG_FORMAT" env-default:"json"`
	LogstashTCPAddr string `env:"LOGSTASH_TCP_ADDR"`

	MinIOEndpoint    string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey   string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey   string `env:"MINIO_SECRET_KEY"`
	MinIOUseSSL      bool   `env:"MINIO_USE_SSL" env-default:"false"`
	MinIOBucketTrips string `env:"MINIO_BUCKET_TRIPS" env-default:"moptabi-trips"`
	MinIOPublicURL   string `env:"MINIO_PUBLIC_URL"`

	TripImageMaxBytes             int64 `env:"TRIP_IMAGE_MAX_BYTES" env-default:"5242880"`
	TripImageMaxDimension         int   `env:"TRIP_IMAGE_MAX_DIMENSION" env-default:"1600"`
	NotificationReadRateScanLimit int   `env:"NOTIFICATION_READ_RATE_SCAN_LIMIT" env-default:"5000"`

	SwaggerSpecPath string `env:"SWAGGER_SPEC_PATH" env-default:"docs/swagger.yaml"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}
	cfg.AdminEmails = lowerAll(splitAndTrim(cfg.AdminEmails))
	cfg.AllowOrigins = splitAndTrim(cfg.AllowOrigins)
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.AuthSecret) == "" && !c.AuthAllowHeaders {
		errs = append(errs, errors.New("AUTH_SECRET is required unless AUTH_ALLOW_HEADERS=true"))
	}
	if c.DatabaseMaxOpenConns < 0 || c.DatabaseMaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes must not be negative"))
	}
	if c.TripImageMaxBytes <= 0 {
		errs = append(errs, errors.New("TRIP_IMAGE_MAX_BYTES must be positive"))
	}
	if c.NotificationReadRateScanLimit <= 0 {
		errs = append(errs, errors.New("NOTIFICATION_READ_RATE_SCAN_LIMIT must be positive"))
	}
	if c.MinIOEndpoint != "" && (c.MinIOAccessKey == "" || c.MinIOSecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c Config) StorageEnabled() bool {
	return c.MinIOEndpoint != ""
}

func splitAndTrim(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}

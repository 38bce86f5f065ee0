package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"shopfront"`
	Env         string `envconfig:"APP_ENV" default:"development"`
	ServerPort  int    `envconfig:"PORT" default:"5000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMigrate   bool   `envconfig:"DB_MIGRATE" default:"true"`

	JWTSecret            string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL             time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	AdminLegacyPlaintext bool          `envconfig:"ADMIN_LEGACY_PLAINTEXT" default:"false"`

	PublicDir    string `envconfig:"PUBLIC_DIR" default:"public"`
	UploadDir    string `envconfig:"UPLOAD_DIR" default:"uploads"`
	UploadPrefix string `envconfig:"UPLOAD_PREFIX" default:"/uploads/"`

	ImageBackend string `envconfig:"IMAGE_BACKEND" default:"local"`
	S3           S3Config

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	RedisURL        string        `envconfig:"REDIS_URL"`
	RateLimit       int           `envconfig:"RATE_LIMIT" default:"100"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

// S3Config fields are read with the S3_ prefix, e.g. S3_BUCKET.
type S3Config struct {
	Bucket    string `envconfig:"BUCKET"`
	Region    string `envconfig:"REGION" default:"auto"`
	Endpoint  string `envconfig:"ENDPOINT"`
	AccessKey string `envconfig:"ACCESS_KEY_ID"`
	SecretKey string `envconfig:"SECRET_ACCESS_KEY"`
	PublicURL string `envconfig:"PUBLIC_URL"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("missing required env JWT_SECRET")
	}

	c.Env = strings.ToLower(c.Env)
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}

	switch c.DBDriver {
	case "postgres", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing required env DATABASE_URL for driver %s", c.DBDriver)
		}
	case "sqlite":
		if c.DatabaseURL == "" {
			c.DatabaseURL = "shopfront.db"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.ImageBackend {
	case "local":
	case "s3":
		if c.S3.Bucket == "" || c.S3.PublicURL == "" {
			return fmt.Errorf("missing required env S3_BUCKET or S3_PUBLIC_URL for IMAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_BACKEND %q", c.ImageBackend)
	}

	if c.RateLimit < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.ServerPort) }

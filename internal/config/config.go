// Package config loads application configuration from environment variables
// (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// VerificationPolicy decides the verified flag of newly registered accounts.
type VerificationPolicy string

const (
	// PolicyAuto creates accounts already verified.
	PolicyAuto VerificationPolicy = "auto"
	// PolicyPending creates accounts unverified until the code is confirmed.
	PolicyPending VerificationPolicy = "pending"
)

// AIProvider selects the generative-model backend.
type AIProvider string

const (
	ProviderGemini AIProvider = "gemini"
	ProviderOpenAI AIProvider = "openai"
)

// Config holds all runtime configuration values.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"dev"`
	Port     string `env:"APP_PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"DEBUG" envDefault:"false"` // exposes verification codes in responses

	// Storage
	DatabaseURL     string        `env:"DATABASE_URL"` // empty: embedded backend only
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"data/startera.db"`
	DBProbeTimeout  time.Duration `env:"DB_PROBE_TIMEOUT" envDefault:"2s"`
	DBRetryInterval time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"5s"`

	// Accounts
	JWTSecret          string             `env:"JWT_SECRET,required"`
	AccessTTLMin       int                `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"1440"`
	BcryptCost         int                `env:"BCRYPT_COST" envDefault:"12"`
	VerificationPolicy VerificationPolicy `env:"VERIFICATION_POLICY" envDefault:"auto"`

	// AI gateway
	AIProvider    AIProvider    `env:"AI_PROVIDER" envDefault:"gemini"`
	GoogleAPIKey  string        `env:"GOOGLE_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AITimeout     time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`
	PromptsFile   string        `env:"PROMPTS_FILE"`

	// Mail
	MailServer   string `env:"MAIL_SERVER"`
	MailPort     int    `env:"MAIL_PORT" envDefault:"587"`
	MailUsername string `env:"MAIL_USERNAME"`
	MailPassword string `env:"MAIL_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	// Messaging / cache
	RabbitMQURL string `env:"RABBITMQ_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// PDF archive
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// MailEnabled reports whether SMTP delivery is configured.
func (c Config) MailEnabled() bool {
	return c.MailServer != "" && c.MailUsername != "" && c.MailPassword != ""
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	// a missing .env is fine; the real environment wins over it
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.RateLimit.normalize()
	cfg.Cache.normalize()
	return cfg, nil
}

func (c *Config) validate() error {
	c.VerificationPolicy = VerificationPolicy(strings.ToLower(strings.TrimSpace(string(c.VerificationPolicy))))
	switch c.VerificationPolicy {
	case PolicyAuto, PolicyPending:
	default:
		return fmt.Errorf("invalid VERIFICATION_POLICY %q (want auto or pending)", c.VerificationPolicy)
	}
	c.AIProvider = AIProvider(strings.ToLower(strings.TrimSpace(string(c.AIProvider))))
	switch c.AIProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid AI_PROVIDER %q (want gemini or openai)", c.AIProvider)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be blank")
	}
	if c.AITimeout <= 0 {
		c.AITimeout = 60 * time.Second
	}
	return nil
}

package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"http_server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Client   ClientConfig   `mapstructure:"client"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Tally    TallyConfig    `mapstructure:"tally"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"HTTP_PORT" envDefault:"8080"`
	BaseURL           string        `mapstructure:"base_url" env:"HTTP_BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" envDefault:"*"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"DATABASE_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	Source          string        `mapstructure:"source" env:"DATABASE_URL"`
}

// AuthConfig holds the service-role credential of the hosted auth service.
// Its JWT secret signs the access tokens browsers send us.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" env:"AUTH_JWT_SECRET"`
	Issuer    string `mapstructure:"issuer" env:"AUTH_JWT_ISSUER"`
}

type StripeConfig struct {
	SecretKey      string `mapstructure:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret  string `mapstructure:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	PublishableKey string `mapstructure:"publishable_key" env:"STRIPE_PUBLISHABLE_KEY"`
}

// ClientConfig carries values the browser needs and that we only hand out.
type ClientConfig struct {
	AnonKey string `mapstructure:"anon_key" env:"CLIENT_ANON_KEY"`
}

type StorageConfig struct {
	Bucket        string `mapstructure:"bucket" env:"STORAGE_BUCKET" envDefault:"campaign-photos"`
	Region        string `mapstructure:"region" env:"AWS_REGION" envDefault:"us-east-1"`
	PublicBaseURL string `mapstructure:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
	MaxUploadMB   int64  `mapstructure:"max_upload_mb" env:"STORAGE_MAX_UPLOAD_MB" envDefault:"15"`
}

type TallyConfig struct {
	MaxWorkers   int           `mapstructure:"max_workers" env:"TALLY_MAX_WORKERS" envDefault:"4"`
	JobQueueSize int           `mapstructure:"job_queue_size" env:"TALLY_JOB_QUEUE_SIZE" envDefault:"100"`
	JobTimeout   time.Duration `mapstructure:"job_timeout" env:"TALLY_JOB_TIMEOUT" envDefault:"10s"`
}

// CacheConfig sizes the in-process campaign view cache. Zero disables it.
type CacheConfig struct {
	CampaignViewTTL time.Duration `mapstructure:"campaign_view_ttl" env:"CACHE_CAMPAIGN_VIEW_TTL" envDefault:"1m"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LOG_LEVEL" envDefault:"info"`
	Format string `mapstructure:"format" env:"LOG_FORMAT" envDefault:"json"`
}

// LoadConfigFromEnv reads the whole configuration from environment variables.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

// Section names a group of settings a command depends on.
type Section string

const (
	SectionDatabase  Section = "database"
	SectionAuth      Section = "auth"
	SectionStripeAPI Section = "stripe_api"
	SectionWebhook   Section = "webhook"
	SectionClient    Section = "client"
)

// AllSections is what the HTTP server needs.
var AllSections = []Section{SectionDatabase, SectionAuth, SectionStripeAPI, SectionWebhook, SectionClient}

// Validate checks the configuration the server needs.
func (c *Config) Validate() error {
	return c.ValidateFor(AllSections...)
}

// ValidateFor checks only the required values of the given sections, so
// tooling such as migrate runs without payment or auth secrets.
func (c *Config) ValidateFor(sections ...Section) error {
	var errs []string

	if missing := c.missingRequired(sections); len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("missing required configuration: %s", strings.Join(missing, ", ")))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if needs(sections, SectionStripeAPI) || needs(sections, SectionWebhook) || needs(sections, SectionClient) {
		if err := c.Stripe.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("stripe config: %v", err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// missingRequired lists every required value of the given sections that is
// empty or still a placeholder.
func (c *Config) missingRequired(sections []Section) []string {
	required := []struct {
		section Section
		name    string
		value   string
	}{
		{SectionStripeAPI, "STRIPE_SECRET_KEY", c.Stripe.SecretKey},
		{SectionWebhook, "STRIPE_WEBHOOK_SECRET", c.Stripe.WebhookSecret},
		{SectionClient, "STRIPE_PUBLISHABLE_KEY", c.Stripe.PublishableKey},
		{SectionDatabase, "DATABASE_URL", c.Database.Source},
		{SectionAuth, "AUTH_JWT_SECRET", c.Auth.JWTSecret},
		{SectionClient, "CLIENT_ANON_KEY", c.Client.AnonKey},
	}

	var missing []string
	for _, r := range required {
		if !needs(sections, r.section) {
			continue
		}
		v := strings.TrimSpace(r.value)
		if v == "" || strings.Contains(strings.ToLower(v), "placeholder") {
			missing = append(missing, r.name)
		}
	}
	return missing
}

func needs(sections []Section, s Section) bool {
	for _, have := range sections {
		if have == s {
			return true
		}
	}
	return false
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *StripeConfig) Validate() error {
	if c.SecretKey != "" && !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return errors.New("secret_key must start with sk_ or rk_")
	}
	if c.WebhookSecret != "" && !strings.HasPrefix(c.WebhookSecret, "whsec_") {
		return errors.New("webhook_secret must start with whsec_")
	}
	if c.PublishableKey != "" && !strings.HasPrefix(c.PublishableKey, "pk_") {
		return errors.New("publishable_key must start with pk_")
	}
	return nil
}

// AllowedOriginList splits the comma separated origins setting.
func (c *ServerConfig) AllowedOriginList() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

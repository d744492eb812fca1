package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`

	SessionCookieName string        `mapstructure:"SESSION_COOKIE_NAME"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	CookieSecure      bool          `mapstructure:"COOKIE_SECURE"`
	RolesFile         string        `mapstructure:"ROLES_FILE"`
	DefaultRole       string        `mapstructure:"DEFAULT_ROLE"`

	FreeShippingThreshold float64 `mapstructure:"FREE_SHIPPING_THRESHOLD"`
	ShippingFlatFee       float64 `mapstructure:"SHIPPING_FLAT_FEE"`
	TaxFixed              float64 `mapstructure:"TAX_FIXED"`

	CarrierAPIURL    string        `mapstructure:"CARRIER_API_URL"`
	CarrierAPIKey    string        `mapstructure:"CARRIER_API_KEY"`
	CarrierTimeout   time.Duration `mapstructure:"CARRIER_TIMEOUT"`
	OriginPostalCode string        `mapstructure:"ORIGIN_POSTAL_CODE"`

	RedisAddress  string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	MQDriver         string `mapstructure:"MQ_DRIVER"` // "rabbitmq", "nats" or empty
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	NATSURL          string `mapstructure:"NATS_URL"`
	OrderEventsQueue string `mapstructure:"ORDER_EVENTS_QUEUE"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort string `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	MailFrom string `mapstructure:"MAIL_FROM"`
}

var envKeys = []string{
	"PORT", "GIN_MODE", "FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "CLIENT_URL",
	"SESSION_COOKIE_NAME", "SESSION_TTL", "COOKIE_SECURE", "ROLES_FILE", "DEFAULT_ROLE",
	"FREE_SHIPPING_THRESHOLD", "SHIPPING_FLAT_FEE", "TAX_FIXED",
	"CARRIER_API_URL", "CARRIER_API_KEY", "CARRIER_TIMEOUT", "ORIGIN_POSTAL_CODE",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"MQ_DRIVER", "RABBITMQ_URL", "NATS_URL", "ORDER_EVENTS_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "MAIL_FROM",
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SESSION_COOKIE_NAME", "session")
	v.SetDefault("SESSION_TTL", 120*time.Hour)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("ROLES_FILE", "configs/roles.yaml")
	v.SetDefault("DEFAULT_ROLE", "customer")
	v.SetDefault("FREE_SHIPPING_THRESHOLD", 999.0)
	v.SetDefault("SHIPPING_FLAT_FEE", 99.0)
	v.SetDefault("TAX_FIXED", 0.0)
	v.SetDefault("CARRIER_TIMEOUT", 10*time.Second)
	v.SetDefault("CACHE_TTL", 5*time.Minute)
	v.SetDefault("ORDER_EVENTS_QUEUE", "order.created")
	v.SetDefault("SMTP_PORT", "587")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	cfg.MQDriver = strings.ToLower(strings.TrimSpace(cfg.MQDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.ClientURL == "" {
		return errors.New("CLIENT_URL is required")
	}
	if c.FreeShippingThreshold < 0 || c.ShippingFlatFee < 0 || c.TaxFixed < 0 {
		return errors.New("FREE_SHIPPING_THRESHOLD, SHIPPING_FLAT_FEE and TAX_FIXED must not be negative")
	}
	switch c.MQDriver {
	case "":
	case "rabbitmq":
		if c.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required when MQ_DRIVER=rabbitmq")
		}
	case "nats":
		if c.NATSURL == "" {
			return errors.New("NATS_URL is required when MQ_DRIVER=nats")
		}
	default:
		return errors.New("MQ_DRIVER must be one of: rabbitmq, nats")
	}
	return nil
}

// IsRelease reports whether gin should run in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// MailEnabled reports whether enough SMTP settings are present to send mail.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.MailFrom != ""
}

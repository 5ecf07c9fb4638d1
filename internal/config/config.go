package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "CONTACT"

	defaultHTTPAddress           = "0.0.0.0:8080"
	defaultDatabasePath          = "contact.db"
	defaultLogLevel              = "info"
	defaultMaxFieldLength        = 1000
	defaultThrottleWindowSeconds = 300
	defaultThrottleTTLSeconds    = 600
	defaultSMTPPort              = 587
	defaultNotifySubject         = "Новая заявка с Landing SOP"
)

// AppConfig captures runtime configuration for the contact-form API server.
type AppConfig struct {
	HTTPAddress        string
	DatabasePath       string
	LogLevel           string
	MaxFieldLength     int
	NotifyRecipient    string
	NotifySubject      string
	ThrottleWindow     time.Duration
	ThrottleTTL        time.Duration
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	RedisAddress       string
	AdminSigningSecret string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("limits.max_field_length", defaultMaxFieldLength)
	configViper.SetDefault("notify.subject", defaultNotifySubject)
	configViper.SetDefault("notify.throttle_window_seconds", defaultThrottleWindowSeconds)
	configViper.SetDefault("notify.throttle_ttl_seconds", defaultThrottleTTLSeconds)
	configViper.SetDefault("smtp.port", defaultSMTPPort)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:        configViper.GetString("http.address"),
		DatabasePath:       configViper.GetString("database.path"),
		LogLevel:           configViper.GetString("log.level"),
		MaxFieldLength:     configViper.GetInt("limits.max_field_length"),
		NotifyRecipient:    configViper.GetString("notify.recipient"),
		NotifySubject:      configViper.GetString("notify.subject"),
		ThrottleWindow:     time.Duration(configViper.GetInt("notify.throttle_window_seconds")) * time.Second,
		ThrottleTTL:        time.Duration(configViper.GetInt("notify.throttle_ttl_seconds")) * time.Second,
		SMTPHost:           configViper.GetString("smtp.host"),
		SMTPPort:           configViper.GetInt("smtp.port"),
		SMTPUsername:       configViper.GetString("smtp.username"),
		SMTPPassword:       configViper.GetString("smtp.password"),
		SMTPFrom:           configViper.GetString("smtp.from"),
		RedisAddress:       configViper.GetString("throttle.redis_address"),
		AdminSigningSecret: configViper.GetString("admin.signing_secret"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.MaxFieldLength <= 0 {
		return fmt.Errorf("limits.max_field_length must be positive")
	}
	if c.ThrottleWindow <= 0 {
		return fmt.Errorf("notify.throttle_window_seconds must be positive")
	}
	if c.ThrottleTTL < c.ThrottleWindow {
		return fmt.Errorf("notify.throttle_ttl_seconds must not be shorter than the throttle window")
	}
	if strings.TrimSpace(c.SMTPHost) != "" {
		if strings.TrimSpace(c.NotifyRecipient) == "" {
			return fmt.Errorf("notify.recipient is required when smtp.host is set")
		}
		if strings.TrimSpace(c.SMTPFrom) == "" {
			return fmt.Errorf("smtp.from is required when smtp.host is set")
		}
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Access  AccessConfig
	Session SessionConfig
	Logo    LogoConfig
	AWS     AWSConfig
	Page    PageConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// AccessConfig holds the shared password that unlocks the calculator
type AccessConfig struct {
	Password string
}

// SessionConfig holds session lifetime configuration
type SessionConfig struct {
	IdleTimeout  time.Duration
	SecureCookie bool
}

// LogoConfig selects where the optional logo is read from
type LogoConfig struct {
	Backend string // file, s3 or minio
	Path    string
	Key     string
}

// AWSConfig holds AWS/S3 configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string
}

// PageConfig holds the text shown around the calculator
type PageConfig struct {
	Title       string
	CompanyName string
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:8080")
	v.SetDefault("ACCESS_PASSWORD", "")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "12h")
	v.SetDefault("SECURE_COOKIE", false)
	v.SetDefault("LOGO_BACKEND", "file")
	v.SetDefault("LOGO_PATH", "assets/logo.png")
	v.SetDefault("LOGO_KEY", "branding/logo.png")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("APP_TITLE", "Calculadora dB")
	v.SetDefault("COMPANY_NAME", "CS SISTEMAS DE AIRE")

	// Environment variables override .env file values
	v.AutomaticEnv()

	env := v.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	// Read .env file for the current environment (ignore error if file doesn't exist)
	v.SetConfigName(".env." + env)
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var config Config
	config.Server.Port = v.GetString("PORT")
	config.Server.Env = v.GetString("ENVIRONMENT")
	config.Server.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))
	config.Access.Password = v.GetString("ACCESS_PASSWORD")
	config.Session.IdleTimeout = v.GetDuration("SESSION_IDLE_TIMEOUT")
	config.Session.SecureCookie = v.GetBool("SECURE_COOKIE")
	config.Logo.Backend = strings.ToLower(strings.TrimSpace(v.GetString("LOGO_BACKEND")))
	config.Logo.Path = v.GetString("LOGO_PATH")
	config.Logo.Key = v.GetString("LOGO_KEY")
	config.AWS.Region = v.GetString("AWS_REGION")
	config.AWS.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.S3Bucket = v.GetString("S3_BUCKET")
	config.AWS.S3Endpoint = v.GetString("S3_ENDPOINT")
	config.Page.Title = v.GetString("APP_TITLE")
	config.Page.CompanyName = v.GetString("COMPANY_NAME")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", config.Server.Env).
		Strs("allowed_origins", config.Server.AllowedOrigins).
		Str("logo_backend", config.Logo.Backend).
		Dur("session_idle_timeout", config.Session.IdleTimeout).
		Msg("Configuration loaded")

	return &config, nil
}

// Validate reports configuration that the server cannot start with
func (c *Config) Validate() error {
	if c.Access.Password == "" {
		return fmt.Errorf("ACCESS_PASSWORD is required")
	}
	switch c.Logo.Backend {
	case "file":
	case "s3", "minio":
		if c.AWS.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for LOGO_BACKEND=%s", c.Logo.Backend)
		}
		if c.Logo.Backend == "minio" && c.AWS.S3Endpoint == "" {
			return fmt.Errorf("S3_ENDPOINT is required for LOGO_BACKEND=minio")
		}
	default:
		return fmt.Errorf("unknown LOGO_BACKEND %q", c.Logo.Backend)
	}
	if c.Session.IdleTimeout < 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must not be negative")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

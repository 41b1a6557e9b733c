package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration. Values come from config.yml and
// can be overridden per-field with environment variables.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	BaseURL  string `yaml:"base_url"`
	Debug    bool   `yaml:"debug"`

	Firebase FirebaseConfig `yaml:"firebase"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`

	RolesFile string `yaml:"roles_file"`
}

// FirebaseConfig holds identity provider and document store settings.
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	WebAPIKey       string `yaml:"web_api_key"`
	CredentialsFile string `yaml:"credentials_file"`
}

// SMTPConfig holds outbound email settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// RedisConfig holds session store settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RabbitMQConfig holds event publisher settings.
type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

// Load reads configuration from the given yaml file (optional) and applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPAddr:  ":8080",
		BaseURL:   "http://localhost:8080",
		RolesFile: "roles.yml",
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	overrideString(&cfg.HTTPAddr, "HTTP_ADDR")
	overrideString(&cfg.BaseURL, "APP_BASE_URL")
	if os.Getenv("APP_DEBUG") == "true" {
		cfg.Debug = true
	}

	overrideString(&cfg.Firebase.ProjectID, "FIREBASE_PROJECT_ID")
	overrideString(&cfg.Firebase.WebAPIKey, "FIREBASE_WEB_API_KEY")
	overrideString(&cfg.Firebase.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")

	overrideString(&cfg.SMTP.Host, "SMTP_HOST")
	overrideString(&cfg.SMTP.Port, "SMTP_PORT")
	overrideString(&cfg.SMTP.Username, "SMTP_USERNAME")
	overrideString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	overrideString(&cfg.SMTP.From, "SMTP_FROM")

	overrideString(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")

	overrideString(&cfg.RabbitMQ.URL, "RABBITMQ_URL")

	overrideString(&cfg.RolesFile, "ROLES_FILE")

	return cfg, nil
}

// Validate checks settings required to reach the identity provider and
// document store.
func (c *Config) Validate() error {
	if c.Firebase.ProjectID == "" {
		return fmt.Errorf("firebase project id is required (FIREBASE_PROJECT_ID)")
	}
	return nil
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

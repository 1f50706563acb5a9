package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Recovery RecoveryConfig `mapstructure:"recovery"`
	Mail     MailConfig     `mapstructure:"mail"`
	S3       S3Config       `mapstructure:"s3"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// JWTConfig defines session-token settings. Expiration is the default token
// lifetime; RememberExpiration applies when the client asks to stay signed in.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	Expiration         time.Duration `mapstructure:"expiration"`
	RememberExpiration time.Duration `mapstructure:"remember_expiration"`
}

// RecoveryConfig tunes the password-reset lifecycle. AttemptWindow and
// Cooldown are deliberately independent knobs: the window bounds how many
// codes may be issued, the cooldown bounds how often a fresh one is minted.
type RecoveryConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	AttemptWindow time.Duration `mapstructure:"attempt_window"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	CodeTTL       time.Duration `mapstructure:"code_ttl"`
}

type MailConfig struct {
	Region       string        `mapstructure:"region"`
	Source       string        `mapstructure:"source"`
	QueueSize    int           `mapstructure:"queue_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	// Nested keys map to env vars, e.g. recovery.max_attempts -> RECOVERY_MAX_ATTEMPTS
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.cookie_secure", false)
	viper.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=trainer port=5432 sslmode=disable")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("jwt.remember_expiration", "168h")
	viper.SetDefault("recovery.max_attempts", 3)
	viper.SetDefault("recovery.attempt_window", "10m")
	viper.SetDefault("recovery.cooldown", "60s")
	viper.SetDefault("recovery.code_ttl", "10m")
	viper.SetDefault("mail.queue_size", 64)
	viper.SetDefault("mail.max_retries", 3)
	viper.SetDefault("mail.retry_backoff", "2s")
	viper.SetDefault("s3.use_ssl", true)

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file is optional; env vars and defaults can carry everything.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Storage  StorageConfig  `toml:"storage"`
	Receipts ReceiptsConfig `toml:"receipts"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port string `toml:"port"`
}

// DatabaseConfig contains Postgres connection settings
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// AuthConfig contains JWT and admin bootstrap settings
type AuthConfig struct {
	JWTSecret        string `toml:"jwt_secret"`
	TokenTTLHours    int    `toml:"token_ttl_hours"`
	AdminEmail       string `toml:"admin_email"`
	AdminPassword    string `toml:"admin_password"`
	AdminFirstName   string `toml:"admin_first_name"`
	AdminLastName    string `toml:"admin_last_name"`
	BootstrapAdmin   bool   `toml:"bootstrap_admin"`
}

// RedisConfig contains cache settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StorageConfig contains object storage settings for product images
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// ReceiptsConfig controls the pending-receipt expiry job
type ReceiptsConfig struct {
	PendingTTLHours      int `toml:"pending_ttl_hours"`
	ExpiryBatchSize      int `toml:"expiry_batch_size"`
	ExpiryIntervalMinutes int `toml:"expiry_interval_minutes"`
}

// Load reads configuration from a TOML file, then applies environment
// overrides so deployments can inject secrets without editing the file.
func Load(filename string) (*Config, error) {
	config := defaults()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if _, err := toml.DecodeFile(filename, config); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	applyEnvOverrides(config)

	if config.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL or database.url)")
	}
	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (set JWT_SECRET or auth.jwt_secret)")
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Auth: AuthConfig{
			TokenTTLHours: 24,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Storage: StorageConfig{
			Bucket: "product-images",
		},
		Receipts: ReceiptsConfig{
			PendingTTLHours:       48,
			ExpiryBatchSize:       100,
			ExpiryIntervalMinutes: 30,
		},
	}
}

func applyEnvOverrides(config *Config) {
	setString(&config.Server.Port, "PORT")
	setString(&config.Database.URL, "DATABASE_URL")
	setString(&config.Auth.JWTSecret, "JWT_SECRET")
	setString(&config.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&config.Auth.AdminPassword, "ADMIN_PASSWORD")
	setString(&config.Redis.Addr, "REDIS_ADDR")
	setString(&config.Redis.Password, "REDIS_PASSWORD")
	setString(&config.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&config.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&config.Storage.SecretKey, "MINIO_SECRET_KEY")
	setString(&config.Storage.Bucket, "MINIO_BUCKET")

	if val := os.Getenv("MINIO_USE_SSL"); val != "" {
		if useSSL, err := strconv.ParseBool(val); err == nil {
			config.Storage.UseSSL = useSSL
		}
	}
	if val := os.Getenv("RECEIPT_PENDING_TTL_HOURS"); val != "" {
		if hours, err := strconv.Atoi(val); err == nil && hours > 0 {
			config.Receipts.PendingTTLHours = hours
		}
	}
	if val := os.Getenv("ADMIN_BOOTSTRAP"); val != "" {
		if bootstrap, err := strconv.ParseBool(val); err == nil {
			config.Auth.BootstrapAdmin = bootstrap
		}
	}
}

func setString(target *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*target = val
	}
}

// TokenTTL returns the configured JWT lifetime
func (a AuthConfig) TokenTTL() time.Duration {
	hours := a.TokenTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// PendingTTL returns how long a receipt may stay pending before expiry
func (r ReceiptsConfig) PendingTTL() time.Duration {
	hours := r.PendingTTLHours
	if hours <= 0 {
		hours = 48
	}
	return time.Duration(hours) * time.Hour
}

// ExpiryInterval returns how often the expiry job runs
func (r ReceiptsConfig) ExpiryInterval() time.Duration {
	minutes := r.ExpiryIntervalMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

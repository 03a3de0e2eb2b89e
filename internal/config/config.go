package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageDriverLocal      = "local"
	StorageDriverCloudinary = "cloudinary"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		BaseURL        string   `yaml:"base_url" env:"SERVER_BASE_URL"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
		CookieSecure   bool     `yaml:"cookie_secure" env:"COOKIE_SECURE"`
		TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`
	} `yaml:"server"`

	Database struct {
		URL             string `yaml:"url" env:"DATABASE_URL"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		AccessTokenSecret      string `yaml:"access_token_secret" env:"ACCESS_TOKEN_SECRET"`
		RefreshTokenSecret     string `yaml:"refresh_token_secret" env:"REFRESH_TOKEN_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"ACCESS_TOKEN_EXPIRY"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"REFRESH_TOKEN_EXPIRY"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Storage struct {
		Driver    string `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		LocalURL  string `yaml:"local_url" env:"STORAGE_LOCAL_URL"`
		Folder    string `yaml:"folder" env:"STORAGE_FOLDER"`

		Cloudinary struct {
			CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
			APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
			APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
		} `yaml:"cloudinary"`
	} `yaml:"storage"`

	Uploads struct {
		TempDir          string `yaml:"temp_dir" env:"UPLOAD_TEMP_DIR"`
		MaxImageBytes    int64  `yaml:"max_image_bytes" env:"UPLOAD_MAX_IMAGE_BYTES"`
		MaxDocumentBytes int64  `yaml:"max_document_bytes" env:"UPLOAD_MAX_DOCUMENT_BYTES"`
		TempMaxAge       string `yaml:"temp_max_age" env:"UPLOAD_TEMP_MAX_AGE"`
		SweepSchedule    string `yaml:"sweep_schedule" env:"UPLOAD_SWEEP_SCHEDULE"`
	} `yaml:"uploads"`

	Application struct {
		IDPrefix    string `yaml:"id_prefix" env:"APPLICATION_ID_PREFIX"`
		IDWidth     int    `yaml:"id_width" env:"APPLICATION_ID_WIDTH"`
		CounterName string `yaml:"counter_name" env:"APPLICATION_COUNTER_NAME"`
	} `yaml:"application"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
		Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
	} `yaml:"rate_limit"`

	PDF struct {
		FetchTimeout string `yaml:"fetch_timeout" env:"PDF_FETCH_TIMEOUT"`
	} `yaml:"pdf"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a .env file, a YAML file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env file is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "phd_admission"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "240h"
	config.JWT.Issuer = "phd-admission"

	// Storage defaults
	config.Storage.Driver = StorageDriverLocal
	config.Storage.LocalPath = "uploads"
	config.Storage.LocalURL = "http://localhost:8080/uploads"
	config.Storage.Folder = "phd_admission"

	// Upload defaults
	config.Uploads.TempDir = ""
	config.Uploads.MaxImageBytes = 2 << 20
	config.Uploads.MaxDocumentBytes = 5 << 20
	config.Uploads.TempMaxAge = "1h"
	config.Uploads.SweepSchedule = "@every 10m"

	// Application defaults
	config.Application.IDPrefix = "NITN/Phd"
	config.Application.IDWidth = 6
	config.Application.CounterName = "userid"

	config.RateLimit.RequestsPerSecond = 5
	config.RateLimit.Burst = 20

	config.PDF.FetchTimeout = "20s"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database url or host is required")
	}

	if config.JWT.AccessTokenSecret == "" {
		return fmt.Errorf("access token secret is required")
	}

	if config.JWT.RefreshTokenSecret == "" {
		return fmt.Errorf("refresh token secret is required")
	}

	if config.JWT.AccessTokenSecret == config.JWT.RefreshTokenSecret {
		return fmt.Errorf("access and refresh token secrets must differ")
	}

	durations := map[string]string{
		"access token expiration":  config.JWT.AccessTokenExpiration,
		"refresh token expiration": config.JWT.RefreshTokenExpiration,
		"upload temp max age":      config.Uploads.TempMaxAge,
		"pdf fetch timeout":        config.PDF.FetchTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch config.Storage.Driver {
	case StorageDriverLocal:
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("storage local path is required")
		}
	case StorageDriverCloudinary:
		c := config.Storage.Cloudinary
		if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
			return fmt.Errorf("cloudinary credentials are required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Uploads.MaxImageBytes <= 0 || config.Uploads.MaxDocumentBytes <= 0 {
		return fmt.Errorf("upload size limits must be positive")
	}

	if config.Application.IDWidth <= 0 {
		return fmt.Errorf("application id width must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production"
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Duration parses a duration already checked by validateConfig
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

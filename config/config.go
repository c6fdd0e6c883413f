package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Draft store backends
const (
	DraftBackendMemory   = "memory"
	DraftBackendRedis    = "redis"
	DraftBackendPostgres = "postgres"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	DraftStore    DraftStoreConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	ObjectStorage ObjectStorageConfig
	Remote        RemoteConfig
	Session       SessionConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type DraftStoreConfig struct {
	Backend string // memory | redis | postgres
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ObjectStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

type RemoteConfig struct {
	ProfileServiceURL  string
	DocumentServiceURL string
	ProjectServiceURL  string
	ServiceToken       string
	// UploadViaStorage switches document uploads from the document service
	// to direct S3-compatible object storage.
	UploadViaStorage bool
}

type SessionConfig struct {
	JWTSecret       string
	JWTIssuer       string
	TTLHours        int
	RegistryTTLMins int
	CookieDomain    string
	CookieSecure    bool
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	CollectorEndpoint string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8082")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://buildlink.dev")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://buildlink.dev,https://www.buildlink.dev")
	v.SetDefault("DRAFT_STORE_BACKEND", DraftBackendRedis)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("JWT_ISSUER", "onboarding-api")
	v.SetDefault("SESSION_TTL_HOURS", 72)
	v.SetDefault("SESSION_REGISTRY_TTL_MINUTES", 30)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("UPLOAD_VIA_STORAGE", false)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "onboarding-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "buildlink")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "onboarding-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		DraftStore: DraftStoreConfig{
			Backend: strings.ToLower(v.GetString("DRAFT_STORE_BACKEND")),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: 20,
			MinConns: 2,
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		ObjectStorage: ObjectStorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
		},
		Remote: RemoteConfig{
			ProfileServiceURL:  v.GetString("PROFILE_SERVICE_URL"),
			DocumentServiceURL: v.GetString("DOCUMENT_SERVICE_URL"),
			ProjectServiceURL:  v.GetString("PROJECT_SERVICE_URL"),
			ServiceToken:       v.GetString("REMOTE_SERVICE_TOKEN"),
			UploadViaStorage:   v.GetBool("UPLOAD_VIA_STORAGE"),
		},
		Session: SessionConfig{
			JWTSecret:       v.GetString("JWT_SECRET"),
			JWTIssuer:       v.GetString("JWT_ISSUER"),
			TTLHours:        v.GetInt("SESSION_TTL_HOURS"),
			RegistryTTLMins: v.GetInt("SESSION_REGISTRY_TTL_MINUTES"),
			CookieDomain:    v.GetString("COOKIE_DOMAIN"),
			CookieSecure:    v.GetBool("COOKIE_SECURE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			CollectorEndpoint: v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	switch c.DraftStore.Backend {
	case DraftBackendMemory:
		// No external dependency; fine for development and tests.
	case DraftBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis draft store backend")
		}
	case DraftBackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres draft store backend")
		}
	default:
		return fmt.Errorf("unknown DRAFT_STORE_BACKEND: %q", c.DraftStore.Backend)
	}

	if c.Remote.ProfileServiceURL == "" {
		return fmt.Errorf("PROFILE_SERVICE_URL is required")
	}
	if c.Remote.ProjectServiceURL == "" {
		return fmt.Errorf("PROJECT_SERVICE_URL is required")
	}
	if !c.Remote.UploadViaStorage && c.Remote.DocumentServiceURL == "" {
		return fmt.Errorf("DOCUMENT_SERVICE_URL is required unless UPLOAD_VIA_STORAGE is set")
	}
	if c.Remote.UploadViaStorage && c.ObjectStorage.BucketName == "" {
		return fmt.Errorf("STORAGE_BUCKET_NAME is required when UPLOAD_VIA_STORAGE is set")
	}

	if c.Session.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

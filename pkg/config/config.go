package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		// Set default values
		setDefaults()

		// Set up environment variable reading for overrides
		viper.SetEnvPrefix("CLIPFORGE")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		// Load config from fixed location (cleaned for safety)
		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		// Try to read the config file
		if err := viper.ReadInConfig(); err != nil {
			// If the config file doesn't exist, just use defaults and env vars
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		// Validate the configuration
		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	backend := viper.GetString("storage.backend")
	if backend != "local" && backend != "s3" {
		return fmt.Errorf("invalid storage backend %q (want local or s3)", backend)
	}
	if backend == "s3" && viper.GetString("storage.s3.bucket") == "" {
		return fmt.Errorf("storage.s3.bucket is required when the s3 backend is selected")
	}

	if err := validateAPIKeys(); err != nil {
		return err
	}

	// Auto-correct invalid worker count
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 2)
	}

	// Auto-correct invalid retry budget
	if viper.GetInt("processing.retry_attempts") <= 0 {
		viper.Set("processing.retry_attempts", 3)
	}

	return nil
}

// validateAPIKeys warns about placeholder credentials; in production they are
// rejected. Empty keys are legitimate: the provider is simply unconfigured
// and its stage degrades to a fallback.
func validateAPIKeys() error {
	env := viper.GetString("environment")
	isProduction := env == "production" || env == "prod"

	placeholders := []string{
		"YOUR_KEY_HERE",
		"YOUR_API_KEY",
		"changeme",
		"CHANGEME",
	}

	keys := map[string]string{
		"providers.transcription.api_key": "transcription",
		"providers.analysis.api_key":      "analysis",
		"providers.diarization.api_key":   "diarization",
		"providers.sentiment.api_key":     "sentiment",
	}

	for key, name := range keys {
		value := viper.GetString(key)
		for _, placeholder := range placeholders {
			if value == placeholder {
				if isProduction {
					return fmt.Errorf("invalid %s API key: cannot use placeholder values in production", name)
				}
				fmt.Printf("Warning: %s API key is using a placeholder value\n", name)
				break
			}
		}
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Storage.Backend != "local" && c.Storage.Backend != "s3" {
		return fmt.Errorf("invalid storage backend %q (want local or s3)", c.Storage.Backend)
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}

	if c.Processing.RetryAttempts <= 0 {
		c.Processing.RetryAttempts = 3
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Environment defaults
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.max_upload_bytes", int64(2*1024*1024*1024))

	// Database defaults
	viper.SetDefault("database.path", "./data/clipforge.db")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("database.max_idle_connections", 5)
	viper.SetDefault("database.connection_max_lifetime", 30*time.Minute)
	viper.SetDefault("database.enable_wal", true)
	viper.SetDefault("database.enable_foreign_keys", true)
	viper.SetDefault("database.log_queries", false)

	// Processing defaults
	viper.SetDefault("processing.workers", 2)
	viper.SetDefault("processing.poll_interval", 2*time.Second)
	viper.SetDefault("processing.job_timeout", 30*time.Minute)
	viper.SetDefault("processing.retry_attempts", 3)
	viper.SetDefault("processing.retry_base_delay", 2*time.Second)
	viper.SetDefault("processing.insights_timeout", 2*time.Minute)
	viper.SetDefault("processing.lease_ttl", 30*time.Minute)
	viper.SetDefault("processing.job_retention_days", 30)
	viper.SetDefault("processing.ffmpeg_path", "ffmpeg")
	viper.SetDefault("processing.ffprobe_path", "ffprobe")
	viper.SetDefault("processing.ffmpeg_timeout", 10*time.Minute)
	viper.SetDefault("processing.max_highlights", 3)
	viper.SetDefault("processing.highlight_window", 8.0)

	// Provider defaults; api_key stays empty so stages degrade gracefully
	// until a deployment opts in
	viper.SetDefault("providers.transcription.api_url", "https://api.openai.com/v1/audio/transcriptions")
	viper.SetDefault("providers.transcription.model", "whisper-1")
	viper.SetDefault("providers.transcription.temperature", 0)
	viper.SetDefault("providers.transcription.timeout", 5*time.Minute)
	viper.SetDefault("providers.analysis.api_url", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("providers.analysis.model", "gpt-4o-mini")
	viper.SetDefault("providers.analysis.timeout", 60*time.Second)
	viper.SetDefault("providers.diarization.timeout", 2*time.Minute)
	viper.SetDefault("providers.sentiment.timeout", 30*time.Second)

	// Storage defaults
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.local_dir", "./data/blobs")
	viper.SetDefault("storage.base_url", "/api/v1/blobs")
	viper.SetDefault("storage.temp_dir", "./tmp")
	viper.SetDefault("storage.max_temp_age", 24*time.Hour)
	viper.SetDefault("storage.cleanup_interval", 1*time.Hour)
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.force_path_style", false)

	// Redis defaults (empty addr = in-process lease)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})
	viper.SetDefault("security.cors_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors_headers", []string{"Content-Type", "Authorization", "Range"})
	viper.SetDefault("security.enable_request_id", true)
	viper.SetDefault("security.enable_recovery", true)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.requests_per_second", 20.0)
	viper.SetDefault("rate_limiting.burst", 40)
}

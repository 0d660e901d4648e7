// Package config provides centralized configuration for the registro client and the
// development stub backend, with validation and typed defaults.
//
// Configuration Sources (12-factor app principles):
//  1. Default values (hardcoded)
//  2. .env file (local development via godotenv)
//  3. Environment variables
//  4. Command-line flags (registro CLI only, applied by the caller after Load)
//
// Usage:
//
//	import "github.com/duynhne/registro-facial/config"
//
//	func main() {
//	    cfg := config.Load()
//	    if err := cfg.Validate(); err != nil {
//	        log.Fatal(err)
//	    }
//	    // Use cfg.Backend.BaseURL, cfg.Logging.Level, etc.
//	}
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client and the stub backend
type Config struct {
	Service   ServiceConfig   // Service identity (name, version, env, stub port)
	Backend   BackendConfig   // Recognition backend the client talks to
	Media     MediaConfig     // Image acquisition (gallery dir, camera command, quality)
	Output    OutputConfig    // CLI rendering
	Stub      StubConfig      // Development stub backend
	Tracing   TracingConfig   // OpenTelemetry configuration
	Profiling ProfilingConfig // Pyroscope continuous profiling (stub backend)
	Logging   LoggingConfig   // Structured logging (Zap)
	Metrics   MetricsConfig   // Prometheus metrics
	// ShutdownTimeout is the graceful shutdown timeout in seconds - from SHUTDOWN_TIMEOUT env (default: 10)
	ShutdownTimeout int
	// ReadinessDrainDelay is the delay after failing readiness before the stub HTTP server stops.
	// From READINESS_DRAIN_DELAY env (default: 0s, max: 30s).
	ReadinessDrainDelay int
}

// ServiceConfig defines basic service configuration
type ServiceConfig struct {
	Name    string // Service name - from SERVICE_NAME env (default: "registro-facial")
	Port    string // Stub backend HTTP port (default: "5000") - from PORT env
	Version string // Version - from VERSION env
	Env     string // Environment (dev/staging/production) - from ENV env
}

// BackendConfig points the client at the recognition backend
type BackendConfig struct {
	BaseURL string        // Backend base URL - from REGISTRY_SERVER_URL env
	Timeout time.Duration // Per-request timeout - from REGISTRY_TIMEOUT env (default: 30s)
}

// MediaConfig defines how images are acquired from the gallery and the camera
type MediaConfig struct {
	GalleryDir    string  // Base directory for relative gallery paths - from MEDIA_GALLERY_DIR env
	CameraCommand string  // Capture command with an {output} placeholder - from MEDIA_CAMERA_COMMAND env
	WorkDir       string  // Where processed images are written - from MEDIA_WORK_DIR env (default: os.TempDir())
	Quality       float64 // JPEG quality 0.0-1.0 - from MEDIA_QUALITY env (default: 0.8)
}

// OutputConfig defines CLI rendering
type OutputConfig struct {
	Format string // table, json, yaml - from OUTPUT_FORMAT env (default: "table")
}

// StubConfig defines the development stub backend
type StubConfig struct {
	PublicURL string // Base URL used to build photo_url values - from STUB_PUBLIC_URL env
}

// TracingConfig defines OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled            bool    // Enable tracing (default: false) - from TRACING_ENABLED env
	Endpoint           string  // OTel Collector endpoint - from OTEL_COLLECTOR_ENDPOINT env
	SampleRate         float64 // Trace sampling rate (0.0-1.0) - from OTEL_SAMPLE_RATE env
	ServiceName        string  // Service name for traces (defaults to ServiceConfig.Name)
	MaxExportBatchSize int     // Max spans per batch (default: 512)
}

// ProfilingConfig defines Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled     bool   // Enable profiling (default: false) - from PROFILING_ENABLED env
	Endpoint    string // Pyroscope endpoint - from PYROSCOPE_ENDPOINT env
	ServiceName string // Service name for profiling (defaults to ServiceConfig.Name)
}

// LoggingConfig defines structured logging configuration
type LoggingConfig struct {
	Level  string // Log level: debug, info, warn, error (default: "warn") - from LOG_LEVEL env
	Format string // Log format: json, console (default: "console") - from LOG_FORMAT env
}

// MetricsConfig defines Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   // Enable metrics (default: true) - from METRICS_ENABLED env
	Path    string // Metrics endpoint path (default: "/metrics") - from METRICS_PATH env
	Addr    string // Client-side metrics listener for interactive sessions - from METRICS_ADDR env
}

const defaultServiceName = "registro-facial"

// Load reads configuration from environment variables with defaults.
// It loads a .env file first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	name := getEnv("SERVICE_NAME", defaultServiceName)
	port := getEnv("PORT", "5000")

	return &Config{
		Service: ServiceConfig{
			Name:    name,
			Port:    port,
			Version: getEnv("VERSION", "dev"),
			Env:     getEnv("ENV", "development"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("REGISTRY_SERVER_URL", "http://localhost:5000"), "/"),
			Timeout: getEnvDuration("REGISTRY_TIMEOUT", 30*time.Second),
		},
		Media: MediaConfig{
			GalleryDir:    getEnv("MEDIA_GALLERY_DIR", ""),
			CameraCommand: getEnv("MEDIA_CAMERA_COMMAND", ""),
			WorkDir:       getEnv("MEDIA_WORK_DIR", os.TempDir()),
			Quality:       getEnvFloat("MEDIA_QUALITY", 0.8),
		},
		Output: OutputConfig{
			Format: getEnv("OUTPUT_FORMAT", "table"),
		},
		Stub: StubConfig{
			PublicURL: strings.TrimRight(getEnv("STUB_PUBLIC_URL", "http://localhost:"+port), "/"),
		},
		Tracing: TracingConfig{
			Enabled:            getEnvBool("TRACING_ENABLED", false),
			Endpoint:           getEnv("OTEL_COLLECTOR_ENDPOINT", "localhost:4318"),
			SampleRate:         getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
			ServiceName:        name,
			MaxExportBatchSize: getEnvInt("OTEL_BATCH_SIZE", 512),
		},
		Profiling: ProfilingConfig{
			Enabled:     getEnvBool("PROFILING_ENABLED", false),
			Endpoint:    getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
			ServiceName: name,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
			Addr:    getEnv("METRICS_ADDR", ""),
		},
		ShutdownTimeout:     getEnvDurationSecondsWithMax("SHUTDOWN_TIMEOUT", 10, 60),
		ReadinessDrainDelay: getEnvDurationSecondsWithMax("READINESS_DRAIN_DELAY", 0, 30),
	}
}

// Validate checks every field and reports all problems at once
func (c *Config) Validate() error {
	var errors []string

	if c.Service.Name == "" {
		errors = append(errors, "SERVICE_NAME must not be empty")
	}
	if _, err := strconv.Atoi(c.Service.Port); err != nil {
		errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Service.Port))
	}
	validEnvs := []string{"development", "dev", "staging", "stage", "production", "prod"}
	if !contains(validEnvs, c.Service.Env) {
		errors = append(errors, fmt.Sprintf("ENV must be one of %v, got: %s", validEnvs, c.Service.Env))
	}

	if u, err := url.Parse(c.Backend.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("REGISTRY_SERVER_URL must be an http(s) URL, got: %q", c.Backend.BaseURL))
	}
	if c.Backend.Timeout <= 0 {
		errors = append(errors, "REGISTRY_TIMEOUT must be positive")
	}

	if c.Media.Quality <= 0 || c.Media.Quality > 1.0 {
		errors = append(errors, fmt.Sprintf("MEDIA_QUALITY must be in (0.0, 1.0], got: %.2f", c.Media.Quality))
	}

	validFormats := []string{"table", "json", "yaml"}
	if !contains(validFormats, c.Output.Format) {
		errors = append(errors, fmt.Sprintf("OUTPUT_FORMAT must be one of %v, got: %s", validFormats, c.Output.Format))
	}

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			errors = append(errors, "OTEL_COLLECTOR_ENDPOINT is required when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
			errors = append(errors, fmt.Sprintf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got: %.2f", c.Tracing.SampleRate))
		}
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		errors = append(errors, "PYROSCOPE_ENDPOINT is required when profiling is enabled")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logging.Level) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of %v, got: %s", validLogLevels, c.Logging.Level))
	}
	validLogFormats := []string{"json", "console"}
	if !contains(validLogFormats, c.Logging.Format) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of %v, got: %s", validLogFormats, c.Logging.Format))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Service.Env)
	return env == "development" || env == "dev"
}

// GetShutdownTimeoutDuration returns shutdown timeout as time.Duration
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// GetReadinessDrainDelayDuration returns readiness drain delay as time.Duration.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.ReadinessDrainDelay) * time.Second
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool accepts "true", "1", "yes" for true; anything else is false
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvDuration reads a Go duration ("30s", "1m"); invalid or non-positive values fall back
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// getEnvDurationSecondsWithMax reads a duration env var and returns whole seconds.
// Zero is allowed; negative, unparsable or over-limit values fall back to the default.
func getEnvDurationSecondsWithMax(key string, defaultValueSeconds int, maxSeconds int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValueSeconds
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValueSeconds
	}
	seconds := int(d.Seconds())
	if seconds < 0 || seconds > maxSeconds {
		return defaultValueSeconds
	}
	return seconds
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}

package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultGraphAPIBase    = "https://graph.facebook.com"
	defaultGraphAPIVersion = "v21.0"
)

// Config holds application configuration. It is built once at startup and
// passed to the handlers that need it.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Conversions API
	FBPixelID         string
	FBAccessToken     string
	FBGraphAPIBase    string
	FBGraphAPIVersion string

	// Optional lead notification webhook
	WebhookURL string

	CORSAllowedOrigins []string
	MetricsEnabled     bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FBPixelID:         strings.TrimSpace(getEnv("FB_PIXEL_ID", "")),
		FBAccessToken:     strings.TrimSpace(getEnv("FB_ACCESS_TOKEN", "")),
		FBGraphAPIBase:    strings.TrimRight(getEnv("FB_GRAPH_API_BASE", defaultGraphAPIBase), "/"),
		FBGraphAPIVersion: getEnv("FB_GRAPH_API_VERSION", defaultGraphAPIVersion),

		WebhookURL: strings.TrimSpace(getEnv("WEBHOOK_URL", "")),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),
	}
}

// ForwarderReady reports whether the Conversions API credentials are present.
func (c *Config) ForwarderReady() bool {
	return c != nil && c.FBPixelID != "" && c.FBAccessToken != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	CronSecret          string
	SummaryCacheTTL     time.Duration
	RecomputeCooldown   time.Duration
	FeedKeepAlive       time.Duration
	MaxUploadMB         int
	UploadRateLimit     int
	ImportRateLimit     int
	ImportJobRetention  time.Duration
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	OpenAIAPIKey        string
	OpenAIModel         string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("OPPSPOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "oppSpot API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("summary.cache_ttl", "5m")
	v.SetDefault("recompute.cooldown", "10m")
	v.SetDefault("feed.keepalive", "30s")
	v.SetDefault("max_upload_mb", 25)
	v.SetDefault("upload.rate_limit", 30)
	v.SetDefault("import.rate_limit", 5)
	v.SetDefault("import.job_retention", "168h")
	v.SetDefault("cloudinary.folder", "oppspot/documents")
	v.SetDefault("openai.model", "gpt-4o-mini")

	ttl, err := parseDuration(v, "summary.cache_ttl", 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid summary cache ttl: %w", err)
	}

	cooldown, err := parseDuration(v, "recompute.cooldown", 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid recompute cooldown: %w", err)
	}

	keepAlive, err := parseDuration(v, "feed.keepalive", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid feed keepalive: %w", err)
	}

	retention, err := parseDuration(v, "import.job_retention", 7*24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid import job retention: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		CronSecret:          v.GetString("cron.secret"),
		SummaryCacheTTL:     ttl,
		RecomputeCooldown:   cooldown,
		FeedKeepAlive:       keepAlive,
		MaxUploadMB:         v.GetInt("max_upload_mb"),
		UploadRateLimit:     v.GetInt("upload.rate_limit"),
		ImportRateLimit:     v.GetInt("import.rate_limit"),
		ImportJobRetention:  retention,
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		OpenAIModel:         v.GetString("openai.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 25
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return fallback, nil
	}

	return parsed, nil
}

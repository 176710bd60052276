package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EngagementWeights tunes the engagement score formula.
type EngagementWeights struct {
	Posts            float64
	LikesReceived    float64
	Comments         float64
	Followers        float64
	Following        float64
	CommunityMembers float64
}

// Config holds runtime configuration values for the trust engine API.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	NotificationsChannel string
	JWTSecret            string
	TrailCacheTTL        time.Duration
	TrailExportLimit     int
	TempBanDuration      time.Duration
	AppealRateLimit      int
	AppealRateWindow     time.Duration
	Engagement           EngagementWeights
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
	v.SetEnvPrefix("TRUST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Trust Engine API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("notifications.channel", "trust")
	v.SetDefault("trail.cache_ttl", "5m")
	v.SetDefault("trail.export_limit", 10000)
	v.SetDefault("escalation.temp_ban_duration", "168h")
	v.SetDefault("appeal.rate_limit", 5)
	v.SetDefault("appeal.rate_window", "1h")
	v.SetDefault("engagement.weight_posts", 5)
	v.SetDefault("engagement.weight_likes", 1)
	v.SetDefault("engagement.weight_comments", 2)
	v.SetDefault("engagement.weight_followers", 3)
	v.SetDefault("engagement.weight_following", 1)
	v.SetDefault("engagement.weight_community_members", 1)

	cacheTTL, err := parseDuration(v, "trail.cache_ttl", "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid trail cache ttl: %w", err)
	}

	tempBan, err := parseDuration(v, "escalation.temp_ban_duration", "168h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid temp ban duration: %w", err)
	}

	appealWindow, err := parseDuration(v, "appeal.rate_window", "1h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid appeal rate window: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		NotificationsChannel: v.GetString("notifications.channel"),
		JWTSecret:            v.GetString("jwt.secret"),
		TrailCacheTTL:        cacheTTL,
		TrailExportLimit:     v.GetInt("trail.export_limit"),
		TempBanDuration:      tempBan,
		AppealRateLimit:      v.GetInt("appeal.rate_limit"),
		AppealRateWindow:     appealWindow,
		Engagement: EngagementWeights{
			Posts:            v.GetFloat64("engagement.weight_posts"),
			LikesReceived:    v.GetFloat64("engagement.weight_likes"),
			Comments:         v.GetFloat64("engagement.weight_comments"),
			Followers:        v.GetFloat64("engagement.weight_followers"),
			Following:        v.GetFloat64("engagement.weight_following"),
			CommunityMembers: v.GetFloat64("engagement.weight_community_members"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.TrailExportLimit <= 0 {
		cfg.TrailExportLimit = 10000
	}

	if cfg.AppealRateLimit <= 0 {
		cfg.AppealRateLimit = 5
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}

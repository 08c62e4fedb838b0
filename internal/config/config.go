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
	NATSSubject         string
	JWTSecret           string
	TokenTTL            time.Duration
	LeaderboardCacheTTL time.Duration
	GraderProvider      string
	OracleURL           string
	OracleTimeout       time.Duration
	OpenAIAPIKey        string
	LateMultiplier      float64
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
	v.SetEnvPrefix("SQLGRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SQLGrader API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("leaderboard.cache_ttl", "30s")
	v.SetDefault("grader.provider", "http")
	v.SetDefault("oracle.timeout", "10s")
	v.SetDefault("late.multiplier", 0.5)
	v.SetDefault("nats.subject", "sqlgrader.regrade")

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("leaderboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard cache ttl: %w", err)
	}

	oracleTimeout, err := time.ParseDuration(v.GetString("oracle.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid oracle timeout: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		NATSSubject:         v.GetString("nats.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		TokenTTL:            tokenTTL,
		LeaderboardCacheTTL: cacheTTL,
		GraderProvider:      strings.ToLower(v.GetString("grader.provider")),
		OracleURL:           v.GetString("oracle.url"),
		OracleTimeout:       oracleTimeout,
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		LateMultiplier:      v.GetFloat64("late.multiplier"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

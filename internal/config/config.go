package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service. The
// lifecycle policy knobs (grace period, idle threshold, TTL) are deliberate
// configuration rather than hard-coded constants.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	SweepSecret      string
	PublicBaseURL    string
	GracePeriod      time.Duration
	IdleTimeout      time.Duration
	MissedAfter      time.Duration
	InterviewTTL     time.Duration
	SweepInterval    time.Duration
	OutboxInterval   time.Duration
	ScoreTimeout     time.Duration
	GenerateTimeout  time.Duration
	ScoreConcurrency int
	QuestionCount    int
	BoardCacheTTL    time.Duration
	AIProvider       string
	OpenAIAPIKey     string
	AnthropicAPIKey  string
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
	v.SetEnvPrefix("HIREFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "HireFlow API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("public.base_url", "http://localhost:8080")
	v.SetDefault("grace.period", "5m")
	v.SetDefault("idle.timeout", "2h")
	v.SetDefault("missed.after", "2h")
	v.SetDefault("interview.ttl", "24h")
	v.SetDefault("sweep.interval", "5m")
	v.SetDefault("outbox.interval", "15m")
	v.SetDefault("score.timeout", "30s")
	v.SetDefault("generate.timeout", "60s")
	v.SetDefault("score.concurrency", 4)
	v.SetDefault("question.count", 8)
	v.SetDefault("board.cache_ttl", "5m")
	v.SetDefault("ai.provider", "openai")

	durations := map[string]*time.Duration{}
	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		SweepSecret:      v.GetString("sweep.secret"),
		PublicBaseURL:    strings.TrimRight(v.GetString("public.base_url"), "/"),
		ScoreConcurrency: v.GetInt("score.concurrency"),
		QuestionCount:    v.GetInt("question.count"),
		AIProvider:       strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		AnthropicAPIKey:  v.GetString("anthropic_api_key"),
	}

	durations["grace.period"] = &cfg.GracePeriod
	durations["idle.timeout"] = &cfg.IdleTimeout
	durations["missed.after"] = &cfg.MissedAfter
	durations["interview.ttl"] = &cfg.InterviewTTL
	durations["sweep.interval"] = &cfg.SweepInterval
	durations["outbox.interval"] = &cfg.OutboxInterval
	durations["score.timeout"] = &cfg.ScoreTimeout
	durations["generate.timeout"] = &cfg.GenerateTimeout
	durations["board.cache_ttl"] = &cfg.BoardCacheTTL

	for key, target := range durations {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		*target = parsed
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SweepSecret == "" {
		return Config{}, fmt.Errorf("sweep secret must be provided")
	}

	if cfg.ScoreConcurrency <= 0 {
		cfg.ScoreConcurrency = 4
	}

	if cfg.QuestionCount < 8 || cfg.QuestionCount > 10 {
		cfg.QuestionCount = 8
	}

	return cfg, nil
}

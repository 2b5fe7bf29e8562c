package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// EnvPrefix is prepended to every automatically bound environment variable,
// e.g. FLASHDECK_SERVER_PORT for server.port.
const EnvPrefix = "FLASHDECK"

// legacyEnvBindings maps config keys onto the environment names the recommendation
// feature has always been configured with.
var legacyEnvBindings = map[string]string{
	"recommendation.weights.due":      "REC_WEIGHT_DUE",
	"recommendation.weights.assigned": "REC_WEIGHT_ASSIGNED",
	"recommendation.weights.recent":   "REC_WEIGHT_RECENT",
	"recommendation.weights.wrong":    "REC_WEIGHT_WRONG",
	"recommendation.cache_seconds":    "REC_CACHE_SECONDS",
}

// setDefaults registers every key with viper. AutomaticEnv only resolves keys viper
// already knows about, so each field of Config needs an entry here.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)

	weights := domain.DefaultWeights()
	v.SetDefault("recommendation.weights.due", weights.Due)
	v.SetDefault("recommendation.weights.assigned", weights.Assigned)
	v.SetDefault("recommendation.weights.recent", weights.Recent)
	v.SetDefault("recommendation.weights.wrong", weights.Wrong)
	v.SetDefault("recommendation.cache_seconds", 30)
	v.SetDefault("recommendation.cache_capacity", 1000)

	v.SetDefault("study.due_limit", 20)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.timeout_seconds", 30)

	v.SetDefault("rate_limit.auth_requests_per_second", 5.0)
	v.SetDefault("rate_limit.auth_burst", 10)

	v.SetDefault("maintenance.purge_schedule", "@every 1h")
	v.SetDefault("maintenance.share_ttl_hours", 168)
}

// Load configuration from environment variables and optionally config files.
// Sources in increasing precedence: defaults, config.yaml (working directory or
// /etc/flashdeck), .env file, process environment.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// .env is a development convenience; its absence is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/flashdeck")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnvBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

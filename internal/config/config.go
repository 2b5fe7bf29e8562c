package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"         validate:"required"`
	Database       DatabaseConfig       `mapstructure:"database"       validate:"required"`
	Auth           AuthConfig           `mapstructure:"auth"           validate:"required"`
	Recommendation RecommendationConfig `mapstructure:"recommendation" validate:"required"`
	Study          StudyConfig          `mapstructure:"study"          validate:"required"`
	LLM            LLMConfig            `mapstructure:"llm"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"     validate:"required"`
	Maintenance    MaintenanceConfig    `mapstructure:"maintenance"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds"     validate:"gt=0"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds"    validate:"gt=0"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"gt=0,gtfield=TokenLifetimeMinutes"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
}

// WeightsConfig holds the operator-tunable recommendation weights.
type WeightsConfig struct {
	Due      float64 `mapstructure:"due"      validate:"gte=0"`
	Assigned float64 `mapstructure:"assigned" validate:"gte=0"`
	Recent   float64 `mapstructure:"recent"   validate:"gte=0"`
	Wrong    float64 `mapstructure:"wrong"    validate:"gte=0"`
}

// RecommendationConfig controls deck ranking and its result cache.
// CacheSeconds of 0 disables caching.
type RecommendationConfig struct {
	Weights       WeightsConfig `mapstructure:"weights"`
	CacheSeconds  int           `mapstructure:"cache_seconds"  validate:"gte=0"`
	CacheCapacity int           `mapstructure:"cache_capacity" validate:"gt=0"`
}

// StudyConfig controls due-card selection.
type StudyConfig struct {
	DueLimit int `mapstructure:"due_limit" validate:"gt=0,lte=20"`
}

// LLMConfig contains LLM integration settings. Card generation is disabled when
// GeminiAPIKey is empty.
type LLMConfig struct {
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	ModelName      string `mapstructure:"model_name"      validate:"required_with=GeminiAPIKey"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// RateLimitConfig throttles the public authentication endpoints per client IP.
type RateLimitConfig struct {
	AuthRequestsPerSecond float64 `mapstructure:"auth_requests_per_second" validate:"gt=0"`
	AuthBurst             int     `mapstructure:"auth_burst"               validate:"gt=0"`
}

// MaintenanceConfig controls the periodic background jobs.
type MaintenanceConfig struct {
	PurgeSchedule string `mapstructure:"purge_schedule" validate:"required"`
	ShareTTLHours int    `mapstructure:"share_ttl_hours" validate:"gt=0"`
}

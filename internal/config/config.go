package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port        int      `mapstructure:"port"         validate:"required,gt=0,lt=65536"`
	LogLevel    string   `mapstructure:"log_level"    validate:"required,oneof=debug info warn error fatal"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig selects the storage backend and how to reach it.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres mongo memory"`
	URL    string `mapstructure:"url"    validate:"required_unless=Driver memory"`
	// Name is the Mongo database name; ignored by other drivers.
	Name string `mapstructure:"name"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
	AllowRoleOnRegister  bool   `mapstructure:"allow_role_on_register"`
}

// TokenLifetime returns the configured token validity as a duration.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// RateLimitConfig bounds requests per client on the credential routes.
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Requests      int  `mapstructure:"requests"       validate:"required_if=Enabled true,omitempty,gt=0"`
	WindowSeconds int  `mapstructure:"window_seconds" validate:"required_if=Enabled true,omitempty,gt=0"`
}

// Window returns the rate limit window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// RedisConfig points the rate limiter at a shared Redis. Empty URL keeps
// counters in process memory.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

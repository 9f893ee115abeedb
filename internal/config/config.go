package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string `mapstructure:"mode"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`

	Auth      AuthConfig      `mapstructure:"auth"`
	Store     StoreConfig     `mapstructure:"store"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	History   HistoryConfig   `mapstructure:"history"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type StoreConfig struct {
	// Driver is "memory" or "mongo".
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	OpTimeout      time.Duration `mapstructure:"op_timeout"`
}

// RateLimitConfig bounds inbound socket events per identity; 0 messages
// disables it.
type RateLimitConfig struct {
	Messages int           `mapstructure:"messages"`
	Interval time.Duration `mapstructure:"interval"`
}

type HistoryConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

type SeedRoom struct {
	ID          string        `mapstructure:"id"`
	Name        string        `mapstructure:"name"`
	Description string        `mapstructure:"description"`
	Category    string        `mapstructure:"category"`
	Private     bool          `mapstructure:"private"`
	SlowMode    time.Duration `mapstructure:"slow_mode"`
}

type SeedAccount struct {
	ID       string `mapstructure:"id"`
	Username string `mapstructure:"username"`
	Inactive bool   `mapstructure:"inactive"`
}

// SeedConfig feeds the memory store. With no rooms listed the built-in
// room set is used.
type SeedConfig struct {
	Rooms    []SeedRoom    `mapstructure:"rooms"`
	Accounts []SeedAccount `mapstructure:"accounts"`
}

var ErrInvalidConfig = errors.New("invalid config")

func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName if it exists, then applies CHAT_* environment
// overrides and defaults.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("chat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "mindease")
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("mongo.op_timeout", "5s")

	v.SetDefault("rate_limit.messages", 0)
	v.SetDefault("rate_limit.interval", "10s")

	v.SetDefault("history.default_limit", 50)
	v.SetDefault("history.max_limit", 200)
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "mongo":
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrInvalidConfig)
	}
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("%w: ping_period must be shorter than pong_wait", ErrInvalidConfig)
	}
	if c.History.DefaultLimit <= 0 || c.History.MaxLimit < c.History.DefaultLimit {
		return fmt.Errorf("%w: history limits", ErrInvalidConfig)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. OUTLETPLAY_GAME_DAILY_PRIZE_CAP
const EnvPrefix = "OUTLETPLAY"

// Config holds the complete configuration for the service
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Log    LogConfig    `mapstructure:"log"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Game   GameConfig   `mapstructure:"game"`
	Live   LiveConfig   `mapstructure:"live"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	HTTP   bool   `mapstructure:"http"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type GameConfig struct {
	DailyPrizeCap  int     `mapstructure:"daily_prize_cap"`
	WinProbability float64 `mapstructure:"win_probability"`
	VoucherPrefix  string  `mapstructure:"voucher_prefix"`
	Timezone       string  `mapstructure:"timezone"`
	SeedPrizes     bool    `mapstructure:"seed_prizes"`
}

type LiveConfig struct {
	KeepaliveInterval time.Duration `mapstructure:"keepalive_interval"`
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Location resolves the game's calendar timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Game.Timezone)
}

// Load reads configuration from defaults, an optional .env file, an optional
// config file and OUTLETPLAY_ environment variables, in increasing priority.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("server.port", 8081)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("db.path", "outletplay.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.http", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("game.daily_prize_cap", 10)
	v.SetDefault("game.win_probability", 0.30)
	v.SetDefault("game.voucher_prefix", "FOX")
	v.SetDefault("game.timezone", "Local")
	v.SetDefault("game.seed_prizes", true)
	v.SetDefault("live.keepalive_interval", 25*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.DB.Path == "" {
		return errors.New("db.path is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Game.WinProbability < 0 || c.Game.WinProbability > 1 {
		return fmt.Errorf("game.win_probability %v must be between 0 and 1", c.Game.WinProbability)
	}
	if c.Game.DailyPrizeCap < 0 {
		return fmt.Errorf("game.daily_prize_cap %d must not be negative", c.Game.DailyPrizeCap)
	}
	if c.Game.VoucherPrefix == "" {
		return errors.New("game.voucher_prefix is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("game.timezone: %w", err)
	}
	if c.Live.KeepaliveInterval <= 0 {
		return errors.New("live.keepalive_interval must be positive")
	}
	return nil
}

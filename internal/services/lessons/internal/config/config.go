package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Http  httpConfig  `mapstructure:"http"`
	DB    dbConfig    `mapstructure:"db"`
	Media mediaConfig `mapstructure:"media"`
	Auth  authConfig  `mapstructure:"auth"`
	Cors  corsConfig  `mapstructure:"cors"`
	Log   logConfig   `mapstructure:"log"`
}

type httpConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr" validate:"required"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

type dbConfig struct {
	Driver       string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host         string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port         string `mapstructure:"port" validate:"required_if=Driver postgres"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name" validate:"required_if=Driver postgres"`
	SSLMode      string `mapstructure:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
	Path         string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"min=0,max=1000"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type mediaConfig struct {
	Root      string `mapstructure:"root" validate:"required"`
	BaseURL   string `mapstructure:"base_url" validate:"omitempty,url"`
	MaxSize   int64  `mapstructure:"max_size" validate:"min=1"`
	MaxWidth  int    `mapstructure:"max_width" validate:"min=0"`
	MaxHeight int    `mapstructure:"max_height" validate:"min=0"`
}

type authConfig struct {
	// AdminSecret signs admin bearer tokens. Empty leaves the admin surface open.
	AdminSecret string `mapstructure:"admin_secret"`
}

type corsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type logConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

var defaults = map[string]any{
	"http.listen_addr":      ":8080",
	"http.idle_timeout":     60 * time.Second,
	"http.read_timeout":     30 * time.Second,
	"http.write_timeout":    30 * time.Second,
	"http.shutdown_timeout": 10 * time.Second,

	"db.driver":         "postgres",
	"db.host":           "localhost",
	"db.port":           "5432",
	"db.user":           "postgres",
	"db.password":       "password",
	"db.name":           "lessons",
	"db.sslmode":        "disable",
	"db.path":           "data/lessons.db",
	"db.max_open_conns": 10,
	"db.auto_migrate":   true,

	"media.root":       "data/media",
	"media.base_url":   "",
	"media.max_size":   10 << 20,
	"media.max_width":  4096,
	"media.max_height": 4096,

	"auth.admin_secret": "",

	"cors.allowed_origins": []string{"*"},

	"log.level":  "info",
	"log.format": "json",
}

// Load reads the configuration from the environment, optionally layered over the file named by CONFIG_FILE.
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Cors.AllowedOrigins = splitList(cfg.Cors.AllowedOrigins)

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Config{}, fmt.Errorf("invalid config: %s failed on %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Logger builds the process logger described by the log section.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.Log.Level))

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// splitList accepts both repeated values and a single comma separated one.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

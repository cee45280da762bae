package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/artpar/di/internal/plugins"
	"github.com/artpar/di/internal/shell/loader"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds the tool settings. The document itself is not part of it.
type Config struct {
	File   string       `mapstructure:"file"`
	Docker DockerConfig `mapstructure:"docker"`
	GCloud GCloudConfig `mapstructure:"gcloud"`
	Log    LogConfig    `mapstructure:"log"`
}

// DockerConfig holds Docker client configuration.
type DockerConfig struct {
	Host string `mapstructure:"host"`
}

// GCloudConfig locates the gcloud credential caches.
type GCloudConfig struct {
	TokenCache string `mapstructure:"token_cache"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("file", loader.DefaultFile)
	v.SetDefault("docker.host", "")
	v.SetDefault("gcloud.token_cache", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("DI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// configFlag extracts --config from args without interpreting anything else.
func configFlag(args []string) string {
	fs := pflag.NewFlagSet("di", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	path := fs.String("config", "", "")
	fs.BoolP("help", "h", false, "")
	_ = fs.Parse(args)
	return *path
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger writing to w whose level can be changed
// later through the returned LevelVar.
func SetupLogger(cfg *Config, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	parsed, err := plugins.ParseLevel(cfg.Log.Level)
	if err != nil {
		parsed = slog.LevelInfo
	}
	level.Set(parsed)

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), level
}

// Package config loads portal configuration from defaults, an optional YAML
// file and LAE_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/yash/laeportal/internal/simulator"
	"github.com/yash/laeportal/internal/tracklog"
	"github.com/yash/laeportal/pkg/models"
)

// EnvPrefix namespaces environment overrides. A double underscore separates
// nesting levels: LAE_SERVER__ADDR sets server.addr.
const EnvPrefix = "LAE_"

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config is the full portal configuration.
type Config struct {
	Server      ServerConfig     `koanf:"server" yaml:"server"`
	Log         LogConfig        `koanf:"log" yaml:"log"`
	Simulator   simulator.Config `koanf:"simulator" yaml:"simulator"`
	Track       TrackConfig      `koanf:"track" yaml:"track"`
	Runtime     RuntimeConfig    `koanf:"runtime" yaml:"runtime"`
	DefaultMode string           `koanf:"default_mode" yaml:"default_mode"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins" yaml:"cors_origins"`
}

// LogConfig selects log level and encoder.
type LogConfig struct {
	Level       string `koanf:"level" yaml:"level"`
	Development bool   `koanf:"development" yaml:"development"`
}

// TrackConfig enables the SQLite track log.
type TrackConfig struct {
	Enabled  bool                    `koanf:"enabled" yaml:"enabled"`
	Path     string                  `koanf:"path" yaml:"path"`
	Recorder tracklog.RecorderConfig `koanf:"recorder" yaml:"recorder"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    0, // websocket streams are long-lived
			RequestTimeout:  15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Log:       LogConfig{Level: "info"},
		Simulator: simulator.DefaultConfig(),
		Track: TrackConfig{
			Enabled:  false,
			Path:     "data/tracks.db",
			Recorder: tracklog.DefaultRecorderConfig(),
		},
		Runtime:     RuntimeConfig{Profile: ProfileNormal},
		DefaultMode: string(models.ModeUser),
	}
}

// Load builds the configuration. A missing file is not an error; an empty
// path skips the file. A .env file in the working directory is read first
// so its values behave like real environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Runtime = cfg.Runtime.withProfile()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RequestTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	if _, err := models.ParseMode(c.DefaultMode); err != nil {
		return fmt.Errorf("default_mode: %w", err)
	}
	if err := c.Simulator.Validate(); err != nil {
		return err
	}
	if c.Track.Enabled {
		if c.Track.Path == "" {
			return fmt.Errorf("track.path is required when tracking is enabled")
		}
		if err := c.Track.Recorder.Validate(); err != nil {
			return err
		}
	}
	return c.Runtime.Validate()
}

// Mode returns the validated default portal mode.
func (c *Config) Mode() models.Mode {
	m, err := models.ParseMode(c.DefaultMode)
	if err != nil {
		return models.ModeUser
	}
	return m
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Package config loads the jugs runtime configuration from a YAML file with
// JUGS_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// ErrUnknownPreset is returned by Preset for an unconfigured name.
var ErrUnknownPreset = errors.New("unknown preset")

var validate = validator.New(validator.WithRequiredStructEnabled())

// #region types
// Config is the runtime configuration shared by every jugs subcommand.
type Config struct {
	DBPath     string        `yaml:"db_path"`
	GRPCAddr   string        `yaml:"grpc_addr" validate:"required,hostname_port"`
	HTTPAddr   string        `yaml:"http_addr" validate:"required,hostname_port"`
	LogLevel   string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat  string        `yaml:"log_format" validate:"oneof=text json"`
	MaxStates  int           `yaml:"max_states" validate:"gte=0"`
	ReplayPace time.Duration `yaml:"replay_pace" validate:"gte=0"`
	Presets    []Preset      `yaml:"presets" validate:"dive"`
}

// Preset is a named puzzle configuration.
type Preset struct {
	Name       string `yaml:"name" validate:"required"`
	Capacities []int  `yaml:"capacities" validate:"required,min=1,dive,gt=0"`
	Target     int    `yaml:"target" validate:"gt=0"`
}

// #endregion types

// #region defaults
// Default returns the built-in configuration.
func Default() Config {
	return Config{
		GRPCAddr:   "localhost:50051",
		HTTPAddr:   "localhost:8080",
		LogLevel:   "info",
		LogFormat:  "text",
		MaxStates:  1_000_000,
		ReplayPace: 500 * time.Millisecond,
		Presets: []Preset{
			{Name: "classic", Capacities: []int{8, 5, 3}, Target: 4},
			{Name: "die-hard", Capacities: []int{3, 5}, Target: 4},
			{Name: "four-jars", Capacities: []int{12, 7, 5, 3}, Target: 1},
		},
	}
}

// #endregion defaults

// #region load
// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DBPath = envOr("JUGS_DB", c.DBPath)
	c.GRPCAddr = envOr("JUGS_GRPC_ADDR", c.GRPCAddr)
	c.HTTPAddr = envOr("JUGS_HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = strings.ToLower(envOr("JUGS_LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(envOr("JUGS_LOG_FORMAT", c.LogFormat))

	if v := os.Getenv("JUGS_MAX_STATES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JUGS_MAX_STATES: %w", err)
		}
		c.MaxStates = n
	}
	if v := os.Getenv("JUGS_REPLAY_PACE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JUGS_REPLAY_PACE: %w", err)
		}
		c.ReplayPace = d
	}
	return nil
}

// #endregion load

// #region validate
// Validate checks field constraints.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// #endregion validate

// #region presets
// Preset returns the named preset.
func (c Config) Preset(name string) (Preset, error) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
}

// #endregion presets

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

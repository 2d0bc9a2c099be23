// Package config loads runtime settings from a YAML file, FLASHGRAM_*
// environment variables and command-line flags, in rising precedence.
//
// Environment variables use double underscores to separate nesting levels,
// so FLASHGRAM_SESSION__CARDS_PER_SESSION maps to session.cards_per_session.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/nturan/flashgram-bot/internal/session"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
)

const envPrefix = "FLASHGRAM_"

// flagKeys maps command-line flag names to config keys. Flags not listed
// here are not configuration and never reach the config tree.
var flagKeys = map[string]string{
	"db":                "storage.path",
	"cards-per-session": "session.cards_per_session",
}

// Config is the full runtime configuration.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Session   SessionConfig   `koanf:"session"`
}

// StorageConfig locates the SQLite database. An empty path falls back to
// the FLASHGRAM_DB environment variable and then the XDG data directory.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// SchedulerConfig holds the tunable scheduling constants.
type SchedulerConfig struct {
	MinEase          float64 `koanf:"min_ease" validate:"gte=1,lte=2.5"`
	AgainEasePenalty float64 `koanf:"again_ease_penalty" validate:"gte=0,lte=1"`
	HardEasePenalty  float64 `koanf:"hard_ease_penalty" validate:"gte=0,lte=1"`
	EasyEaseBonus    float64 `koanf:"easy_ease_bonus" validate:"gte=0,lte=1"`
	HardIntervalMult float64 `koanf:"hard_interval_mult" validate:"gte=1,lte=2"`
	EasyIntervalMult float64 `koanf:"easy_interval_mult" validate:"gte=1,lte=3"`
	RelearnMinutes   int     `koanf:"relearn_minutes" validate:"gte=0,lte=1440"`
	MaxIntervalDays  int     `koanf:"max_interval_days" validate:"gte=1"`
}

// SessionConfig bounds a single review session.
type SessionConfig struct {
	CardsPerSession int `koanf:"cards_per_session" validate:"gte=1,lte=100"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	p := spacedrep.DefaultParams()
	return Config{
		Scheduler: SchedulerConfig{
			MinEase:          p.MinEase,
			AgainEasePenalty: p.AgainEasePenalty,
			HardEasePenalty:  p.HardEasePenalty,
			EasyEaseBonus:    p.EasyEaseBonus,
			HardIntervalMult: p.HardIntervalMult,
			EasyIntervalMult: p.EasyIntervalMult,
			RelearnMinutes:   int(p.RelearnInterval / time.Minute),
			MaxIntervalDays:  p.MaxIntervalDays,
		},
		Session: SessionConfig{
			CardsPerSession: session.DefaultConfig().CardsPerSession,
		},
	}
}

// Load merges the config file (if path is non-empty), environment variables
// and flags over the defaults, then validates the result.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment config: %w", err)
	}
	if flags != nil {
		// Only flags the user actually set participate, so flag defaults
		// never shadow file or environment values.
		set := pflag.NewFlagSet("config", pflag.ContinueOnError)
		flags.Visit(func(f *pflag.Flag) {
			if _, ok := flagKeys[f.Name]; ok {
				set.AddFlag(f)
			}
		})
		if err := k.Load(posflag.ProviderWithValue(set, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("load flag config: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks all bounds. Zero or partial configs fail here rather
// than producing a scheduler that rejects them later.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Params converts the scheduler section to scheduling parameters.
func (c SchedulerConfig) Params() spacedrep.Params {
	return spacedrep.Params{
		MinEase:          c.MinEase,
		AgainEasePenalty: c.AgainEasePenalty,
		HardEasePenalty:  c.HardEasePenalty,
		EasyEaseBonus:    c.EasyEaseBonus,
		HardIntervalMult: c.HardIntervalMult,
		EasyIntervalMult: c.EasyIntervalMult,
		RelearnInterval:  time.Duration(c.RelearnMinutes) * time.Minute,
		MaxIntervalDays:  c.MaxIntervalDays,
	}
}

// SessionConfig converts the session section to engine configuration.
func (c SessionConfig) Engine() session.Config {
	return session.Config{CardsPerSession: c.CardsPerSession}
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// flagKey renames flags to config keys and drops everything unmapped.
func flagKey(key, value string) (string, any) {
	mapped, ok := flagKeys[key]
	if !ok {
		return "", nil
	}
	return mapped, value
}

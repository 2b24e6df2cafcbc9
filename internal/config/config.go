// Package config loads settings for the nforth command.
//
// Precedence, highest first: flags, NFORTH_ environment variables, the config
// file, then defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/jcorbin/nforth"
)

// DefaultFile is loaded from the working directory when no file is named.
const DefaultFile = "nforth.yaml"

// EnvPrefix marks environment variables that override the config file, e.g.
// NFORTH_HEAP_SIZE.
const EnvPrefix = "NFORTH_"

// Config holds the command settings.
type Config struct {
	StackSize  int           `koanf:"stack_size"`
	RStackSize int           `koanf:"rstack_size"`
	HeapSize   int           `koanf:"heap_size"`
	Timeout    time.Duration `koanf:"timeout"`
	Trace      bool          `koanf:"trace"`
	LogLevel   string        `koanf:"log_level"`
	History    string        `koanf:"history"`
	Banner     bool          `koanf:"banner"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"stack_size":  nforth.DefaultStackSize,
		"rstack_size": nforth.DefaultRStackSize,
		"heap_size":   nforth.DefaultHeapSize,
		"timeout":     "0s",
		"trace":       false,
		"log_level":   "info",
		"history":     "",
		"banner":      true,
	}
}

// Load reads the config file, environment, and any flags that were set. An
// empty cfgFile loads DefaultFile if it exists.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that sizes are positive and the log level is known.
func (cfg *Config) Validate() error {
	var errs []error
	for _, size := range []struct {
		name string
		val  int
	}{
		{"stack_size", cfg.StackSize},
		{"rstack_size", cfg.RStackSize},
		{"heap_size", cfg.HeapSize},
	} {
		if size.val <= 0 {
			errs = append(errs, fmt.Errorf("%v must be positive, got %v", size.name, size.val))
		}
	}
	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %v", cfg.Timeout))
	}
	if _, err := cfg.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (cfg *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	return level, nil
}

// VMOptions returns the VM options for these settings.
func (cfg *Config) VMOptions() []nforth.VMOption {
	return []nforth.VMOption{
		nforth.WithStackSize(cfg.StackSize),
		nforth.WithRStackSize(cfg.RStackSize),
		nforth.WithHeapSize(cfg.HeapSize),
	}
}
